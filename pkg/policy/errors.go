package policy

import "github.com/marmos91/oakd/pkg/ombox"

func errInvalidPolicy(format string, args ...any) error {
	return ombox.New(ombox.ErrInvalidArgument, format, args...)
}
