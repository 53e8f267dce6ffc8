package extension

import (
	"context"
	"fmt"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/pkg/ombox"
)

// Set is the per-request registry of extensions, keyed by Handle. It is
// built fresh for every request from a list of Factory functions and
// discarded — along with every Extension it holds — when the request
// completes.
type Set struct {
	extensions map[Handle]Extension
}

// NewSet builds a Set by invoking every factory once.
func NewSet(factories map[Handle]Factory) *Set {
	s := &Set{extensions: make(map[Handle]Extension, len(factories))}
	for h, f := range factories {
		s.extensions[h] = f()
	}
	return s
}

// Get returns the extension registered for h, if any.
func (s *Set) Get(h Handle) (Extension, bool) {
	ext, ok := s.extensions[h]
	return ext, ok
}

// Invoke dispatches to the extension registered for h. An unknown handle
// returns ErrInvalidHandle; a panic inside the extension's Invoke is
// recovered and surfaced as ErrInternal so a misbehaving extension can
// never crash the request handler.
func (s *Set) Invoke(ctx context.Context, h Handle, request []byte) (resp []byte, err error) {
	ext, ok := s.extensions[h]
	if !ok {
		return nil, ombox.New(ombox.ErrInvalidHandle, "no extension registered for handle %d", h)
	}

	if lc := logger.FromContext(ctx); lc != nil {
		ctx = logger.WithContext(ctx, lc.WithExtension(uint32(h)))
	}

	defer func() {
		if r := recover(); r != nil {
			err = ombox.New(ombox.ErrInternal, "extension %d panicked: %v", h, r)
		}
	}()

	return ext.Invoke(ctx, request)
}

// TerminateAll calls Terminate on every extension in the set, best-effort.
// All extensions are terminated even if one fails; the first error
// encountered is returned, wrapped with how many failed.
func (s *Set) TerminateAll() error {
	var firstErr error
	failed := 0
	for h, ext := range s.extensions {
		if err := safeTerminate(ext); err != nil {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("extension %d: %w", h, err)
			}
		}
	}
	if firstErr != nil {
		return ombox.Wrap(ombox.ErrInternal, fmt.Errorf("%d extension(s) failed to terminate, first error: %w", failed, firstErr))
	}
	return nil
}

func safeTerminate(ext Extension) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ext.Terminate()
}
