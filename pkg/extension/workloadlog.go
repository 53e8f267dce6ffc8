package extension

import (
	"context"
	"unicode/utf8"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/pkg/ombox"
)

// WorkloadLogExtension records guest-supplied UTF-8 log lines at debug
// sensitive level. It holds no per-request state beyond what Invoke needs
// for the duration of a single call.
type WorkloadLogExtension struct{}

// NewWorkloadLogFactory returns a Factory producing a fresh
// WorkloadLogExtension per request.
func NewWorkloadLogFactory() Factory {
	return func() Extension { return &WorkloadLogExtension{} }
}

// Invoke validates request as UTF-8 and logs it. Invalid UTF-8 is rejected
// rather than logged, mirroring the write_log_message ABI function's own
// validation rule.
func (e *WorkloadLogExtension) Invoke(ctx context.Context, request []byte) ([]byte, error) {
	if !utf8.Valid(request) {
		return nil, ombox.New(ombox.ErrInvalidArgument, "workload log message is not valid UTF-8")
	}
	logger.DebugSensitive("workload log", "message", string(request))
	return nil, nil
}

// Terminate is a no-op.
func (e *WorkloadLogExtension) Terminate() error { return nil }

// Handle reports HandleWorkloadLog.
func (e *WorkloadLogExtension) Handle() Handle { return HandleWorkloadLog }
