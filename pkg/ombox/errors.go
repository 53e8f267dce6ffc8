// Package ombox provides the error codes shared across the runtime's host
// ABI, extension dispatch and channel fabric. This is a leaf package with no
// internal dependencies, designed to be imported by every other package
// without causing import cycles.
//
// Import graph: ombox <- {lookup, extension, channel, wasmhost, policy, server}
package ombox

import "fmt"

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrInvalidArgument indicates a malformed request: bad pointer/length
	// pairs, invalid UTF-8, a rejected config value.
	ErrInvalidArgument ErrorCode = iota + 1

	// ErrInvalidHandle indicates an extension or channel handle that does
	// not resolve to a registered entry.
	ErrInvalidHandle

	// ErrNotFound indicates a lookup miss. Never surfaced as an error to a
	// caller; used internally for symmetry with the other codes.
	ErrNotFound

	// ErrChannelFull indicates a channel send would exceed the bounded
	// queue's capacity.
	ErrChannelFull

	// ErrChannelEmpty indicates a non-blocking channel receive found no
	// pending message.
	ErrChannelEmpty

	// ErrChannelEndpointClosed indicates a send against a peer whose
	// receive half was closed.
	ErrChannelEndpointClosed

	// ErrChannelEndpointDisconnected indicates a receive against a peer
	// whose send half was dropped.
	ErrChannelEndpointDisconnected

	// ErrModuleLoad indicates the Wasm module failed to parse, or is
	// missing a required export.
	ErrModuleLoad

	// ErrGuestTrap indicates the guest trapped during execution (bounds
	// violation, unreachable, failed alloc).
	ErrGuestTrap

	// ErrInternal is a catch-all for framework-level failures (extension
	// terminate failures, unexpected panics recovered at a dispatch
	// boundary).
	ErrInternal
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidHandle:
		return "InvalidHandle"
	case ErrNotFound:
		return "NotFound"
	case ErrChannelFull:
		return "ChannelFull"
	case ErrChannelEmpty:
		return "ChannelEmpty"
	case ErrChannelEndpointClosed:
		return "ChannelEndpointClosed"
	case ErrChannelEndpointDisconnected:
		return "ChannelEndpointDisconnected"
	case ErrModuleLoad:
		return "ModuleLoad"
	case ErrGuestTrap:
		return "GuestTrap"
	case ErrInternal:
		return "Internal"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// Error wraps a runtime error with a stable code so callers can branch on
// failure class without string matching.
type Error struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// New constructs an *Error with a formatted message.
func New(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an existing error, preserving it for Unwrap.
func Wrap(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Wrapped: err}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) an *Error,
// returning ErrInternal otherwise.
func CodeOf(err error) ErrorCode {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Code
	}
	return ErrInternal
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
