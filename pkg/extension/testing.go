package extension

import (
	"context"

	"github.com/marmos91/oakd/pkg/channel"
	"github.com/marmos91/oakd/pkg/ombox"
)

// TestingExtension is a channel-based extension used by conformance tests:
// it exists solely so a guest can exercise channel_read/channel_write
// against a host peer, per the end-to-end scenario in spec.md §8 (guest
// writes [42,21,0], host reads it, host replies [1,2,3], guest reads it).
//
// Unlike the native extensions, TestingExtension exchanges data with the
// guest only via its bound channel endpoint; a Set.Invoke dispatch to it
// fails (see Invoke).
type TestingExtension struct {
	endpoint *channel.Endpoint
	bound    bool
}

// NewTestingFactory returns a Factory producing a fresh, unbound
// TestingExtension. The caller is responsible for creating a channel.Pair,
// calling SetEndpoint with the host half, and registering the guest-visible
// half in the request's channel.Switchboard under HandleTesting.
func NewTestingFactory() Factory {
	return func() Extension { return &TestingExtension{} }
}

// SetEndpoint binds the host-side endpoint. One-shot: later calls are a
// no-op once bound, per the Created -> EndpointBound transition.
func (e *TestingExtension) SetEndpoint(ep *channel.Endpoint) {
	if e.bound {
		return
	}
	e.endpoint = ep
	e.bound = true
}

// Invoke exists to satisfy Extension. TestingExtension communicates over
// its channel endpoint, not native dispatch, so Invoke always returns
// ErrInvalidHandle, which the host ABI reports to a guest calling invoke
// with HandleTesting as OakStatusErrInvalidHandle.
func (e *TestingExtension) Invoke(ctx context.Context, request []byte) ([]byte, error) {
	return nil, ombox.New(ombox.ErrInvalidHandle, "testing extension is channel-based, not natively invocable")
}

// Terminate closes the bound endpoint, if any.
func (e *TestingExtension) Terminate() error {
	if e.endpoint != nil {
		e.endpoint.Close()
	}
	return nil
}

// Handle reports HandleTesting.
func (e *TestingExtension) Handle() Handle { return HandleTesting }
