// Package extension implements the registry of host extensions a Wasm
// guest may invoke through the host ABI: the built-in lookup and workload
// logging extensions, and the dynamic-dispatch surface for user-supplied
// native extensions and channel-based extensions.
package extension

import (
	"context"

	"github.com/marmos91/oakd/pkg/channel"
)

// Handle is a stable small integer tag identifying an extension kind. It is
// injective within a given runtime configuration: two different extensions
// registered in the same Set never share a Handle.
type Handle uint32

const (
	// HandleLookup is the built-in key/value lookup extension.
	HandleLookup Handle = 1
	// HandleWorkloadLog is the built-in workload logging extension.
	HandleWorkloadLog Handle = 2
	// HandleTesting is reserved for a channel-based extension used by
	// conformance tests (spec scenario: guest writes [42,21,0], host
	// echoes [1,2,3] back).
	HandleTesting Handle = 3
)

// Extension is the capability set every native and channel-based extension
// satisfies: invoke, terminate, and report its own handle.
type Extension interface {
	// Invoke runs the extension against request bytes supplied by the
	// guest (via the host ABI's invoke call) and returns response bytes.
	Invoke(ctx context.Context, request []byte) ([]byte, error)
	// Terminate releases any per-request resources. Called exactly once,
	// best-effort, when the owning request completes.
	Terminate() error
	// Handle reports this extension's stable dispatch tag.
	Handle() Handle
}

// ChannelExtension is the superset interface channel-based extensions
// implement in addition to Extension: they are bound to a host-side
// Endpoint exactly once, during per-request wiring.
type ChannelExtension interface {
	Extension
	// SetEndpoint binds the host-side channel endpoint. A no-op if the
	// extension is already bound (Created -> EndpointBound is one-shot).
	SetEndpoint(ep *channel.Endpoint)
}

// Factory constructs a fresh Extension for a single request. Because a
// factory is called once per request, an Extension may freely hold
// per-request mutable state without any risk of it leaking into a
// different request.
type Factory func() Extension
