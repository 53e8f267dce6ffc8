package wasmhost

import (
	"context"
	"unicode/utf8"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/pkg/channel"
	"github.com/marmos91/oakd/pkg/extension"
	"github.com/marmos91/oakd/pkg/ombox"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// hostModuleName is the import namespace every guest binds its host
// functions under, per the ABI's wire contract. It is registered exactly
// once per runtime — wazero resolves a guest's imports by this literal
// name, so it cannot vary per request.
const hostModuleName = "oak_functions"

// perRequestStateKey is the context key carrying the PerRequestState for the
// call currently in flight. Per-request identity is threaded through
// context rather than through a per-request host module instance, since the
// host module (and its exported functions) is shared across every request a
// runtime ever serves.
type perRequestStateKey struct{}

// withPerRequestState returns a context the ABI functions will resolve back
// to state via stateFromContext.
func withPerRequestState(ctx context.Context, state *PerRequestState) context.Context {
	return context.WithValue(ctx, perRequestStateKey{}, state)
}

func stateFromContext(ctx context.Context) *PerRequestState {
	state, _ := ctx.Value(perRequestStateKey{}).(*PerRequestState)
	return state
}

// registerHostModule installs the six host functions of the ABI under
// hostModuleName. Called once per wazero.Runtime; every request instantiates
// a fresh guest module that imports from this single host module instance,
// with call-scoped state threaded through the context each call carries.
func registerHostModule(ctx context.Context, rt wazero.Runtime) (api.Closer, error) {
	builder := rt.NewHostModuleBuilder(hostModuleName)
	builder.NewFunctionBuilder().WithFunc(readRequest).Export("read_request")
	builder.NewFunctionBuilder().WithFunc(writeResponse).Export("write_response")
	builder.NewFunctionBuilder().WithFunc(writeLogMessage).Export("write_log_message")
	builder.NewFunctionBuilder().WithFunc(invokeExtension).Export("invoke")
	builder.NewFunctionBuilder().WithFunc(channelRead).Export("channel_read")
	builder.NewFunctionBuilder().WithFunc(channelWrite).Export("channel_write")
	return builder.Instantiate(ctx)
}

// allocAndWrite allocates buf.Len() bytes in the guest via its exported
// alloc function, writes buf into the freshly allocated region, and stores
// the resulting pointer and length at destPtrPtr/destLenPtr. A missing alloc
// export and every memory write failure map to ErrInvalidArgs, matching the
// bounds rule: any guest pointer that does not satisfy ptr+len <= current
// memory size is rejected. A failed alloc call traps the guest instead.
func allocAndWrite(ctx context.Context, mod api.Module, buf []byte, destPtrPtr, destLenPtr uint32) OakStatus {
	allocFn := mod.ExportedFunction(exportAlloc)
	if allocFn == nil {
		return OakStatusErrInvalidArgs
	}
	results, err := allocFn.Call(ctx, uint64(len(buf)))
	if err != nil || len(results) != 1 {
		// A failed alloc traps the guest per the ABI contract; propagating
		// the wazero error up through Instance.Run surfaces that trap.
		panic(err)
	}
	destPtr := uint32(results[0])

	mem := mod.Memory()
	if !mem.Write(destPtr, buf) {
		return OakStatusErrInvalidArgs
	}
	if !mem.WriteUint32Le(destPtrPtr, destPtr) {
		return OakStatusErrInvalidArgs
	}
	if !mem.WriteUint32Le(destLenPtr, uint32(len(buf))) {
		return OakStatusErrInvalidArgs
	}
	return OakStatusOk
}

// readRequest copies the request bytes into freshly allocated guest memory
// and records where.
func readRequest(ctx context.Context, mod api.Module, destPtrPtr, destLenPtr uint32) uint32 {
	state := stateFromContext(ctx)
	return uint32(allocAndWrite(ctx, mod, state.requestBytes, destPtrPtr, destLenPtr))
}

// writeResponse reads srcLen bytes at srcPtr from guest memory and replaces
// the host's recorded response. Last call wins.
func writeResponse(ctx context.Context, mod api.Module, srcPtr, srcLen uint32) uint32 {
	data, ok := mod.Memory().Read(srcPtr, srcLen)
	if !ok {
		return uint32(OakStatusErrInvalidArgs)
	}
	// Memory() views are only valid for the duration of the call; copy
	// before handing off across the PerRequestState boundary.
	cp := make([]byte, len(data))
	copy(cp, data)
	stateFromContext(ctx).setResponse(cp)
	return uint32(OakStatusOk)
}

// writeLogMessage decodes srcLen bytes at srcPtr as UTF-8 and logs them at
// debug sensitive level.
func writeLogMessage(ctx context.Context, mod api.Module, srcPtr, srcLen uint32) uint32 {
	data, ok := mod.Memory().Read(srcPtr, srcLen)
	if !ok {
		return uint32(OakStatusErrInvalidArgs)
	}
	if !utf8.Valid(data) {
		return uint32(OakStatusErrInvalidArgs)
	}
	logger.DebugSensitive("guest log message", "message", string(data))
	return uint32(OakStatusOk)
}

// invokeExtension dispatches to a native extension by handle, copies the
// guest's request bytes out, runs the extension, and copies its response
// bytes back into freshly allocated guest memory.
func invokeExtension(ctx context.Context, mod api.Module, handle, reqPtr, reqLen, respPtrPtr, respLenPtr uint32) uint32 {
	req, ok := mod.Memory().Read(reqPtr, reqLen)
	if !ok {
		return uint32(OakStatusErrInvalidArgs)
	}
	reqCopy := make([]byte, len(req))
	copy(reqCopy, req)

	state := stateFromContext(ctx)
	resp, err := state.extensions.Invoke(ctx, extension.Handle(handle), reqCopy)
	if err != nil {
		if ombox.CodeOf(err) == ombox.ErrInvalidHandle {
			return uint32(OakStatusErrInvalidHandle)
		}
		return uint32(OakStatusErrInvalidArgs)
	}

	return uint32(allocAndWrite(ctx, mod, resp, respPtrPtr, respLenPtr))
}

// channelRead performs a non-blocking receive on the endpoint bound to
// channelHandle and, on success, copies the message into freshly allocated
// guest memory.
func channelRead(ctx context.Context, mod api.Module, channelHandle, destPtrPtr, destLenPtr uint32) uint32 {
	state := stateFromContext(ctx)
	ep, ok := state.switchboard.Lookup(channel.Handle(channelHandle))
	if !ok {
		return uint32(ChannelStatusHandleInvalid)
	}

	msg, err := ep.TryRecv()
	if err != nil {
		return uint32(channelStatusFromErr(err))
	}

	status := allocAndWriteChannel(ctx, mod, msg, destPtrPtr, destLenPtr)
	return uint32(status)
}

// channelWrite performs a non-blocking send of srcLen bytes at srcPtr to the
// endpoint bound to channelHandle.
func channelWrite(ctx context.Context, mod api.Module, channelHandle, srcPtr, srcLen uint32) uint32 {
	state := stateFromContext(ctx)
	ep, ok := state.switchboard.Lookup(channel.Handle(channelHandle))
	if !ok {
		return uint32(ChannelStatusHandleInvalid)
	}

	data, ok := mod.Memory().Read(srcPtr, srcLen)
	if !ok {
		return uint32(ChannelStatusInvalidArgs)
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	if err := ep.Send(cp); err != nil {
		return uint32(channelStatusFromErr(err))
	}
	return uint32(ChannelStatusOk)
}

func channelStatusFromErr(err error) ChannelStatus {
	switch ombox.CodeOf(err) {
	case ombox.ErrChannelEmpty:
		return ChannelStatusEmpty
	case ombox.ErrChannelFull:
		return ChannelStatusFull
	case ombox.ErrChannelEndpointClosed:
		return ChannelStatusEndpointClosed
	case ombox.ErrChannelEndpointDisconnected:
		return ChannelStatusEndpointDisconnected
	default:
		return ChannelStatusInvalidArgs
	}
}

// allocAndWriteChannel mirrors allocAndWrite but returns a ChannelStatus,
// since channel_read shares the bounds-violation-maps-to-invalid-args rule
// but reports it in the channel status namespace.
func allocAndWriteChannel(ctx context.Context, mod api.Module, buf []byte, destPtrPtr, destLenPtr uint32) ChannelStatus {
	status := allocAndWrite(ctx, mod, buf, destPtrPtr, destLenPtr)
	if status != OakStatusOk {
		return ChannelStatusInvalidArgs
	}
	return ChannelStatusOk
}
