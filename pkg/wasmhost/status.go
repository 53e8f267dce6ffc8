package wasmhost

// OakStatus is the status code namespace returned by the request/response,
// logging, and extension-invocation host functions.
type OakStatus uint32

const (
	OakStatusOk OakStatus = iota
	OakStatusErrInvalidArgs
	OakStatusErrInvalidHandle
)

// ChannelStatus is the status code namespace returned by the channel host
// functions. It is deliberately disjoint from OakStatus so a guest can never
// confuse a channel result with a request/response result.
type ChannelStatus uint32

const (
	ChannelStatusOk ChannelStatus = iota
	ChannelStatusEmpty
	ChannelStatusFull
	ChannelStatusHandleInvalid
	ChannelStatusEndpointDisconnected
	ChannelStatusEndpointClosed
	ChannelStatusInvalidArgs
)
