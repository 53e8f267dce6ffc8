package wasmhost

import (
	"sync"

	"github.com/marmos91/oakd/pkg/channel"
	"github.com/marmos91/oakd/pkg/extension"
)

// PerRequestState holds everything scoped to exactly one invocation: the
// request bytes the guest reads, the response bytes it writes, the
// extension set it may dispatch to, and the channel switchboard wiring
// channel-based extensions to their guest-visible handles. Nothing here
// outlives a single Handle/Run call — it is built fresh per request and
// discarded afterward.
type PerRequestState struct {
	requestBytes []byte

	mu            sync.Mutex
	responseBytes []byte
	responseSet   bool

	extensions  *extension.Set
	switchboard *channel.Switchboard
}

// NewPerRequestState constructs the state for a single invocation.
func NewPerRequestState(request []byte, extensions *extension.Set, switchboard *channel.Switchboard) *PerRequestState {
	return &PerRequestState{
		requestBytes: request,
		extensions:   extensions,
		switchboard:  switchboard,
	}
}

// setResponse overwrites the response bytes. Last writer wins: a guest that
// calls write_response more than once leaves only the final call's bytes.
func (s *PerRequestState) setResponse(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responseBytes = data
	s.responseSet = true
}

// Response returns the bytes most recently written by the guest. If the
// guest never called write_response, it returns (nil, false) and the
// caller treats the body as empty.
func (s *PerRequestState) Response() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.responseBytes, s.responseSet
}
