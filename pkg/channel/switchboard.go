package channel

import "sync"

// Handle is a stable integer tag identifying a channel within a single
// request, distinct from the extension handle namespace.
type Handle uint32

// Switchboard maps channel handles to the host-side Endpoint for a single
// request. It is built fresh per request as part of PerRequestState and
// discarded when the request completes — nothing here outlives one
// invocation.
type Switchboard struct {
	mu        sync.Mutex
	endpoints map[Handle]*Endpoint
}

// NewSwitchboard returns an empty switchboard.
func NewSwitchboard() *Switchboard {
	return &Switchboard{endpoints: make(map[Handle]*Endpoint)}
}

// Bind registers the host-side endpoint for handle, replacing any existing
// mapping for that handle.
func (s *Switchboard) Bind(handle Handle, ep *Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints[handle] = ep
}

// Lookup returns the endpoint bound to handle, if any.
func (s *Switchboard) Lookup(handle Handle) (*Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ep, ok := s.endpoints[handle]
	return ep, ok
}

// CloseAll closes every endpoint registered in the switchboard. Called once
// when the owning request completes.
func (s *Switchboard) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ep := range s.endpoints {
		ep.Close()
	}
}
