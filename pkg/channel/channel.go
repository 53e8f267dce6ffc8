// Package channel implements the bounded, bidirectional, non-blocking
// in-process message channels that back channel-based extensions. A guest
// never blocks on a channel operation: send and receive are always
// try-semantics, so a slow or absent peer can never let a guest burn the
// policy time budget deterministically on a channel op (it can still busy
// spin, which is the guest's own problem, not the fabric's).
package channel

import (
	"sync/atomic"

	"github.com/marmos91/oakd/pkg/ombox"
)

// Capacity is the fixed bound on each unidirectional queue within a pair.
const Capacity = 100

// Endpoint is one side of a bidirectional channel pair. Sending on an
// Endpoint's send half is received on its peer's receive half, and vice
// versa — see NewPair.
type Endpoint struct {
	send chan []byte
	recv chan []byte

	closed     *atomic.Bool // set by this endpoint's own Close
	peerClosed *atomic.Bool // this endpoint's view of its peer's Close
}

// NewPair creates two crossed endpoints: messages sent on a are received on
// b, and messages sent on b are received on a. Each unidirectional queue
// has capacity Capacity.
func NewPair() (a, b *Endpoint) {
	aToB := make(chan []byte, Capacity)
	bToA := make(chan []byte, Capacity)

	aClosed := &atomic.Bool{}
	bClosed := &atomic.Bool{}

	a = &Endpoint{send: aToB, recv: bToA, closed: aClosed, peerClosed: bClosed}
	b = &Endpoint{send: bToA, recv: aToB, closed: bClosed, peerClosed: aClosed}
	return a, b
}

// Send performs a non-blocking send. It fails with ErrChannelFull if the
// queue is at capacity, or ErrChannelEndpointClosed if the peer's receive
// half has been closed.
func (e *Endpoint) Send(msg []byte) error {
	if e.peerClosed.Load() {
		return ombox.New(ombox.ErrChannelEndpointClosed, "peer endpoint is closed")
	}
	select {
	case e.send <- msg:
		return nil
	default:
		return ombox.New(ombox.ErrChannelFull, "channel queue at capacity %d", Capacity)
	}
}

// TryRecv performs a non-blocking receive. It returns ErrChannelEmpty if no
// message is pending, or ErrChannelEndpointDisconnected if the peer has
// closed and the queue has drained.
func (e *Endpoint) TryRecv() ([]byte, error) {
	select {
	case msg := <-e.recv:
		return msg, nil
	default:
		if e.peerClosed.Load() {
			return nil, ombox.New(ombox.ErrChannelEndpointDisconnected, "peer endpoint disconnected")
		}
		return nil, ombox.New(ombox.ErrChannelEmpty, "no message pending")
	}
}

// Close stops further reception by this endpoint and signals its peer (via
// the shared closed flag) that it has gone away.
func (e *Endpoint) Close() {
	e.closed.Store(true)
}
