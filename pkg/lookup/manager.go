package lookup

import (
	"sync"

	"github.com/marmos91/oakd/pkg/metrics"
	"github.com/marmos91/oakd/pkg/ombox"
)

// UpdateAction selects the form of a Manager update. StartAndFinish is the
// only form implemented: it atomically installs a complete replacement map
// in one call. The action type is kept open-ended because the upstream
// design reserves room for a future multi-phase chunked load (start a
// builder, feed it chunks, finish it) — that flow is not implemented here;
// see DESIGN.md Open Question (a).
type UpdateAction int

// ActionStartAndFinish is the only UpdateAction this Manager accepts.
const ActionStartAndFinish UpdateAction = iota

// UpdateResult reports how an update call resolved.
type UpdateResult int

const (
	// UpdateFinished means the new snapshot was installed.
	UpdateFinished UpdateResult = iota
	// UpdateAborted means a concurrent update was already in progress and
	// this call's data was discarded without touching the current snapshot.
	UpdateAborted
)

// String renders the result the way metrics.LookupMetrics expects it, as a
// label value.
func (r UpdateResult) String() string {
	if r == UpdateFinished {
		return "finished"
	}
	return "aborted"
}

// Manager owns the current lookup Snapshot and serializes replacement of
// it. Reads (CreateLookupData) take a brief read lock and hand back a
// pointer; Go's garbage collector keeps the snapshot's backing map alive
// for as long as any holder keeps that pointer, which is the idiomatic
// analogue of a reference-counted shared handle.
type Manager struct {
	mu       sync.RWMutex
	current  *Snapshot
	building bool
	metrics  metrics.LookupMetrics
}

// NewManager constructs a Manager whose initial snapshot is built from
// initial. A nil or empty initial map yields an empty snapshot, never an
// error — an empty lookup table is a valid starting state. A nil metrics
// is always safe: the Manager nil-checks before every call.
func NewManager(initial map[string][]byte, lookupMetrics metrics.LookupMetrics) *Manager {
	return &Manager{
		current: NewSnapshot(initial),
		metrics: lookupMetrics,
	}
}

// CreateLookupData returns a shared handle to the snapshot current at the
// time of the call. The returned pointer's contents are frozen: a later
// UpdateData never mutates what it points to.
func (m *Manager) CreateLookupData() *Snapshot {
	m.mu.RLock()
	snap := m.current
	m.mu.RUnlock()
	if m.metrics != nil {
		m.metrics.ObserveSnapshotHandout()
	}
	return snap
}

// UpdateData atomically replaces the current snapshot with one built from
// data. Only ActionStartAndFinish is implemented: a caller passing any
// other action gets ErrInvalidArgument.
//
// If another update is already in flight when this call arrives, the
// builder state disallows interleaving: this call discards its data and
// reports UpdateAborted without ever touching the current snapshot.
func (m *Manager) UpdateData(action UpdateAction, data map[string][]byte) (UpdateResult, error) {
	if action != ActionStartAndFinish {
		return UpdateAborted, ombox.New(ombox.ErrInvalidArgument, "unsupported update action %d", action)
	}
	if data == nil {
		return UpdateAborted, ombox.New(ombox.ErrInvalidArgument, "update data must not be nil")
	}

	m.mu.Lock()
	if m.building {
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.ObserveUpdate(UpdateAborted.String(), len(data))
		}
		return UpdateAborted, nil
	}
	m.building = true
	m.mu.Unlock()

	snap := NewSnapshot(data)

	m.mu.Lock()
	m.current = snap
	m.building = false
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ObserveUpdate(UpdateFinished.String(), len(data))
	}
	return UpdateFinished, nil
}
