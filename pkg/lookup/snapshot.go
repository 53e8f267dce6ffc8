// Package lookup implements the immutable bytes-to-bytes lookup table
// exposed to Wasm guests through the lookup extension, and the manager that
// owns atomic replacement of that table.
package lookup

// Snapshot is an immutable point-in-time view of the lookup table. Once
// constructed a Snapshot's contents never change; a Manager update produces
// a new Snapshot and existing holders keep observing their original
// contents for as long as they retain the pointer.
type Snapshot struct {
	data map[string][]byte
}

// NewSnapshot copies data into a fresh, private Snapshot. The caller's map
// is not retained, so later mutation of data by the caller cannot leak into
// the snapshot.
func NewSnapshot(data map[string][]byte) *Snapshot {
	cloned := make(map[string][]byte, len(data))
	for k, v := range data {
		val := make([]byte, len(v))
		copy(val, v)
		cloned[k] = val
	}
	return &Snapshot{data: cloned}
}

// Get returns the value for key and whether it was present. A miss returns
// (nil, false); it is never an error.
func (s *Snapshot) Get(key []byte) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.data[string(key)]
	return v, ok
}

// Len reports the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.data)
}
