package fake

import "go.dedis.ch/matchgame/core/store"

// InMemorySnapshot is a fake implementation of a store snapshot.
//
// - implements store.Snapshot
type InMemorySnapshot struct {
	values    map[string][]byte
	ErrRead   error
	ErrWrite  error
	ErrDelete error
}

// NewSnapshot creates a new empty snapshot.
func NewSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values: make(map[string][]byte),
	}
}

// NewBadSnapshot creates a new empty snapshot that will always return an error.
func NewBadSnapshot() *InMemorySnapshot {
	return &InMemorySnapshot{
		values:    make(map[string][]byte),
		ErrRead:   fakeErr,
		ErrWrite:  fakeErr,
		ErrDelete: fakeErr,
	}
}

// Get implements store.Readable.
func (snap *InMemorySnapshot) Get(key []byte) ([]byte, error) {
	if snap.ErrRead != nil {
		return nil, snap.ErrRead
	}

	return snap.values[string(key)], nil
}

// Set implements store.Writable.
func (snap *InMemorySnapshot) Set(key, value []byte) error {
	if snap.ErrWrite != nil {
		return snap.ErrWrite
	}

	snap.values[string(key)] = value

	return nil
}

// Delete implements store.Writable.
func (snap *InMemorySnapshot) Delete(key []byte) error {
	if snap.ErrDelete != nil {
		return snap.ErrDelete
	}

	delete(snap.values, string(key))

	return nil
}

// Len returns the number of keys in the snapshot.
func (snap *InMemorySnapshot) Len() int {
	return len(snap.values)
}

var _ store.Snapshot = (*InMemorySnapshot)(nil)
