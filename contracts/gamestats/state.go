package gamestats

import (
	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/serde"
	"golang.org/x/xerrors"
)

// stateKey is the key of the single record of the contract.
var stateKey = []byte("stats")

// StateStore is the storage capability of the ledger. It holds one record.
type StateStore interface {
	// Load returns the persisted record, or ErrStateNotFound if none exists.
	Load() (GameStats, error)

	// Store persists the record.
	Store(GameStats) error
}

// snapshotStore is a state store on top of a store snapshot. The record is
// serialized with the context.
//
// - implements gamestats.StateStore
type snapshotStore struct {
	r   store.Readable
	w   store.Writable
	ctx serde.Context
	fac StatsFactory
}

// NewStateStore returns a state store that reads and writes the snapshot.
func NewStateStore(snap store.Snapshot, ctx serde.Context) StateStore {
	return snapshotStore{r: snap, w: snap, ctx: ctx}
}

// NewReadOnlyStore returns a state store that can only load the record.
func NewReadOnlyStore(r store.Readable, ctx serde.Context) StateStore {
	return snapshotStore{r: r, ctx: ctx}
}

// Load implements gamestats.StateStore.
func (s snapshotStore) Load() (GameStats, error) {
	data, err := s.r.Get(stateKey)
	if err != nil {
		return GameStats{}, xerrors.Errorf("failed to read state: %v", err)
	}

	if len(data) == 0 {
		return GameStats{}, ErrStateNotFound
	}

	stats, err := s.fac.StatsOf(s.ctx, data)
	if err != nil {
		return GameStats{}, xerrors.Errorf("failed to decode state: %v", err)
	}

	return stats, nil
}

// Store implements gamestats.StateStore.
func (s snapshotStore) Store(stats GameStats) error {
	if s.w == nil {
		return xerrors.New("store is read-only")
	}

	data, err := stats.Serialize(s.ctx)
	if err != nil {
		return xerrors.Errorf("failed to serialize state: %v", err)
	}

	err = s.w.Set(stateKey, data)
	if err != nil {
		return xerrors.Errorf("failed to write state: %v", err)
	}

	return nil
}

// memoryStore is a state store that keeps the record in memory.
//
// - implements gamestats.StateStore
type memoryStore struct {
	stats *GameStats
}

// NewMemoryStore returns an empty state store that keeps the record in
// memory.
func NewMemoryStore() StateStore {
	return &memoryStore{}
}

// Load implements gamestats.StateStore.
func (s *memoryStore) Load() (GameStats, error) {
	if s.stats == nil {
		return GameStats{}, ErrStateNotFound
	}

	return *s.stats, nil
}

// Store implements gamestats.StateStore.
func (s *memoryStore) Store(stats GameStats) error {
	s.stats = &stats
	return nil
}
