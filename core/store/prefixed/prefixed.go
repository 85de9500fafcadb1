// Package prefixed implements a store that isolates the key space of a
// contract by hashing every key with the contract identifier.
package prefixed

import (
	"encoding/binary"

	"go.dedis.ch/matchgame/core/store"
	"go.dedis.ch/matchgame/crypto"
)

var hashFac crypto.HashFactory = crypto.NewSha256Factory()

type readable struct {
	store.Readable
	prefix []byte
}

type writable struct {
	store.Writable
	prefix []byte
}

type snapshot struct {
	*writable
	*readable
}

// NewSnapshot creates a new prefixed Snapshot.
func NewSnapshot(prefix string, snap store.Snapshot) store.Snapshot {
	p := []byte(prefix)

	return &snapshot{
		writable: &writable{Writable: snap, prefix: p},
		readable: &readable{Readable: snap, prefix: p},
	}
}

// NewReadable creates a new prefixed Readable.
func NewReadable(prefix string, r store.Readable) store.Readable {
	return &readable{Readable: r, prefix: []byte(prefix)}
}

// Get implements store.Readable.
func (s *readable) Get(key []byte) ([]byte, error) {
	return s.Readable.Get(NewPrefixedKey(s.prefix, key))
}

// Set implements store.Writable.
func (s *writable) Set(key []byte, value []byte) error {
	return s.Writable.Set(NewPrefixedKey(s.prefix, key), value)
}

// Delete implements store.Writable.
func (s *writable) Delete(key []byte) error {
	return s.Writable.Delete(NewPrefixedKey(s.prefix, key))
}

// NewPrefixedKey creates a 256 bits key from a prefix and a base key. Both
// parts are length-prefixed so that ("ab", "c") and ("a", "bc") differ.
func NewPrefixedKey(prefix, key []byte) []byte {
	h := hashFac.New()

	length := make([]byte, 2)

	binary.LittleEndian.PutUint16(length, uint16(len(prefix)))
	h.Write(length)
	h.Write(prefix)

	binary.LittleEndian.PutUint16(length, uint16(len(key)))
	h.Write(length)
	h.Write(key)

	return h.Sum(nil)
}
