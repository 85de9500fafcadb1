package kv

import "go.dedis.ch/matchgame/core/store"

// bucketSnapshot exposes a bucket as a store snapshot. Values are copied out
// of the bucket as they are only valid for the life of the transaction.
//
// - implements store.Snapshot
type bucketSnapshot struct {
	bucket Bucket
}

// NewSnapshot returns a snapshot that reads and writes the bucket.
func NewSnapshot(bucket Bucket) store.Snapshot {
	return bucketSnapshot{bucket: bucket}
}

// NewReadable returns a read-only view of the bucket. A nil bucket is seen as
// an empty one.
func NewReadable(bucket Bucket) store.Readable {
	return bucketSnapshot{bucket: bucket}
}

// Get implements store.Readable.
func (s bucketSnapshot) Get(key []byte) ([]byte, error) {
	if s.bucket == nil {
		return nil, nil
	}

	value := s.bucket.Get(key)
	if value == nil {
		return nil, nil
	}

	return append([]byte{}, value...), nil
}

// Set implements store.Writable.
func (s bucketSnapshot) Set(key, value []byte) error {
	return s.bucket.Set(key, value)
}

// Delete implements store.Writable.
func (s bucketSnapshot) Delete(key []byte) error {
	return s.bucket.Delete(key)
}
