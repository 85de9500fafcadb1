// Package crypto defines the cryptographic primitives used by the node.
//
// The node only needs digests: transactions are identified by the hash of
// their fingerprint, and contracts get an isolated key space by hashing the
// keys with a prefix.
package crypto

import "hash"

// HashFactory is an interface to produce a hash digest.
type HashFactory interface {
	New() hash.Hash
}
