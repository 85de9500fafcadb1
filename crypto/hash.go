package crypto

import (
	"crypto/sha256"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/xerrors"
)

// HashAlgorithm is the identifier of a hash function.
type HashAlgorithm int

const (
	// Sha256 is the SHA-2 256 bits hash function.
	Sha256 HashAlgorithm = iota
	// Sha3_224 is the SHA-3 224 bits hash function.
	Sha3_224
)

var algorithmNames = map[HashAlgorithm]string{
	Sha256:   "sha256",
	Sha3_224: "sha3-224",
}

// ParseHashAlgorithm returns the algorithm with the given name, ignoring the
// case.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	for algo, n := range algorithmNames {
		if strings.EqualFold(n, name) {
			return algo, nil
		}
	}

	return 0, xerrors.Errorf("unknown hash algorithm '%s'", name)
}

// String implements fmt.Stringer.
func (a HashAlgorithm) String() string {
	name, found := algorithmNames[a]
	if !found {
		return "unknown"
	}

	return name
}

// hashFactory produces the digests of one of the supported algorithms.
//
// - implements crypto.HashFactory
type hashFactory struct {
	algo HashAlgorithm
}

// NewSha256Factory returns a factory producing SHA-256 digests.
func NewSha256Factory() HashFactory {
	return NewHashFactory(Sha256)
}

// NewHashFactory returns a factory for the given algorithm.
func NewHashFactory(a HashAlgorithm) HashFactory {
	return hashFactory{algo: a}
}

// New implements crypto.HashFactory. It panics if the algorithm is unknown.
func (f hashFactory) New() hash.Hash {
	switch f.algo {
	case Sha256:
		return sha256.New()
	case Sha3_224:
		return sha3.New224()
	default:
		panic("unknown hash type")
	}
}
