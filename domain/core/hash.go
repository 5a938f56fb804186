package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// UnitFraction maps data to a deterministic value in [0,1). Used for
// reproducible sampling decisions that must not depend on iteration order.
func UnitFraction(data string) float64 {
	f := fnv.New64a()
	f.Write([]byte(data))
	return float64(f.Sum64()%1_000_000) / 1_000_000
}
