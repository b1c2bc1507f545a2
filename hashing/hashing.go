// Package hashing digests schemas and table rows.
//
// Sha256 gives stable, printable fingerprints such as schema digests. XXH3
// is the fast path used to bucket rows when looking for duplicates.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"

	"github.com/zeebo/xxh3"
)

// Hashable writes its contents into h. Two values that should compare
// equal must write identical bytes.
type Hashable interface {
	UpdateHash(h hash.Hash) error
}

// Sha256 returns the hex-encoded SHA-256 digest of hashable.
func Sha256(hashable Hashable) (string, error) {
	h := sha256.New()

	if err := hashable.UpdateHash(h); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// XXH3 returns the 64-bit xxh3 digest of the given Hashable. It is
// meant for bucketing large numbers of values (table rows, for example)
// where speed matters and collisions are resolved by the caller.
func XXH3(hashable Hashable) (uint64, error) {
	h := xxh3.New()

	if err := hashable.UpdateHash(h); err != nil {
		return 0, err
	}

	return h.Sum64(), nil
}

// HashableString hashes as its raw bytes.
type HashableString string

func (s HashableString) String() string {
	return string(s)
}

func (s HashableString) UpdateHash(h hash.Hash) error {
	_, err := h.Write([]byte(s))

	return err
}
