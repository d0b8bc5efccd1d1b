package hypermph

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"

	streamerrors "github.com/tamirms/hypermph/errors"
)

// HashAlgorithm identifies the 128-bit seeded hash that turns keys into
// digests. It is not stored in the structure stream: the same algorithm must
// be selected when building and when loading.
type HashAlgorithm uint8

const (
	// HashXXH3 uses xxHash3-128 with a 64-bit seed. This is the default.
	HashXXH3 HashAlgorithm = 0

	// HashMurmur3 uses MurmurHash3 x64-128. Its 32-bit seed is the XOR of
	// the two halves of the global seed.
	HashMurmur3 HashAlgorithm = 1
)

// String returns the algorithm name.
func (h HashAlgorithm) String() string {
	switch h {
	case HashXXH3:
		return "xxh3"
	case HashMurmur3:
		return "murmur3"
	default:
		return "unknown"
	}
}

// ParseHashAlgorithm returns the algorithm with the given name.
func ParseHashAlgorithm(name string) (HashAlgorithm, error) {
	switch name {
	case "xxh3":
		return HashXXH3, nil
	case "murmur3":
		return HashMurmur3, nil
	}
	return 0, fmt.Errorf("%w: unknown hash algorithm %q", streamerrors.ErrInvalidOption, name)
}

func (h HashAlgorithm) valid() bool {
	return h == HashXXH3 || h == HashMurmur3
}

// digest hashes key with seed into a 128-bit (hi, lo) digest.
func (h HashAlgorithm) digest(key []byte, seed uint64) (hi, lo uint64) {
	if h == HashMurmur3 {
		return murmur3.Sum128WithSeed(key, uint32(seed)^uint32(seed>>32))
	}
	d := xxh3.Hash128Seed(key, seed)
	return d.Hi, d.Lo
}

// digestString hashes the bytes of s without copying them.
func (h HashAlgorithm) digestString(s string, seed uint64) (hi, lo uint64) {
	if h == HashMurmur3 {
		return murmur3.Sum128WithSeed(unsafe.Slice(unsafe.StringData(s), len(s)), uint32(seed)^uint32(seed>>32))
	}
	d := xxh3.HashString128Seed(s, seed)
	return d.Hi, d.Lo
}

// digestUint64 hashes the 8-byte little-endian encoding of key, so an
// integer key and the equivalent byte key share a digest.
func (h HashAlgorithm) digestUint64(key uint64, seed uint64) (hi, lo uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return h.digest(buf[:], seed)
}
