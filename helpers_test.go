package hypermph

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// generateUint64Keys returns n distinct pseudo-random keys.
func generateUint64Keys(rng *randv2.Rand, n int) []uint64 {
	seen := make(map[uint64]struct{}, n)
	keys := make([]uint64, 0, n)
	for len(keys) < n {
		k := rng.Uint64()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// generateByteKeys returns n distinct keys of random length in [1, 40].
func generateByteKeys(rng *randv2.Rand, n int) [][]byte {
	seen := make(map[string]struct{}, n)
	keys := make([][]byte, 0, n)
	for len(keys) < n {
		key := make([]byte, 1+rng.IntN(40))
		for i := range key {
			key[i] = byte(rng.Uint32())
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// mustBuildUint64 builds an index or fails the test.
func mustBuildUint64(t testing.TB, keys []uint64, opts ...BuildOption) *Index {
	t.Helper()
	idx, err := BuildUint64(context.Background(), keys, opts...)
	require.NoError(t, err)
	return idx
}

// encode serializes idx with WriteTo.
func encode(t testing.TB, idx *Index) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := idx.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)
	return buf.Bytes()
}

// putWord overwrites the i-th little-endian word of a serialized stream.
func putWord(data []byte, i int, v uint64) {
	binary.LittleEndian.PutUint64(data[i*wordSize:], v)
}

// word reads the i-th little-endian word of a serialized stream.
func word(data []byte, i int) uint64 {
	return binary.LittleEndian.Uint64(data[i*wordSize:])
}

// requireBijectionUint64 checks that keys map onto exactly [0, NumKeys()).
func requireBijectionUint64(t testing.TB, idx *Index, keys []uint64) {
	t.Helper()
	require.EqualValues(t, len(keys), idx.NumKeys())
	seen := make([]bool, len(keys))
	for _, k := range keys {
		v := idx.LookupUint64(k)
		require.Less(t, v, idx.NumKeys(), "key %d", k)
		require.False(t, seen[v], "index %d assigned twice", v)
		seen[v] = true
	}
}
