// Package hypergraph implements the per-chunk 3-hypergraph function used by
// hypermph.
//
// Every key of a chunk is an edge over three vertices of the chunk's local
// vertex space. Each vertex carries a small field; the sum of the three fields
// of a key's edge, modulo the chunk's key count, is the key's chunk-local
// index. The peeling solver in this package assigns the fields at build time.
package hypergraph

import "math/bits"

// Chunk table entry layout: low 56 bits hold the cumulative key offset,
// high 8 bits hold the chunk seed.
const (
	// SeedBits is the width of the per-chunk seed.
	SeedBits = 8

	// OffsetBits is the width of the cumulative key offset.
	OffsetBits = 64 - SeedBits

	// OffsetMask extracts the offset from a chunk table entry.
	OffsetMask = uint64(1)<<OffsetBits - 1

	// MaxSeeds is the number of distinct chunk seeds the solver may try.
	MaxSeeds = 1 << SeedBits
)

// Vertex space geometry.
const (
	// ratioNum is the vertex over-provisioning ratio in 1/256 units
	// (315/256 ≈ 1.2305, just above the 3-hypergraph peeling threshold).
	ratioNum = 315

	// ratioShift is log2 of the ratio denominator.
	ratioShift = 8

	// slackVertices is added to every chunk so that small chunks peel
	// reliably and every chunk has at least three vertices.
	slackVertices = 32
)

// MaxChunkKeys bounds the number of keys a single chunk may hold, so that
// vertex ids and local indices fit in 32 bits.
const MaxChunkKeys = 1 << 30

// VertexOffset returns the first vertex owned by chunk, given the chunk's
// cumulative key offset. Chunk i owns [VertexOffset(o_i, i), VertexOffset(o_{i+1}, i+1)).
func VertexOffset(offset, chunk uint64) uint64 {
	hi, lo := bits.Mul64(offset, ratioNum)
	return (hi<<(64-ratioShift) | lo>>ratioShift) + slackVertices*chunk
}

// FieldWidth returns the field width in bits needed to store chunk-local
// indices for chunks of up to maxChunkKeys keys. The minimum width is 1.
func FieldWidth(maxChunkKeys uint64) uint {
	if maxChunkKeys <= 1 {
		return 1
	}
	return uint(bits.Len64(maxChunkKeys - 1))
}

// PackEntry builds a chunk table entry from an offset and a seed.
func PackEntry(offset, seed uint64) uint64 {
	return offset&OffsetMask | seed<<OffsetBits
}

// EntryOffset returns the cumulative key offset of a chunk table entry.
func EntryOffset(entry uint64) uint64 {
	return entry & OffsetMask
}

// EntrySeed returns the chunk seed of a chunk table entry.
func EntrySeed(entry uint64) uint64 {
	return entry >> OffsetBits
}
