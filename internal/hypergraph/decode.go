package hypergraph

import (
	intbits "github.com/tamirms/hypermph/internal/bits"
)

// Chunk describes the part of the structure a key resolved to.
type Chunk struct {
	Seed       uint64 // chunk seed (0..MaxSeeds-1)
	Keys       uint64 // number of keys in the chunk
	VertexBase uint64 // first vertex of the chunk in the value array
	Vertices   uint64 // number of vertices owned by the chunk
}

// Evaluate returns the chunk-local index of the key with digest (hi, lo).
//
// The result is always in [0, c.Keys) when c.Keys > 0. Keys of the build set
// get the index the solver assigned them; other keys get an arbitrary one.
// Evaluate returns 0 for an empty chunk.
func Evaluate(values intbits.Vector, width uint, c Chunk, hi, lo uint64) uint64 {
	if c.Keys == 0 {
		return 0
	}
	e := Edge(hi, lo, c.Seed, c.Vertices)
	w := uint64(width)
	f0 := values.Field((c.VertexBase+e[0])*w, width)
	f1 := values.Field((c.VertexBase+e[1])*w, width)
	f2 := values.Field((c.VertexBase+e[2])*w, width)
	return (f0 + f1 + f2) % c.Keys
}
