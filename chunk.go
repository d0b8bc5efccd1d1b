package hypermph

import "github.com/tamirms/hypermph/internal/hypergraph"

// chunkRef locates the part of the structure that owns a digest.
type chunkRef struct {
	id   uint64
	base uint64 // global index of the chunk's first key
	hypergraph.Chunk
}

// chunkID selects a chunk from the top chunkShift bits of hi.
func chunkID(hi uint64, chunkShift uint) uint64 {
	if chunkShift == 0 {
		return 0
	}
	return hi >> (64 - chunkShift)
}

// resolveChunk maps the high half of a digest to its chunk. The table has
// been validated at load, so resolution cannot fail.
func (idx *Index) resolveChunk(hi uint64) chunkRef {
	id := chunkID(hi, idx.chunkShift)
	entry := idx.table[id]
	base := hypergraph.EntryOffset(entry)
	next := hypergraph.EntryOffset(idx.table[id+1])

	vertexBase := hypergraph.VertexOffset(base, id)
	return chunkRef{
		id:   id,
		base: base,
		Chunk: hypergraph.Chunk{
			Seed:       hypergraph.EntrySeed(entry),
			Keys:       next - base,
			VertexBase: vertexBase,
			Vertices:   hypergraph.VertexOffset(next, id+1) - vertexBase,
		},
	}
}
