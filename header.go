package hypermph

import (
	"encoding/binary"

	"github.com/tamirms/hypermph/internal/hypergraph"
)

const (
	// wordSize is the size of every serialized integer.
	wordSize = 8

	// headerWords is the number of words before the chunk table:
	// size, chunk_shift, global_seed, edge_offset_and_seed_length.
	headerWords = 4

	// maxChunkShift bounds the chunk table to 2^32+1 entries.
	maxChunkShift = 32

	// maxKeys is the largest key count a chunk table offset can represent.
	maxKeys = hypergraph.OffsetMask
)

// header holds the fixed-width fields that precede the chunk table.
//
// Stream layout (all fields uint64 little-endian):
//
//	Word  Field
//	0     size
//	1     chunk_shift
//	2     global_seed
//	3     edge_offset_and_seed_length  (= 1<<chunk_shift + 1)
//	4..   edge_offset_and_seed         (length words)
//	      array_length
//	      array                        (array_length words)
type header struct {
	Size        uint64
	ChunkShift  uint64
	GlobalSeed  uint64
	TableLength uint64
}

// encodeTo serializes the header into the first 32 bytes of buf.
func (h *header) encodeTo(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], h.Size)
	binary.LittleEndian.PutUint64(buf[8:16], h.ChunkShift)
	binary.LittleEndian.PutUint64(buf[16:24], h.GlobalSeed)
	binary.LittleEndian.PutUint64(buf[24:32], h.TableLength)
}

// decodeHeader parses the first 32 bytes of buf.
func decodeHeader(buf []byte) header {
	return header{
		Size:        binary.LittleEndian.Uint64(buf[0:8]),
		ChunkShift:  binary.LittleEndian.Uint64(buf[8:16]),
		GlobalSeed:  binary.LittleEndian.Uint64(buf[16:24]),
		TableLength: binary.LittleEndian.Uint64(buf[24:32]),
	}
}

// numChunks returns 1 << ChunkShift. Callers must have validated the shift.
func (h *header) numChunks() uint64 {
	return uint64(1) << h.ChunkShift
}

// encodedSize returns the serialized size in bytes of a structure with the
// given table and array lengths.
func encodedSize(tableLength, arrayLength uint64) uint64 {
	return (headerWords + tableLength + 1 + arrayLength) * wordSize
}
