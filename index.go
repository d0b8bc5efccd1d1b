package hypermph

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/edsrzf/mmap-go"

	streamerrors "github.com/tamirms/hypermph/errors"
	intbits "github.com/tamirms/hypermph/internal/bits"
	"github.com/tamirms/hypermph/internal/hypergraph"
)

// Index is a read-only minimal perfect hash function.
//
// Thread Safety:
//   - Lookups and other read methods are safe for concurrent use
//   - Close is NOT safe to call concurrently with lookups
//   - Close must only be called after all lookups have completed
//   - After Close returns, lookups on an opened Index are undefined
type Index struct {
	// Memory map backing table and values when opened from a file.
	mmap mmap.MMap

	size       uint64
	chunkShift uint
	globalSeed uint64
	table      []uint64 // C+1 entries, offset and seed packed
	values     intbits.Vector
	fieldWidth uint

	hash     HashAlgorithm
	checksum uint64

	closed atomic.Bool // Atomic for lock-free close check
}

// Stats holds index statistics.
type Stats struct {
	NumKeys    uint64
	NumChunks  uint64
	ChunkShift uint
	FieldWidth uint
	Vertices   uint64
	SizeBytes  uint64
	BitsPerKey float64
	Checksum   uint64
}

func newIndex(hdr *header, table, values []uint64, width uint, hash HashAlgorithm, checksum uint64) *Index {
	return &Index{
		size:       hdr.Size,
		chunkShift: uint(hdr.ChunkShift),
		globalSeed: hdr.GlobalSeed,
		table:      table,
		values:     values,
		fieldWidth: width,
		hash:       hash,
		checksum:   checksum,
	}
}

// Open opens a structure file for querying.
// It opens the file, memory-maps it, and closes the file descriptor.
func Open(path string, opts ...LoadOption) (*Index, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open structure file: %w", err)
	}
	defer file.Close()
	return OpenFile(file, opts...)
}

// OpenFile opens a structure by memory-mapping the given file.
// The caller is responsible for closing f. Per POSIX mmap(2), f may be
// closed immediately after OpenFile returns.
func OpenFile(f *os.File, opts ...LoadOption) (*Index, error) {
	cfg, err := newLoadConfig(opts)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat structure file: %w", err)
	}
	if stat.Size() < headerWords*wordSize {
		return nil, streamerrors.ErrTruncated
	}

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap structure file: %w", err)
	}
	adviseRandom(mm)

	idx, err := loadBytes(mm, cfg)
	if err != nil {
		return nil, errors.Join(err, mm.Unmap())
	}
	idx.mmap = mm
	return idx, nil
}

// Close releases the memory map of an opened index. It is a no-op for
// indexes that were loaded from a stream or built in memory.
func (idx *Index) Close() error {
	if idx.closed.Swap(true) {
		return nil
	}
	if idx.mmap != nil {
		return idx.mmap.Unmap()
	}
	return nil
}

// LookupBytes returns the index of key in [0, NumKeys()).
//
// Keys of the build set receive distinct indices. Any other key receives
// some index in range.
func (idx *Index) LookupBytes(key []byte) uint64 {
	hi, lo := idx.hash.digest(key, idx.globalSeed)
	return idx.lookup(hi, lo)
}

// LookupUint64 returns the index of an integer key. The key is hashed as its
// 8-byte little-endian encoding, so it agrees with LookupBytes on that
// encoding.
func (idx *Index) LookupUint64(key uint64) uint64 {
	hi, lo := idx.hash.digestUint64(key, idx.globalSeed)
	return idx.lookup(hi, lo)
}

// LookupString is LookupBytes for a string key, without copying it.
func (idx *Index) LookupString(key string) uint64 {
	hi, lo := idx.hash.digestString(key, idx.globalSeed)
	return idx.lookup(hi, lo)
}

func (idx *Index) lookup(hi, lo uint64) uint64 {
	c := idx.resolveChunk(hi)
	if c.Keys == 0 {
		// Only non-members reach an empty chunk.
		switch {
		case c.base < idx.size:
			return c.base
		case idx.size == 0:
			return 0
		default:
			return idx.size - 1
		}
	}
	return c.base + hypergraph.Evaluate(idx.values, idx.fieldWidth, c.Chunk, hi, lo)
}

// NumKeys returns the number of keys in the build set.
func (idx *Index) NumKeys() uint64 {
	return idx.size
}

// NumChunks returns the number of chunks.
func (idx *Index) NumChunks() uint64 {
	return uint64(1) << idx.chunkShift
}

// GlobalSeed returns the seed passed to the wide hash for every key.
func (idx *Index) GlobalSeed() uint64 {
	return idx.globalSeed
}

// HashAlgorithm returns the wide hash the index queries with.
func (idx *Index) HashAlgorithm() HashAlgorithm {
	return idx.hash
}

// Checksum returns the xxHash64 of the serialized structure.
func (idx *Index) Checksum() uint64 {
	return idx.checksum
}

// Stats returns statistics for the index.
func (idx *Index) Stats() Stats {
	chunks := idx.NumChunks()
	sizeBytes := encodedSize(uint64(len(idx.table)), uint64(len(idx.values)))

	bitsPerKey := float64(0)
	if idx.size > 0 {
		bitsPerKey = float64(sizeBytes*8) / float64(idx.size)
	}

	return Stats{
		NumKeys:    idx.size,
		NumChunks:  chunks,
		ChunkShift: idx.chunkShift,
		FieldWidth: idx.fieldWidth,
		Vertices:   hypergraph.VertexOffset(idx.size, chunks),
		SizeBytes:  sizeBytes,
		BitsPerKey: bitsPerKey,
		Checksum:   idx.checksum,
	}
}

// GetStats returns statistics for a structure file.
func GetStats(path string, opts ...LoadOption) (Stats, error) {
	idx, err := Open(path, opts...)
	if err != nil {
		return Stats{}, err
	}
	return idx.Stats(), idx.Close()
}
