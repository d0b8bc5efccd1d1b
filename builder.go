package hypermph

import (
	"context"
	"fmt"
	"math/bits"
	"time"

	"github.com/cespare/xxhash/v2"

	streamerrors "github.com/tamirms/hypermph/errors"
	intbits "github.com/tamirms/hypermph/internal/bits"
	"github.com/tamirms/hypermph/internal/hypergraph"
)

// contextCheckInterval is how often to check for context cancellation during AddKey.
const contextCheckInterval = 10000

// Builder collects the digests of a key set and solves it into an Index.
//
// Usage:
//
//	builder, err := hypermph.NewBuilder(ctx, totalKeys, opts...)
//	if err != nil { return err }
//	defer builder.Close() // Clean up on error
//
//	for _, key := range keys {
//	    if err := builder.AddKey(key); err != nil { return err }
//	}
//	idx, err := builder.Finish()
//
// Keys may be added in any order. Within a chunk, keys receive consecutive
// indices in the order they were added.
type Builder struct {
	ctx        context.Context
	cfg        *buildConfig
	chunkShift uint
	chunks     [][]hypergraph.Key
	keyCounter uint64
	closed     bool
}

// NewBuilder creates a builder for a set of exactly totalKeys distinct keys.
func NewBuilder(ctx context.Context, totalKeys uint64, opts ...BuildOption) (*Builder, error) {
	if totalKeys == 0 {
		return nil, streamerrors.ErrEmptyKeySet
	}
	if totalKeys > maxKeys {
		return nil, streamerrors.ErrTooManyKeys
	}

	cfg := defaultBuildConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.totalKeys = totalKeys

	shift := chunkShiftFor(totalKeys, cfg.chunkSize)
	numChunks := uint64(1) << shift
	perChunk := totalKeys/numChunks + 1

	b := &Builder{
		ctx:        ctx,
		cfg:        cfg,
		chunkShift: shift,
		chunks:     make([][]hypergraph.Key, numChunks),
	}
	for i := range b.chunks {
		b.chunks[i] = make([]hypergraph.Key, 0, perChunk+perChunk/8)
	}
	return b, nil
}

// chunkShiftFor returns ceil(log2(ceil(totalKeys/chunkSize))), clamped to
// [0, maxChunkShift].
func chunkShiftFor(totalKeys, chunkSize uint64) uint {
	chunks := (totalKeys + chunkSize - 1) / chunkSize
	if chunks <= 1 {
		return 0
	}
	return min(uint(bits.Len64(chunks-1)), maxChunkShift)
}

// AddKey adds a byte key.
func (b *Builder) AddKey(key []byte) error {
	if b.closed {
		return streamerrors.ErrBuilderClosed
	}
	hi, lo := b.cfg.hash.digest(key, b.cfg.globalSeed)
	return b.add(hi, lo)
}

// AddUint64 adds an integer key, hashed as its 8-byte little-endian encoding.
func (b *Builder) AddUint64(key uint64) error {
	if b.closed {
		return streamerrors.ErrBuilderClosed
	}
	hi, lo := b.cfg.hash.digestUint64(key, b.cfg.globalSeed)
	return b.add(hi, lo)
}

// AddString adds a string key.
func (b *Builder) AddString(key string) error {
	if b.closed {
		return streamerrors.ErrBuilderClosed
	}
	hi, lo := b.cfg.hash.digestString(key, b.cfg.globalSeed)
	return b.add(hi, lo)
}

func (b *Builder) add(hi, lo uint64) error {
	b.keyCounter++
	if b.keyCounter%contextCheckInterval == 0 {
		if err := b.ctx.Err(); err != nil {
			return err
		}
	}
	if b.keyCounter > b.cfg.totalKeys {
		return fmt.Errorf("%w: more than %d keys added", streamerrors.ErrKeyCountMismatch, b.cfg.totalKeys)
	}
	id := chunkID(hi, b.chunkShift)
	b.chunks[id] = append(b.chunks[id], hypergraph.Key{Hi: hi, Lo: lo})
	return nil
}

// Finish solves every chunk and returns the finished Index.
// The builder is closed afterwards, whether or not Finish succeeded.
func (b *Builder) Finish() (*Index, error) {
	if b.closed {
		return nil, streamerrors.ErrBuilderClosed
	}
	defer b.Close()

	if b.keyCounter != b.cfg.totalKeys {
		return nil, fmt.Errorf("%w: expected %d keys, got %d", streamerrors.ErrKeyCountMismatch, b.cfg.totalKeys, b.keyCounter)
	}
	if err := b.ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	numChunks := uint64(len(b.chunks))
	offsets := make([]uint64, numChunks+1)
	var maxChunkKeys uint64
	for i, keys := range b.chunks {
		n := uint64(len(keys))
		offsets[i+1] = offsets[i] + n
		maxChunkKeys = max(maxChunkKeys, n)
	}

	var solutions []hypergraph.Solution
	var err error
	if b.cfg.workers > 1 {
		solutions, err = b.solveParallel(offsets)
	} else {
		solutions, err = b.solveSequential(offsets)
	}
	if err != nil {
		return nil, err
	}

	width := hypergraph.FieldWidth(maxChunkKeys)
	values := make(intbits.Vector, intbits.WordsForBits(hypergraph.VertexOffset(b.cfg.totalKeys, numChunks)*uint64(width)))
	table := make([]uint64, numChunks+1)
	for i, sol := range solutions {
		table[i] = hypergraph.PackEntry(offsets[i], sol.Seed)
		if offsets[i+1] == offsets[i] {
			continue
		}
		vertexBase := hypergraph.VertexOffset(offsets[i], uint64(i))
		for v, f := range sol.Fields {
			values.SetField((vertexBase+uint64(v))*uint64(width), width, uint64(f))
		}
	}
	table[numChunks] = hypergraph.PackEntry(b.cfg.totalKeys, 0)

	idx := &Index{
		size:       b.cfg.totalKeys,
		chunkShift: b.chunkShift,
		globalSeed: b.cfg.globalSeed,
		table:      table,
		values:     values,
		fieldWidth: width,
		hash:       b.cfg.hash,
	}
	digest := xxhash.New()
	if _, err := idx.WriteTo(digest); err != nil {
		return nil, fmt.Errorf("checksum structure: %w", err)
	}
	idx.checksum = digest.Sum64()

	b.cfg.logger.Debug("structure built",
		"keys", b.cfg.totalKeys,
		"chunks", numChunks,
		"field_width", width,
		"elapsed", time.Since(start))
	return idx, nil
}

// chunkVertices returns the number of vertices owned by chunk i.
func chunkVertices(offsets []uint64, i int) uint64 {
	return hypergraph.VertexOffset(offsets[i+1], uint64(i+1)) - hypergraph.VertexOffset(offsets[i], uint64(i))
}

// solveSequential solves all chunks on the calling goroutine with one Solver.
func (b *Builder) solveSequential(offsets []uint64) ([]hypergraph.Solution, error) {
	solver := hypergraph.NewSolver()
	solutions := make([]hypergraph.Solution, len(b.chunks))
	for i, keys := range b.chunks {
		if err := b.ctx.Err(); err != nil {
			return nil, err
		}
		sol, err := b.solveChunk(solver, i, keys, chunkVertices(offsets, i))
		if err != nil {
			return nil, err
		}
		solutions[i] = sol
		if b.cfg.progress != nil {
			b.cfg.progress(i+1, len(b.chunks))
		}
	}
	return solutions, nil
}

func (b *Builder) solveChunk(solver *hypergraph.Solver, i int, keys []hypergraph.Key, vertices uint64) (hypergraph.Solution, error) {
	sol, err := solver.Solve(keys, vertices)
	if err != nil {
		return sol, fmt.Errorf("chunk %d: %w", i, err)
	}
	if sol.Attempts > 1 {
		b.cfg.logger.Debug("chunk needed seed retries",
			"chunk", i,
			"keys", len(keys),
			"attempts", sol.Attempts)
	}
	return sol, nil
}

// Close releases the builder's key buffers. Safe to call multiple times.
func (b *Builder) Close() error {
	b.closed = true
	b.chunks = nil
	return nil
}

// Build creates an Index from a slice of distinct byte keys.
func Build(ctx context.Context, keys [][]byte, opts ...BuildOption) (*Index, error) {
	builder, err := NewBuilder(ctx, uint64(len(keys)), opts...)
	if err != nil {
		return nil, err
	}
	defer builder.Close()

	for _, key := range keys {
		if err := builder.AddKey(key); err != nil {
			return nil, err
		}
	}
	return builder.Finish()
}

// BuildUint64 creates an Index from a slice of distinct integer keys.
func BuildUint64(ctx context.Context, keys []uint64, opts ...BuildOption) (*Index, error) {
	builder, err := NewBuilder(ctx, uint64(len(keys)), opts...)
	if err != nil {
		return nil, err
	}
	defer builder.Close()

	for _, key := range keys {
		if err := builder.AddUint64(key); err != nil {
			return nil, err
		}
	}
	return builder.Finish()
}
