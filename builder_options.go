package hypermph

import (
	"fmt"
	"log/slog"

	streamerrors "github.com/tamirms/hypermph/errors"
)

const (
	// defaultChunkSize is the target number of keys per chunk.
	defaultChunkSize = 1024

	// maxChunkSize bounds WithChunkSize well below the solver's per-chunk limit.
	maxChunkSize = 1 << 24
)

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

// ProgressFunc is called after each chunk is solved with the number of
// chunks solved so far and the total.
type ProgressFunc func(done, total int)

type buildConfig struct {
	workers    int
	globalSeed uint64
	hash       HashAlgorithm
	chunkSize  uint64
	logger     *slog.Logger
	progress   ProgressFunc

	totalKeys uint64 // Pre-known key count
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		workers:    0,                  // Default to single-threaded; use WithWorkers(n) to parallelize
		globalSeed: 0x1234567890abcdef, // Arbitrary default; overridden via WithGlobalSeed
		hash:       HashXXH3,
		chunkSize:  defaultChunkSize,
		logger:     slog.New(slog.DiscardHandler),
	}
}

func (c *buildConfig) validate() error {
	if !c.hash.valid() {
		return fmt.Errorf("%w: hash algorithm %d", streamerrors.ErrInvalidOption, c.hash)
	}
	if c.chunkSize == 0 || c.chunkSize > maxChunkSize {
		return fmt.Errorf("%w: chunk size %d not in [1, %d]", streamerrors.ErrInvalidOption, c.chunkSize, maxChunkSize)
	}
	if c.logger == nil {
		return fmt.Errorf("%w: nil logger", streamerrors.ErrInvalidOption)
	}
	return nil
}

// WithWorkers sets the number of goroutines solving chunks in Finish.
// Values below 2 solve on the calling goroutine.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		c.workers = n
	}
}

// WithGlobalSeed sets the global hash seed.
func WithGlobalSeed(seed uint64) BuildOption {
	return func(c *buildConfig) {
		c.globalSeed = seed
	}
}

// WithHashAlgorithm sets the wide hash. Default is HashXXH3.
// The same algorithm must be passed to UsingHashAlgorithm when loading.
func WithHashAlgorithm(h HashAlgorithm) BuildOption {
	return func(c *buildConfig) {
		c.hash = h
	}
}

// WithChunkSize sets the target number of keys per chunk. The chunk count is
// the smallest power of two that keeps the average chunk at or below n keys.
func WithChunkSize(n uint64) BuildOption {
	return func(c *buildConfig) {
		c.chunkSize = n
	}
}

// WithLogger sets the logger for build diagnostics. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// WithProgress registers a callback for chunk solving progress. With
// multiple workers, calls are serialized but may come from any goroutine.
func WithProgress(fn ProgressFunc) BuildOption {
	return func(c *buildConfig) {
		c.progress = fn
	}
}
