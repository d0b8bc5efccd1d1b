// Package errors defines all exported error sentinels for the hypermph library.
//
// This is the single source of truth for error values. Both the top-level
// hypermph package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
//
// Every structural load failure wraps ErrMalformedStructure, so callers can
// test for the class or for the specific cause.
package errors

import (
	"errors"
	"fmt"
)

// ErrMalformedStructure is the class of all load failures caused by the byte
// stream itself. A structure that failed to load must not be used.
var ErrMalformedStructure = errors.New("hypermph: malformed structure")

// Load errors
var (
	ErrTruncated        = fmt.Errorf("%w: stream is truncated", ErrMalformedStructure)
	ErrChunkTableLength = fmt.Errorf("%w: chunk table length does not match chunk shift", ErrMalformedStructure)
	ErrOffsetMismatch   = fmt.Errorf("%w: final chunk offset does not match size", ErrMalformedStructure)
	ErrCorruptedTable   = fmt.Errorf("%w: chunk table is corrupted", ErrMalformedStructure)
	ErrArrayLength      = fmt.Errorf("%w: value array length does not match chunk geometry", ErrMalformedStructure)
	ErrChecksumFailed   = errors.New("hypermph: stream checksum verification failed")
)

// ErrOutOfBounds reports a bit-field read past the end of the value array.
// It is raised by panic: it means the loaded structure violates its own
// geometry, which Load rules out.
var ErrOutOfBounds = errors.New("hypermph: bit field read out of bounds")

// Build errors
var (
	ErrBuilderClosed    = errors.New("hypermph: builder is closed")
	ErrEmptyKeySet      = errors.New("hypermph: cannot build structure with zero keys")
	ErrTooManyKeys      = errors.New("hypermph: key count exceeds maximum (2^56-1)")
	ErrKeyCountMismatch = errors.New("hypermph: key count mismatch")
	ErrDuplicateKey     = errors.New("hypermph: duplicate key detected")
	ErrPeelingFailed    = errors.New("hypermph: chunk seed search failed - retry with different global seed")
	ErrInvalidOption    = errors.New("hypermph: invalid option")
)

// Index errors
var (
	ErrIndexClosed = errors.New("hypermph: index is closed")
)

// Key file errors
var (
	ErrKeyFileSize = errors.New("hypermph: key file size is not a multiple of 8 bytes")
)
