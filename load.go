package hypermph

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	streamerrors "github.com/tamirms/hypermph/errors"
	intbits "github.com/tamirms/hypermph/internal/bits"
	"github.com/tamirms/hypermph/internal/hypergraph"
)

// readBatchWords is the number of words read from a stream per allocation
// step. A corrupt length therefore fails on EOF long before it can force a
// huge allocation.
const readBatchWords = 8192

// nativeLittleEndian reports whether uint64 words in memory use the stream's
// byte order, which allows aliasing the value array instead of copying it.
var nativeLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// LoadOption is a functional option for configuring loads.
type LoadOption func(*loadConfig)

type loadConfig struct {
	hash           HashAlgorithm
	checksum       uint64
	verifyChecksum bool
}

func newLoadConfig(opts []LoadOption) (*loadConfig, error) {
	cfg := &loadConfig{hash: HashXXH3}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.hash.valid() {
		return nil, fmt.Errorf("%w: hash algorithm %d", streamerrors.ErrInvalidOption, cfg.hash)
	}
	return cfg, nil
}

// UsingHashAlgorithm selects the hash the structure was built with.
// Default is HashXXH3.
func UsingHashAlgorithm(h HashAlgorithm) LoadOption {
	return func(c *loadConfig) {
		c.hash = h
	}
}

// ExpectChecksum makes the load fail with ErrChecksumFailed unless the
// xxHash64 of the structure stream equals sum.
func ExpectChecksum(sum uint64) LoadOption {
	return func(c *loadConfig) {
		c.checksum = sum
		c.verifyChecksum = true
	}
}

// Load reads a structure from r.
//
// Load consumes exactly the bytes of the structure and nothing after it.
// Errors caused by the stream contents match ErrMalformedStructure; I/O
// errors from r are returned wrapped.
func Load(r io.Reader, opts ...LoadOption) (*Index, error) {
	cfg, err := newLoadConfig(opts)
	if err != nil {
		return nil, err
	}

	digest := xxhash.New()
	wr := &wordReader{r: io.TeeReader(r, digest)}

	var hdrBuf [headerWords * wordSize]byte
	if err := wr.readFull(hdrBuf[:]); err != nil {
		return nil, err
	}
	hdr := decodeHeader(hdrBuf[:])
	if err := validateHeader(&hdr); err != nil {
		return nil, err
	}

	table, err := wr.words(hdr.TableLength)
	if err != nil {
		return nil, err
	}
	geo, err := validateTable(&hdr, table)
	if err != nil {
		return nil, err
	}

	arrayLength, err := wr.word()
	if err != nil {
		return nil, err
	}
	if arrayLength != geo.words {
		return nil, fmt.Errorf("%w: declared %d words, geometry requires %d", streamerrors.ErrArrayLength, arrayLength, geo.words)
	}
	values, err := wr.words(arrayLength)
	if err != nil {
		return nil, err
	}

	sum := digest.Sum64()
	if cfg.verifyChecksum && sum != cfg.checksum {
		return nil, streamerrors.ErrChecksumFailed
	}
	return newIndex(&hdr, table, values, geo.fieldWidth, cfg.hash, sum), nil
}

// LoadBytes parses a structure held in memory.
//
// When the host is little-endian and the value array is 8-byte aligned
// inside data, the index aliases data instead of copying it; the caller must
// not modify data while the Index is in use. Bytes after the structure are
// ignored.
func LoadBytes(data []byte, opts ...LoadOption) (*Index, error) {
	cfg, err := newLoadConfig(opts)
	if err != nil {
		return nil, err
	}
	return loadBytes(data, cfg)
}

func loadBytes(data []byte, cfg *loadConfig) (*Index, error) {
	size := uint64(len(data))
	if size < headerWords*wordSize {
		return nil, streamerrors.ErrTruncated
	}
	hdr := decodeHeader(data)
	if err := validateHeader(&hdr); err != nil {
		return nil, err
	}

	offset := uint64(headerWords * wordSize)
	if (size-offset)/wordSize < hdr.TableLength+1 {
		return nil, streamerrors.ErrTruncated
	}
	table := make([]uint64, hdr.TableLength)
	for i := range table {
		table[i] = binary.LittleEndian.Uint64(data[offset:])
		offset += wordSize
	}
	geo, err := validateTable(&hdr, table)
	if err != nil {
		return nil, err
	}

	arrayLength := binary.LittleEndian.Uint64(data[offset:])
	offset += wordSize
	if arrayLength != geo.words {
		return nil, fmt.Errorf("%w: declared %d words, geometry requires %d", streamerrors.ErrArrayLength, arrayLength, geo.words)
	}
	if (size-offset)/wordSize < arrayLength {
		return nil, streamerrors.ErrTruncated
	}
	end := offset + arrayLength*wordSize
	values := wordsFromBytes(data[offset:end])

	sum := xxhash.Sum64(data[:end])
	if cfg.verifyChecksum && sum != cfg.checksum {
		return nil, streamerrors.ErrChecksumFailed
	}
	return newIndex(&hdr, table, values, geo.fieldWidth, cfg.hash, sum), nil
}

// wordsFromBytes returns the little-endian words of b, aliasing b when the
// memory layout allows it.
func wordsFromBytes(b []byte) []uint64 {
	n := len(b) / wordSize
	if n == 0 {
		return []uint64{}
	}
	if nativeLittleEndian && uintptr(unsafe.Pointer(&b[0]))%wordSize == 0 {
		return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), n)
	}
	words := make([]uint64, n)
	for i := range words {
		words[i] = binary.LittleEndian.Uint64(b[i*wordSize:])
	}
	return words
}

// validateHeader checks the fields that can be checked before the table is read.
func validateHeader(hdr *header) error {
	if hdr.ChunkShift > maxChunkShift {
		return fmt.Errorf("%w: chunk shift %d exceeds %d", streamerrors.ErrCorruptedTable, hdr.ChunkShift, maxChunkShift)
	}
	if hdr.TableLength != hdr.numChunks()+1 {
		return fmt.Errorf("%w: length %d, chunk shift %d", streamerrors.ErrChunkTableLength, hdr.TableLength, hdr.ChunkShift)
	}
	return nil
}

// geometry holds values derived from a validated chunk table.
type geometry struct {
	fieldWidth uint
	words      uint64 // value array length required by the table
}

// validateTable checks the chunk table invariants and derives the value
// array geometry.
func validateTable(hdr *header, table []uint64) (geometry, error) {
	chunks := hdr.numChunks()
	final := hypergraph.EntryOffset(table[chunks])
	if final != hdr.Size {
		return geometry{}, fmt.Errorf("%w: final offset %d, size %d", streamerrors.ErrOffsetMismatch, final, hdr.Size)
	}
	if first := hypergraph.EntryOffset(table[0]); first != 0 {
		return geometry{}, fmt.Errorf("%w: first offset %d", streamerrors.ErrCorruptedTable, first)
	}

	var maxChunkKeys uint64
	for i := uint64(0); i < chunks; i++ {
		cur := hypergraph.EntryOffset(table[i])
		next := hypergraph.EntryOffset(table[i+1])
		if next < cur {
			return geometry{}, fmt.Errorf("%w: offset decreases at chunk %d", streamerrors.ErrCorruptedTable, i)
		}
		maxChunkKeys = max(maxChunkKeys, next-cur)
	}

	width := hypergraph.FieldWidth(maxChunkKeys)
	vertices := hypergraph.VertexOffset(hdr.Size, chunks)
	return geometry{
		fieldWidth: width,
		words:      intbits.WordsForBits(vertices * uint64(width)),
	}, nil
}

// wordReader reads little-endian words from a stream, mapping short reads to
// ErrTruncated.
type wordReader struct {
	r   io.Reader
	buf []byte
}

func (wr *wordReader) readFull(p []byte) error {
	if _, err := io.ReadFull(wr.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return streamerrors.ErrTruncated
		}
		return fmt.Errorf("read structure: %w", err)
	}
	return nil
}

func (wr *wordReader) word() (uint64, error) {
	var b [wordSize]byte
	if err := wr.readFull(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// words reads n words, growing the result one batch at a time.
func (wr *wordReader) words(n uint64) ([]uint64, error) {
	out := make([]uint64, 0, min(n, readBatchWords))
	for remaining := n; remaining > 0; {
		batch := min(remaining, readBatchWords)
		if cap(wr.buf) < int(batch*wordSize) {
			wr.buf = make([]byte, batch*wordSize)
		}
		buf := wr.buf[:batch*wordSize]
		if err := wr.readFull(buf); err != nil {
			return nil, err
		}
		for i := uint64(0); i < batch; i++ {
			out = append(out, binary.LittleEndian.Uint64(buf[i*wordSize:]))
		}
		remaining -= batch
	}
	return out, nil
}
