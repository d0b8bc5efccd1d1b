package hypermph

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	streamerrors "github.com/tamirms/hypermph/errors"
	intbits "github.com/tamirms/hypermph/internal/bits"
	"github.com/tamirms/hypermph/internal/hypergraph"
)

// loaders runs a check against every way of parsing a byte stream.
var loaders = map[string]func(data []byte, opts ...LoadOption) (*Index, error){
	"Load": func(data []byte, opts ...LoadOption) (*Index, error) {
		return Load(bytes.NewReader(data), opts...)
	},
	"LoadBytes": LoadBytes,
}

// testStream builds a structure of n keys with several chunks and returns its
// stream, table length and array length.
func testStream(t *testing.T, n int) (data []byte, tableLength, arrayLength int) {
	t.Helper()
	idx := mustBuildUint64(t, generateUint64Keys(newTestRNG(t), n), WithChunkSize(256))
	data = encode(t, idx)
	tableLength = int(word(data, 3))
	arrayLength = int(word(data, headerWords+tableLength))
	return data, tableLength, arrayLength
}

func requireMalformed(t *testing.T, data []byte, want error) {
	t.Helper()
	for name, load := range loaders {
		idx, err := load(data)
		require.Nil(t, idx, name)
		require.ErrorIs(t, err, want, name)
		require.ErrorIs(t, err, streamerrors.ErrMalformedStructure, name)
	}
}

func TestLoadTruncated(t *testing.T) {
	data, tableLength, _ := testStream(t, 2000)
	cuts := []int{
		0,
		7,
		headerWords*wordSize - 1,
		headerWords * wordSize,
		(headerWords + tableLength) * wordSize,
		(headerWords+tableLength+1)*wordSize + 3,
		len(data) - 1,
	}
	for _, cut := range cuts {
		requireMalformed(t, data[:cut], streamerrors.ErrTruncated)
	}
}

func TestLoadOffsetMismatch(t *testing.T) {
	data, _, _ := testStream(t, 2000)
	putWord(data, 0, word(data, 0)+1)
	requireMalformed(t, data, streamerrors.ErrOffsetMismatch)
}

func TestLoadChunkTableLength(t *testing.T) {
	t.Run("Length", func(t *testing.T) {
		data, tableLength, _ := testStream(t, 2000)
		putWord(data, 3, uint64(tableLength+1))
		requireMalformed(t, data, streamerrors.ErrChunkTableLength)
	})
	t.Run("Shift", func(t *testing.T) {
		data, _, _ := testStream(t, 2000)
		putWord(data, 1, word(data, 1)+1)
		requireMalformed(t, data, streamerrors.ErrChunkTableLength)
	})
}

func TestLoadCorruptedTable(t *testing.T) {
	t.Run("ShiftTooLarge", func(t *testing.T) {
		data, _, _ := testStream(t, 2000)
		putWord(data, 1, 40)
		requireMalformed(t, data, streamerrors.ErrCorruptedTable)
	})
	t.Run("FirstOffset", func(t *testing.T) {
		data, _, _ := testStream(t, 2000)
		putWord(data, headerWords, hypergraph.PackEntry(1, 0))
		requireMalformed(t, data, streamerrors.ErrCorruptedTable)
	})
	t.Run("Decreasing", func(t *testing.T) {
		data, _, _ := testStream(t, 2000)
		size := word(data, 0)
		putWord(data, headerWords+1, hypergraph.PackEntry(size+5, 0))
		requireMalformed(t, data, streamerrors.ErrCorruptedTable)
	})
}

func TestLoadArrayLength(t *testing.T) {
	for _, delta := range []int{-1, 1} {
		data, tableLength, arrayLength := testStream(t, 2000)
		putWord(data, headerWords+tableLength, uint64(arrayLength+delta))
		requireMalformed(t, data, streamerrors.ErrArrayLength)
	}
}

func TestLoadChecksum(t *testing.T) {
	data, _, _ := testStream(t, 2000)
	idx, err := LoadBytes(data)
	require.NoError(t, err)
	sum := idx.Checksum()

	for name, load := range loaders {
		_, err := load(data, ExpectChecksum(sum))
		require.NoError(t, err, name)

		_, err = load(data, ExpectChecksum(sum+1))
		require.ErrorIs(t, err, streamerrors.ErrChecksumFailed, name)
		require.NotErrorIs(t, err, streamerrors.ErrMalformedStructure, name)
	}

	// A flipped value bit keeps the structure well-formed but changes the sum.
	last := len(data) - 1
	data[last] ^= 0x80
	_, err = LoadBytes(data, ExpectChecksum(sum))
	require.ErrorIs(t, err, streamerrors.ErrChecksumFailed)
}

func TestLoadInvalidHashAlgorithm(t *testing.T) {
	data, _, _ := testStream(t, 100)
	for name, load := range loaders {
		_, err := load(data, UsingHashAlgorithm(HashAlgorithm(9)))
		require.ErrorIs(t, err, streamerrors.ErrInvalidOption, name)
	}
}

func TestLoadStopsAtStructureEnd(t *testing.T) {
	data, _, _ := testStream(t, 500)
	trailer := []byte("trailing bytes")
	r := bytes.NewReader(append(bytes.Clone(data), trailer...))

	_, err := Load(r)
	require.NoError(t, err)
	require.Equal(t, len(trailer), r.Len())

	idx, err := LoadBytes(append(bytes.Clone(data), trailer...))
	require.NoError(t, err)
	require.Equal(t, uint64(len(data)), idx.Stats().SizeBytes)
}

type failingReader struct {
	r       io.Reader
	remain  int
	failure error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.remain == 0 {
		return 0, f.failure
	}
	p = p[:min(len(p), f.remain)]
	n, err := f.r.Read(p)
	f.remain -= n
	return n, err
}

func TestLoadReaderError(t *testing.T) {
	data, _, _ := testStream(t, 500)
	failure := errors.New("disk on fire")

	_, err := Load(&failingReader{r: bytes.NewReader(data), remain: 100, failure: failure})
	require.ErrorIs(t, err, failure)
	require.NotErrorIs(t, err, streamerrors.ErrMalformedStructure)
}

func TestLoadBytesUnaligned(t *testing.T) {
	keys := generateUint64Keys(newTestRNG(t), 3000)
	idx := mustBuildUint64(t, keys)
	data := encode(t, idx)

	shifted := make([]byte, len(data)+1)
	copy(shifted[1:], data)
	loaded, err := LoadBytes(shifted[1:])
	require.NoError(t, err)
	requireBijectionUint64(t, loaded, keys)
	for _, k := range keys {
		require.Equal(t, idx.LookupUint64(k), loaded.LookupUint64(k))
	}
}

func TestLoadEmptyStructure(t *testing.T) {
	// size 0, one chunk, table {0, 0}, one array word.
	words := intbits.WordsForBits(hypergraph.VertexOffset(0, 1))
	data := make([]byte, (headerWords+2+1+words)*wordSize)
	putWord(data, 3, 2)
	putWord(data, headerWords+2, words)

	for name, load := range loaders {
		idx, err := load(data)
		require.NoError(t, err, name)
		require.Zero(t, idx.NumKeys())
		require.Zero(t, idx.LookupUint64(7))
		require.Zero(t, idx.LookupBytes([]byte("x")))
	}
}

func TestOpenMatchesLoad(t *testing.T) {
	keys := generateUint64Keys(newTestRNG(t), 20_000)
	built := mustBuildUint64(t, keys)
	path := filepath.Join(t.TempDir(), "keys.mph")
	require.NoError(t, os.WriteFile(path, encode(t, built), 0o644))

	opened, err := Open(path, ExpectChecksum(built.Checksum()))
	require.NoError(t, err)
	defer opened.Close()

	requireBijectionUint64(t, opened, keys)
	for _, k := range keys {
		require.Equal(t, built.LookupUint64(k), opened.LookupUint64(k))
	}
	require.Equal(t, built.Stats(), opened.Stats())

	stats, err := GetStats(path)
	require.NoError(t, err)
	require.Equal(t, built.Stats(), stats)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.mph"))
	require.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.mph")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = Open(empty)
	require.ErrorIs(t, err, streamerrors.ErrTruncated)

	data, _, _ := testStream(t, 500)
	corrupt := filepath.Join(dir, "corrupt.mph")
	putWord(data, 0, word(data, 0)+1)
	require.NoError(t, os.WriteFile(corrupt, data, 0o644))
	_, err = Open(corrupt)
	require.ErrorIs(t, err, streamerrors.ErrOffsetMismatch)
}

func TestCloseIdempotent(t *testing.T) {
	built := mustBuildUint64(t, generateUint64Keys(newTestRNG(t), 100))
	path := filepath.Join(t.TempDir(), "keys.mph")
	require.NoError(t, built.WriteFile(path))

	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())

	require.NoError(t, built.Close())
	require.NoError(t, built.Close())
}
