package keyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	streamerrors "github.com/tamirms/hypermph/errors"
)

func TestUint64RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.bin")
	keys := []uint64{0, 1, 42, 1 << 63, ^uint64(0), 0x0123456789abcdef}

	require.NoError(t, WriteUint64s(path, keys))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, len(keys)*8, info.Size())

	got, err := ReadUint64s(path)
	require.NoError(t, err)
	require.Equal(t, keys, got)
}

func TestUint64LittleEndian(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}, 0o644))

	got, err := ReadUint64s(path)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 256}, got)
}

func TestUint64EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, WriteUint64s(path, nil))

	got, err := ReadUint64s(path)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUint64BadSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 12), 0o644))

	_, err := ReadUint64s(path)
	require.ErrorIs(t, err, streamerrors.ErrKeyFileSize)
}

func TestReadMissingFile(t *testing.T) {
	_, err := ReadUint64s(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadLines(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha\r\nbeta\n\n\ngamma"), 0o644))

	got, err := ReadLines(path)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}, got)
}

func TestLinesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	keys := [][]byte{[]byte("a"), []byte("hello world"), []byte("\x00\x01binary")}

	require.NoError(t, WriteLines(path, keys))
	got, err := ReadLines(path)
	require.NoError(t, err)
	require.Equal(t, keys, got)
}
