// Package keyfile reads and writes the key files consumed by the hypermph
// command.
//
// Two formats exist. A uint64 key file is a raw concatenation of
// little-endian uint64 values with no header. A byte key file holds one key
// per line; a trailing carriage return is stripped and empty lines are
// skipped.
package keyfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	streamerrors "github.com/tamirms/hypermph/errors"
)

// mapFile maps path read-only and passes the contents to fn. Empty files
// are passed as a nil slice without mapping.
func mapFile(path string, fn func(data []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open key file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat key file: %w", err)
	}
	if stat.Size() == 0 {
		return fn(nil)
	}

	fadviseSequential(int(file.Fd()), stat.Size())
	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mmap key file: %w", err)
	}
	return errors.Join(fn(mm), mm.Unmap())
}

// ReadUint64s reads a uint64 key file.
func ReadUint64s(path string) ([]uint64, error) {
	var keys []uint64
	err := mapFile(path, func(data []byte) error {
		if len(data)%8 != 0 {
			return fmt.Errorf("%w: %s has %d bytes", streamerrors.ErrKeyFileSize, path, len(data))
		}
		keys = make([]uint64, len(data)/8)
		for i := range keys {
			keys[i] = binary.LittleEndian.Uint64(data[i*8:])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// ReadLines reads a byte key file. The returned keys do not alias the file.
func ReadLines(path string) ([][]byte, error) {
	var keys [][]byte
	err := mapFile(path, func(data []byte) error {
		keys = splitLines(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func splitLines(data []byte) [][]byte {
	keys := make([][]byte, 0, bytes.Count(data, []byte{'\n'})+1)
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		keys = append(keys, bytes.Clone(line))
	}
	return keys
}

// WriteUint64s writes keys as a uint64 key file.
func WriteUint64s(path string, keys []uint64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}

	w := bufio.NewWriter(file)
	var buf [8]byte
	for _, key := range keys {
		binary.LittleEndian.PutUint64(buf[:], key)
		if _, err := w.Write(buf[:]); err != nil {
			return errors.Join(fmt.Errorf("write key file: %w", err), file.Close())
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Join(fmt.Errorf("write key file: %w", err), file.Close())
	}
	return file.Close()
}

// WriteLines writes keys as a byte key file. Keys must not contain newlines.
func WriteLines(path string, keys [][]byte) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, key := range keys {
		if _, err := w.Write(key); err != nil {
			return errors.Join(fmt.Errorf("write key file: %w", err), file.Close())
		}
		if err := w.WriteByte('\n'); err != nil {
			return errors.Join(fmt.Errorf("write key file: %w", err), file.Close())
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Join(fmt.Errorf("write key file: %w", err), file.Close())
	}
	return file.Close()
}
