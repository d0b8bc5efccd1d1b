package hypermph

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	streamerrors "github.com/tamirms/hypermph/errors"
)

// writeBufferSize is the buffer used by WriteTo.
const writeBufferSize = 64 << 10

// header returns the fixed fields of the serialized form.
func (idx *Index) header() header {
	return header{
		Size:        idx.size,
		ChunkShift:  uint64(idx.chunkShift),
		GlobalSeed:  idx.globalSeed,
		TableLength: uint64(len(idx.table)),
	}
}

// encodedSize returns the length in bytes of the serialized structure.
func (idx *Index) encodedSize() uint64 {
	return encodedSize(uint64(len(idx.table)), uint64(len(idx.values)))
}

// WriteTo serializes the structure to w. It implements io.WriterTo.
func (idx *Index) WriteTo(w io.Writer) (int64, error) {
	if idx.closed.Load() {
		return 0, streamerrors.ErrIndexClosed
	}

	cw := &countingWriter{w: w}
	bw := bufio.NewWriterSize(cw, writeBufferSize)
	buf := make([]byte, 0, headerWords*wordSize)
	put := func(words ...uint64) error {
		buf = buf[:0]
		for _, word := range words {
			buf = binary.LittleEndian.AppendUint64(buf, word)
		}
		_, err := bw.Write(buf)
		return err
	}

	hdr := idx.header()
	if err := put(hdr.Size, hdr.ChunkShift, hdr.GlobalSeed, hdr.TableLength); err != nil {
		return cw.n, err
	}
	for _, entry := range idx.table {
		if err := put(entry); err != nil {
			return cw.n, err
		}
	}
	if err := put(uint64(len(idx.values))); err != nil {
		return cw.n, err
	}
	for _, word := range idx.values {
		if err := put(word); err != nil {
			return cw.n, err
		}
	}
	err := bw.Flush()
	return cw.n, err
}

// countingWriter tracks the bytes accepted by the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// encodeTo serializes the structure into buf, which must hold at least
// idx.encodedSize() bytes.
func (idx *Index) encodeTo(buf []byte) {
	hdr := idx.header()
	hdr.encodeTo(buf)
	off := headerWords * wordSize
	for _, entry := range idx.table {
		binary.LittleEndian.PutUint64(buf[off:], entry)
		off += wordSize
	}
	binary.LittleEndian.PutUint64(buf[off:], uint64(len(idx.values)))
	off += wordSize
	for _, word := range idx.values {
		binary.LittleEndian.PutUint64(buf[off:], word)
		off += wordSize
	}
}

// WriteFile writes the structure to path using an mmap-based write.
// The file is pre-allocated to its exact size. On failure the partial file
// is removed.
func (idx *Index) WriteFile(path string) (err error) {
	if idx.closed.Load() {
		return streamerrors.ErrIndexClosed
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create structure file: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(path))
		}
	}()

	size := idx.encodedSize()
	if err := fallocateFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("allocate disk space: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap structure file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	idx.encodeTo(mm)

	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close())
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	return file.Close()
}
