//go:build !linux && !darwin

package hypermph

import "os"

// fallocateFile sizes a new structure file to exactly size bytes.
// No blocks are reserved on this platform.
func fallocateFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
