//go:build linux

package hypermph

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile sizes a new structure file to exactly size bytes, reserving
// its blocks first so that writes through the mapping cannot SIGBUS on a
// full disk. Filesystems that refuse fallocate(2) only get the size change.
func fallocateFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	_ = unix.Fallocate(fd, 0, 0, size)
	return unix.Ftruncate(fd, size)
}
