//go:build darwin

package hypermph

import (
	"os"

	"golang.org/x/sys/unix"
)

// fallocateFile sizes a new structure file to exactly size bytes.
// F_PREALLOCATE reserves the blocks; its failure only loses the reservation.
func fallocateFile(file *os.File, size int64) error {
	store := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	_ = unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &store)
	return unix.Ftruncate(int(file.Fd()), size)
}
