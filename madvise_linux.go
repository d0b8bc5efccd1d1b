//go:build linux

package hypermph

import "golang.org/x/sys/unix"

// adviseRandom tells the kernel that lookups touch the mapping at random, so
// readahead would only waste page cache.
// Best-effort: errors are silently ignored.
func adviseRandom(data []byte) {
	if len(data) == 0 {
		return
	}
	_ = unix.Madvise(data, unix.MADV_RANDOM)
}
