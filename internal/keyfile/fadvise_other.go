//go:build !linux

package keyfile

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(fd int, length int64) {}
