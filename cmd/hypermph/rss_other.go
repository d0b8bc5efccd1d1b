//go:build !unix

package main

// getMaxRSS is not available on this platform.
func getMaxRSS() uint64 {
	return 0
}
