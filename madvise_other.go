//go:build !linux

package hypermph

// adviseRandom is a no-op on non-Linux platforms.
func adviseRandom(data []byte) {
	// No-op
}
