package hypergraph

import (
	"math/bits"

	intbits "github.com/tamirms/hypermph/internal/bits"
)

// WyHash v4 primes, used as independent mixing constants.
const (
	wyp0 = 0xa0761d6478bd642f
	wyp1 = 0xe7037ed1a0b428db
	wyp2 = 0x8ebc6af09c88c6e3
	wyp3 = 0x589965cc75374cc3

	// seedMixer spreads the 8-bit chunk seed over all 64 bits.
	seedMixer = 0x9E3779B97F4A7C15
)

// wymix performs a 128-bit multiply and XOR fold.
// This is the core mixing primitive from WyHash v4.
func wymix(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return hi ^ lo
}

// Edge derives the three vertices of a key's edge inside a chunk of
// vertices vertices. The digest is re-mixed with the chunk seed, so the
// top digest bits that selected the chunk do not bias vertex choice.
//
// The vertex space is split into three equal segments and vertex j always
// falls in segment j, so the three vertices are distinct.
// Precondition: vertices >= 3.
func Edge(hi, lo, seed, vertices uint64) [3]uint64 {
	segment := vertices / 3
	a := lo ^ (seed+1)*seedMixer

	h0 := wymix(a^wyp0, hi^wyp1)
	h1 := wymix(a^wyp2, hi^wyp3)
	h2 := wymix(a^wyp3, hi^wyp0)

	return [3]uint64{
		intbits.FastRange64(h0, segment),
		segment + intbits.FastRange64(h1, segment),
		2*segment + intbits.FastRange64(h2, segment),
	}
}
