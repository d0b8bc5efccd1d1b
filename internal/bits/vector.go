package bits

import (
	"fmt"

	streamerrors "github.com/tamirms/hypermph/errors"
)

// Vector is a packed bit array stored as little-endian 64-bit words:
// bit p lives in bit p%64 of word p/64. Fields of up to 64 bits may start
// at any bit position and span one word boundary.
//
// A Vector never grows. Field is safe for concurrent use; SetField is not.
type Vector []uint64

// Field returns the width-bit field starting at bit pos.
// Panics with an error wrapping ErrOutOfBounds if the field extends past
// the last word.
func (v Vector) Field(pos uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	v.checkBounds(pos, width)

	word := pos >> 6
	shift := uint(pos & 63)
	mask := ^uint64(0) >> (64 - width)

	val := v[word] >> shift
	if shift+width > 64 {
		val |= v[word+1] << (64 - shift)
	}
	return val & mask
}

// SetField stores the low width bits of value at bit pos, replacing the
// previous contents of the field.
func (v Vector) SetField(pos uint64, width uint, value uint64) {
	if width == 0 {
		return
	}
	v.checkBounds(pos, width)

	word := pos >> 6
	shift := uint(pos & 63)
	mask := ^uint64(0) >> (64 - width)
	value &= mask

	v[word] = v[word]&^(mask<<shift) | value<<shift
	if shift+width > 64 {
		hiMask := mask >> (64 - shift)
		v[word+1] = v[word+1]&^hiMask | value>>(64-shift)
	}
}

func (v Vector) checkBounds(pos uint64, width uint) {
	last := pos + uint64(width) - 1
	if last < pos || last>>6 >= uint64(len(v)) {
		panic(fmt.Errorf("%w: bits [%d, %d) in %d words", streamerrors.ErrOutOfBounds, pos, pos+uint64(width), len(v)))
	}
}
