// Package vlq implements [Variable-length quantity] encoding as used for the
// arcs of an OBJECT IDENTIFIER. A VLQ is a base-128 representation of an
// unsigned integer with the eighth bit marking continuation of bytes.
//
// [Variable-length quantity]: https://en.wikipedia.org/wiki/Variable-length_quantity
package vlq

import (
	"errors"
	"math/bits"
	"unsafe"
)

var (
	ErrTruncated  = errors.New("vlq is truncated")
	ErrNotMinimal = errors.New("vlq is not minimally encoded")
	ErrOverflow   = errors.New("vlq too large for target type")
)

// Unsigned is the set of types a VLQ can be decoded into.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Parse decodes a minimally encoded VLQ from the start of b. It returns the
// value and the number of bytes consumed. The maximum allowed value is limited
// by the size of T.
func Parse[T Unsigned](b []byte) (ret T, n int, err error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	if b[0] == 0x80 {
		return 0, 0, ErrNotMinimal
	}
	numBits := 0
	for n < len(b) {
		c := b[n]
		n++
		if numBits == 0 {
			numBits = bits.Len8(c & 0x7f)
		} else {
			numBits += 7
		}
		if numBits > int(unsafe.Sizeof(ret)*8) {
			return 0, 0, ErrOverflow
		}
		ret = ret<<7 | T(c&0x7f)
		if c&0x80 == 0 {
			return ret, n, nil
		}
	}
	return 0, 0, ErrTruncated
}

// Len returns the number of bytes needed to encode v as a VLQ.
func Len[T Unsigned](v T) int {
	if v == 0 {
		return 1
	}
	return (bits.Len64(uint64(v)) + 6) / 7
}

// Append appends the VLQ encoding of v to dst and returns the extended slice.
func Append[T Unsigned](dst []byte, v T) []byte {
	for j := Len(v) - 1; j >= 0; j-- {
		b := byte(v>>(j*7)) & 0x7f
		if j > 0 {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}
