// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"math/big"
)

// BigInt is an arbitrary precision, non-negative integer stored as its raw
// big-endian bytes. It is the representation of INTEGER content used by
// [Value.Integer] and is typically used for certificate serial numbers.
//
// A BigInt preserves the exact bytes it was created from. Two values are equal
// if and only if their bytes are equal, so 00 05 and 05 are different values
// although they denote the same number. BigInt values are comparable and can be
// used as map keys.
//
// The zero value is a valid BigInt. Its [BigInt.Bytes] are a single zero byte.
type BigInt struct {
	b string
}

// BigIntFromBytes returns a BigInt holding a copy of b. The bytes are not
// interpreted, in particular a set high bit does not make the value negative.
func BigIntFromBytes(b []byte) BigInt {
	return BigInt{string(b)}
}

// BigIntFromUint32 returns the minimal 1 to 4 byte representation of v. Zero is
// represented by a single zero byte.
func BigIntFromUint32(v uint32) BigInt {
	var b []byte
	switch {
	case v < 1<<8:
		b = []byte{byte(v)}
	case v < 1<<16:
		b = []byte{byte(v >> 8), byte(v)}
	case v < 1<<24:
		b = []byte{byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		b = []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
	return BigInt{string(b)}
}

// BigIntFromBig converts x into a BigInt. Negative values cannot be represented
// and fail with [NegativeValue]. The result uses the two's complement encoding
// of x without the leading zero byte that disambiguates the sign. Zero is
// represented by a single zero byte.
func BigIntFromBig(x *big.Int) (BigInt, error) {
	if x.Sign() < 0 {
		return BigInt{}, &Error{Kind: NegativeValue, Err: errors.New("BigInt cannot hold " + x.String())}
	}
	if x.Sign() == 0 {
		return BigInt{"\x00"}, nil
	}
	return BigInt{string(x.Bytes())}, nil
}

// BigIntFromTwosComplement interprets b as the two's complement encoding of a
// non-negative number. If the sign bit of b is set the number is negative and
// BigIntFromTwosComplement fails with [NegativeValue]. A single leading zero
// byte is removed if more bytes follow.
func BigIntFromTwosComplement(b []byte) (BigInt, error) {
	if len(b) > 0 && b[0]&0x80 != 0 {
		return BigInt{}, &Error{Kind: NegativeValue, Err: errors.New("sign bit set")}
	}
	if len(b) > 1 && b[0] == 0 {
		b = b[1:]
	}
	return BigInt{string(b)}, nil
}

// Uint32 returns i as a uint32. If more than 4 bytes are stored Uint32 fails
// with [Overflow], even if the leading bytes are zero.
func (i BigInt) Uint32() (uint32, error) {
	if len(i.b) > 4 {
		return 0, &Error{Kind: Overflow, Tag: TagInteger, Err: errors.New("more than 4 bytes")}
	}
	var v uint32
	for j := 0; j < len(i.b); j++ {
		v = v<<8 | uint32(i.b[j])
	}
	return v, nil
}

// Bytes returns a copy of the stored bytes. If no bytes are stored Bytes returns
// a single zero byte.
func (i BigInt) Bytes() []byte {
	if len(i.b) == 0 {
		return []byte{0}
	}
	return []byte(i.b)
}

// Len returns the number of stored bytes.
func (i BigInt) Len() int {
	return len(i.b)
}

// Big returns the numeric value of i.
func (i BigInt) Big() *big.Int {
	return new(big.Int).SetBytes([]byte(i.b))
}

// Equal reports whether i and other hold the same bytes.
func (i BigInt) Equal(other BigInt) bool {
	return i.b == other.b
}

// String returns the decimal representation of i.
func (i BigInt) String() string {
	return i.Big().String()
}
