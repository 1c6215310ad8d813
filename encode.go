// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"io"
	"math/big"
	"time"

	"codello.dev/der/charset"
	"codello.dev/der/internal/vlq"
	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// Append appends the DER encoding of v to dst: the tag byte, the length in its
// minimal form and the content bytes. Append fails with [UnsupportedTag] if the
// tag of v is in the high tag number form.
func (v Value) Append(dst []byte) ([]byte, error) {
	if v.tag&tagNumberMask == highTagNumber {
		return dst, &Error{Kind: UnsupportedTag, Tag: v.tag, Err: errors.New("high tag number form")}
	}
	b := cryptobyte.NewBuilder(dst)
	b.AddASN1(cbasn1.Tag(v.tag), func(c *cryptobyte.Builder) {
		c.AddBytes(v.data)
	})
	ret, err := b.Bytes()
	if err != nil {
		return dst, &Error{Kind: InvalidLength, Tag: v.tag, Err: err}
	}
	return ret, nil
}

// Encode returns the DER encoding of v.
func (v Value) Encode() ([]byte, error) {
	return v.Append(make([]byte, 0, v.EncodedLen()))
}

// WriteTo writes the DER encoding of v to w.
func (v Value) WriteTo(w io.Writer) (int64, error) {
	b, err := v.Encode()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// EncodedLen returns the number of bytes of the DER encoding of v.
func (v Value) EncodedLen() int {
	return 1 + lengthLen(len(v.data)) + len(v.data)
}

// lengthLen returns the number of bytes of the minimal length encoding of n.
func lengthLen(n int) int {
	l := 1
	if n >= 0x80 {
		for ; n > 0; n >>= 8 {
			l++
		}
	}
	return l
}

// New returns a value with the given tag and a copy of content.
func New(tag Tag, content []byte) Value {
	return Value{tag: tag, data: bytes.Clone(content)}
}

//region [UNIVERSAL 1] BOOLEAN

// NewBoolean returns a BOOLEAN value. True is encoded as 0xFF.
func NewBoolean(b bool) Value {
	if b {
		return Value{tag: TagBoolean, data: []byte{0xff}}
	}
	return Value{tag: TagBoolean, data: []byte{0x00}}
}

//endregion

//region [UNIVERSAL 2] INTEGER

// NewInteger returns an INTEGER value whose content is i.Bytes(). No sign byte
// is added: a BigInt with the high bit set produces content that a two's
// complement decoder reads as a negative number. Use [NewSignedInteger] for a
// conforming encoding of arbitrary numbers.
func NewInteger(i BigInt) Value {
	return Value{tag: TagInteger, data: i.Bytes()}
}

// NewSignedInteger returns an INTEGER value holding the minimal two's
// complement encoding of x.
func NewSignedInteger(x *big.Int) Value {
	var data []byte
	switch x.Sign() {
	case 0:
		data = []byte{0x00}
	case 1:
		data = x.Bytes()
		if data[0]&0x80 != 0 {
			data = append([]byte{0x00}, data...)
		}
	default:
		// two's complement of |x| is the bitwise inverse of |x|-1
		nMinus1 := new(big.Int).Neg(x)
		nMinus1.Sub(nMinus1, big.NewInt(1))
		data = nMinus1.Bytes()
		for i := range data {
			data[i] ^= 0xff
		}
		if len(data) == 0 || data[0]&0x80 == 0 {
			data = append([]byte{0xff}, data...)
		}
	}
	return Value{tag: TagInteger, data: data}
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// NewBitString returns a BIT STRING value. The padding bits of the last byte
// are encoded as zero. NewBitString fails with [InvalidContent] if bs is not
// valid.
func NewBitString(bs BitString) (Value, error) {
	if !bs.IsValid() {
		return Value{}, &Error{Kind: InvalidContent, Tag: TagBitString, Err: errors.New("BitLength does not match Bytes")}
	}
	unused := bs.unusedBits()
	data := make([]byte, 1+len(bs.Bytes))
	data[0] = unused
	copy(data[1:], bs.Bytes)
	if len(bs.Bytes) > 0 {
		data[len(data)-1] &= 0xff << unused
	}
	return Value{tag: TagBitString, data: data}, nil
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// NewOctetString returns an OCTET STRING value holding a copy of b.
func NewOctetString(b []byte) Value {
	return Value{tag: TagOctetString, data: append([]byte{}, b...)}
}

//endregion

//region [UNIVERSAL 5] NULL

// NewNull returns a NULL value.
func NewNull() Value {
	return Value{tag: TagNull, data: []byte{}}
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// NewObjectIdentifier returns an OBJECT IDENTIFIER value. It fails with
// [InvalidContent] if oid cannot be encoded.
func NewObjectIdentifier(oid ObjectIdentifier) (Value, error) {
	if !oid.IsValid() {
		return Value{}, &Error{Kind: InvalidContent, Tag: TagOID, Err: errors.New("invalid object identifier " + oid.String())}
	}
	data := vlq.Append(nil, oid[0]*40+oid[1])
	for _, arc := range oid[2:] {
		data = vlq.Append(data, arc)
	}
	return Value{tag: TagOID, data: data}, nil
}

//endregion

//region [UNIVERSAL 10] ENUMERATED

// NewEnumerated returns an ENUMERATED value holding the minimal two's
// complement encoding of e.
func NewEnumerated(e int32) Value {
	n := 1
	for i := e; i > 127 || i < -128; i >>= 8 {
		n++
	}
	data := make([]byte, n)
	for j := range n {
		data[j] = byte(e >> (8 * (n - 1 - j)))
	}
	return Value{tag: TagEnumerated, data: data}
}

//endregion

//region Character Strings

// NewString encodes s as a string value with the given tag using the codec
// registered in reg. If reg is nil the default registry is used. NewString
// fails with [UnknownCharset] if no codec is registered for tag and with
// [UnmappableCharacter] if s cannot be represented.
func NewString(reg *charset.Registry, tag Tag, s string) (Value, error) {
	if reg == nil {
		reg = defaultCharsets()
	}
	data, err := reg.Encode(byte(tag), s)
	if err != nil {
		return Value{}, charsetError(err, tag, nil, false)
	}
	if data == nil {
		data = []byte{}
	}
	return Value{tag: tag, data: data, charsets: reg}, nil
}

//endregion

//region [UNIVERSAL 23] UTCTime and [UNIVERSAL 24] GeneralizedTime

// NewUTCTime returns a UTCTime value for t in UTC. Fractional seconds are
// discarded. It fails with [InvalidContent] if the year of t is not between
// 1950 and 2049.
func NewUTCTime(t time.Time) (Value, error) {
	ut := UTCTime(t)
	if !ut.IsValid() {
		return Value{}, &Error{Kind: InvalidContent, Tag: TagUTCTime, Err: errors.New("cannot represent time as UTCTime")}
	}
	return Value{tag: TagUTCTime, data: []byte(ut.String())}, nil
}

// NewGeneralizedTime returns a GeneralizedTime value for t in UTC. It fails
// with [InvalidContent] if the year of t is not between 1 and 9999.
func NewGeneralizedTime(t time.Time) (Value, error) {
	gt := GeneralizedTime(t)
	if !gt.IsValid() {
		return Value{}, &Error{Kind: InvalidContent, Tag: TagGeneralizedTime, Err: errors.New("cannot represent time as GeneralizedTime")}
	}
	return Value{tag: TagGeneralizedTime, data: []byte(gt.String())}, nil
}

//endregion

//region [UNIVERSAL 16] SEQUENCE and [UNIVERSAL 17] SET

// NewConstructed returns a value with the given tag whose content is the
// concatenated encodings of elems. The constructed bit is set on tag.
func NewConstructed(tag Tag, elems ...Value) (Value, error) {
	var data []byte
	for _, e := range elems {
		var err error
		if data, err = e.Append(data); err != nil {
			return Value{}, err
		}
	}
	if data == nil {
		data = []byte{}
	}
	return Value{tag: tag.Constructed(), data: data}, nil
}

// NewSequence returns a SEQUENCE of elems in the given order.
func NewSequence(elems ...Value) (Value, error) {
	return NewConstructed(TagSequence, elems...)
}

// NewSetOf returns a SET OF elems. The elements are sorted by their encodings
// using [LexOrder].
func NewSetOf(elems ...Value) (Value, error) {
	return newSet(SortSetOf, elems)
}

// NewSet returns a SET of elems. The elements are sorted by their tags using
// [TagOrder].
func NewSet(elems ...Value) (Value, error) {
	return newSet(SortSet, elems)
}

func newSet(sortFunc func([][]byte), elems []Value) (Value, error) {
	encs := make([][]byte, len(elems))
	size := 0
	for i, e := range elems {
		var err error
		if encs[i], err = e.Encode(); err != nil {
			return Value{}, err
		}
		size += len(encs[i])
	}
	sortFunc(encs)
	data := make([]byte, 0, size)
	for _, enc := range encs {
		data = append(data, enc...)
	}
	return Value{tag: TagSet, data: data}, nil
}

// NewExplicit wraps inner in an explicit tag. The constructed bit is set on
// tag.
func NewExplicit(tag Tag, inner Value) (Value, error) {
	return NewConstructed(tag, inner)
}

//endregion
