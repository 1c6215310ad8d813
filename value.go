// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"math/big"
	"slices"
	"strconv"
	"sync"

	"codello.dev/der/charset"
	"codello.dev/der/internal/vlq"
)

// defaultCharsets is used by values that were created without a registry. It
// is never handed out so it cannot be modified.
var defaultCharsets = sync.OnceValue(charset.Default)

// A Value is a single DER encoded value: an identifier byte and the content
// bytes. The content of a decoded Value is a view into the input it was decoded
// from. The input must not be modified while the Value is in use.
//
// The typed accessors validate the tag of the value before they decode the
// content. They return an [*Error] with kind [TagMismatch] if the tag is not
// the expected one. Use [Value.SetTag] to reinterpret an implicitly tagged
// value before calling an accessor.
//
// The zero Value has tag 0 and no content. It is not a valid encoding.
type Value struct {
	tag      Tag
	data     []byte
	charsets *charset.Registry
}

// Parse decodes the single DER value in b. It fails with [TrailingData] if b
// contains more than one value. The returned value shares memory with b.
// String accessors of the returned value use the default charset registry.
func Parse(b []byte) (Value, error) {
	return ParseWith(b, nil)
}

// ParseWith works like [Parse] but the returned value and its children decode
// strings using reg. If reg is nil the default registry is used.
func ParseWith(b []byte, reg *charset.Registry) (Value, error) {
	s := NewStream(b)
	s.charsets = reg
	v, err := s.Next()
	if err != nil {
		return Value{}, err
	}
	if s.More() {
		return Value{}, &Error{Kind: TrailingData, Tag: v.tag, Offset: s.Offset(),
			Err: errors.New(strconv.Itoa(s.Len()) + " bytes after value")}
	}
	return v, nil
}

// Tag returns the identifier byte of v.
func (v Value) Tag() Tag {
	return v.tag
}

// SetTag replaces the tag of v. This is used to decode implicitly tagged
// values: after replacing a context-specific tag with the universal tag of the
// underlying type the typed accessors can be used.
func (v *Value) SetTag(t Tag) {
	v.tag = t
}

// Data returns the content bytes of v. The returned slice shares memory with v
// and must not be modified.
func (v Value) Data() []byte {
	return v.data
}

// Len returns the number of content bytes of v.
func (v Value) Len() int {
	return len(v.data)
}

// Equal reports whether v and other have the same tag and content. The charset
// registry is not compared.
func (v Value) Equal(other Value) bool {
	return v.tag == other.tag && bytes.Equal(v.data, other.data)
}

// String returns a short description of v for debugging.
func (v Value) String() string {
	return v.tag.TypeName() + " (" + strconv.Itoa(len(v.data)) + " bytes)"
}

func (v Value) registry() *charset.Registry {
	if v.charsets != nil {
		return v.charsets
	}
	return defaultCharsets()
}

// expect validates that v has tag t.
func (v Value) expect(t Tag) error {
	if v.tag != t {
		return &Error{Kind: TagMismatch, Tag: v.tag, Expected: t}
	}
	return nil
}

//region [UNIVERSAL 1] BOOLEAN

// Boolean decodes v as a BOOLEAN. The content must be exactly one byte. Any
// non-zero byte is true.
func (v Value) Boolean() (bool, error) {
	if err := v.expect(TagBoolean); err != nil {
		return false, err
	}
	if len(v.data) != 1 {
		return false, &Error{Kind: InvalidLength, Tag: v.tag, Err: errors.New("BOOLEAN must have 1 content byte")}
	}
	return v.data[0] != 0, nil
}

//endregion

//region [UNIVERSAL 2] INTEGER

// Integer decodes v as an INTEGER. The content bytes are returned as a [BigInt]
// without interpreting them as two's complement: the content 80 yields 128, not
// -128. The bytes are preserved exactly, including leading zeros. Use
// [Value.SignedInteger] for the signed interpretation.
func (v Value) Integer() (BigInt, error) {
	if err := v.expect(TagInteger); err != nil {
		return BigInt{}, err
	}
	if len(v.data) == 0 {
		return BigInt{}, &Error{Kind: InvalidLength, Tag: v.tag, Err: errors.New("empty INTEGER")}
	}
	return BigIntFromBytes(v.data), nil
}

// UnsignedInteger decodes v as an INTEGER like [Value.Integer] but removes the
// leading zero byte that DER requires before a positive number with the high
// bit set. The result is the magnitude as it would be written by an encoder
// that does not add the sign byte.
func (v Value) UnsignedInteger() (BigInt, error) {
	i, err := v.Integer()
	if err != nil {
		return BigInt{}, err
	}
	if len(v.data) > 1 && v.data[0] == 0 && v.data[1]&0x80 != 0 {
		return BigIntFromBytes(v.data[1:]), nil
	}
	return i, nil
}

// SignedInteger decodes v as an INTEGER using the two's complement
// interpretation of ASN.1. The content must be minimally encoded.
func (v Value) SignedInteger() (*big.Int, error) {
	if err := v.expect(TagInteger); err != nil {
		return nil, err
	}
	if len(v.data) == 0 {
		return nil, &Error{Kind: InvalidLength, Tag: v.tag, Err: errors.New("empty INTEGER")}
	}
	if len(v.data) > 1 && (v.data[0] == 0x00 && v.data[1]&0x80 == 0 || v.data[0] == 0xff && v.data[1]&0x80 == 0x80) {
		return nil, &Error{Kind: InvalidContent, Tag: v.tag, Err: errors.New("integer not minimally encoded")}
	}
	ret := new(big.Int).SetBytes(v.data)
	if v.data[0]&0x80 == 0x80 {
		// negative: subtract 2^(8*len)
		ret.Sub(ret, new(big.Int).Lsh(big.NewInt(1), uint(len(v.data))*8))
	}
	return ret, nil
}

//endregion

//region [UNIVERSAL 3] BIT STRING

// UnalignedBitString decodes v as a BIT STRING of any length. The first content
// byte is the number of unused bits in the last byte. The returned bytes are a
// copy with the unused bits cleared.
func (v Value) UnalignedBitString() (BitString, error) {
	if err := v.expect(TagBitString); err != nil {
		return BitString{}, err
	}
	if len(v.data) == 0 {
		return BitString{}, &Error{Kind: InvalidLength, Tag: v.tag, Err: errors.New("empty BIT STRING")}
	}
	unused := v.data[0]
	if unused > 7 || (len(v.data) == 1 && unused > 0) {
		return BitString{}, &Error{Kind: InvalidContent, Tag: v.tag, Err: errors.New("invalid padding bits in BIT STRING")}
	}
	b := slices.Clone(v.data[1:])
	if len(b) > 0 {
		b[len(b)-1] &= 0xff << unused
	}
	return BitString{Bytes: b, BitLength: len(b)*8 - int(unused)}, nil
}

// BitString decodes v as a BIT STRING whose length is a multiple of 8 and
// returns a copy of its bytes. A BIT STRING with unused bits fails with
// [InvalidContent].
func (v Value) BitString() ([]byte, error) {
	bs, err := v.UnalignedBitString()
	if err != nil {
		return nil, err
	}
	if v.data[0] != 0 {
		return nil, &Error{Kind: InvalidContent, Tag: v.tag, Err: errors.New("BIT STRING is not byte aligned")}
	}
	return bs.Bytes, nil
}

//endregion

//region [UNIVERSAL 4] OCTET STRING

// OctetString decodes v as an OCTET STRING and returns a copy of the content.
func (v Value) OctetString() ([]byte, error) {
	if err := v.expect(TagOctetString); err != nil {
		return nil, err
	}
	return append([]byte{}, v.data...), nil
}

//endregion

//region [UNIVERSAL 5] NULL

// Null validates that v is a NULL value with empty content.
func (v Value) Null() error {
	if err := v.expect(TagNull); err != nil {
		return err
	}
	if len(v.data) != 0 {
		return &Error{Kind: InvalidLength, Tag: v.tag, Err: errors.New("NULL with content")}
	}
	return nil
}

//endregion

//region [UNIVERSAL 6] OBJECT IDENTIFIER

// ObjectIdentifier decodes v as an OBJECT IDENTIFIER. Each arc must be
// minimally encoded and fit into 64 bits.
func (v Value) ObjectIdentifier() (ObjectIdentifier, error) {
	if err := v.expect(TagOID); err != nil {
		return nil, err
	}
	if len(v.data) == 0 {
		return nil, &Error{Kind: InvalidContent, Tag: v.tag, Err: errors.New("empty OBJECT IDENTIFIER")}
	}
	oid := make(ObjectIdentifier, 0, len(v.data)+1)
	for i := 0; i < len(v.data); {
		arc, n, err := vlq.Parse[uint64](v.data[i:])
		if err != nil {
			return nil, &Error{Kind: InvalidContent, Tag: v.tag, Offset: i, Err: err}
		}
		if i == 0 {
			// the first subidentifier encodes the first two arcs
			if arc < 80 {
				oid = append(oid, arc/40, arc%40)
			} else {
				oid = append(oid, 2, arc-80)
			}
		} else {
			oid = append(oid, arc)
		}
		i += n
	}
	return oid, nil
}

//endregion

//region [UNIVERSAL 10] ENUMERATED

// Enumerated decodes v as an ENUMERATED. The content must be 1 to 4 bytes of a
// two's complement number.
func (v Value) Enumerated() (int32, error) {
	if err := v.expect(TagEnumerated); err != nil {
		return 0, err
	}
	if len(v.data) < 1 || len(v.data) > 4 {
		return 0, &Error{Kind: InvalidLength, Tag: v.tag, Err: errors.New("ENUMERATED must have 1 to 4 content bytes")}
	}
	value := int32(int8(v.data[0]))
	for _, b := range v.data[1:] {
		value = value*256 + int32(b)
	}
	return value, nil
}

//endregion

//region Character Strings

// decodeString decodes v as a string if it has one of the allowed tags.
func (v Value) decodeString(allowed ...Tag) (string, error) {
	if !slices.Contains(allowed, v.tag) {
		return "", &Error{Kind: TagMismatch, Tag: v.tag, Expected: allowed[0]}
	}
	s, err := v.registry().Decode(byte(v.tag), v.data)
	if err != nil {
		return "", charsetError(err, v.tag, v.data, true)
	}
	return s, nil
}

// PrintableString decodes v as a PrintableString. Characters outside the
// PrintableString repertoire fail with [UnmappableCharacter].
func (v Value) PrintableString() (string, error) {
	return v.decodeString(TagPrintableString)
}

// IA5String decodes v as an IA5String.
func (v Value) IA5String() (string, error) {
	return v.decodeString(TagIA5String)
}

// T61String decodes v as a T61String.
func (v Value) T61String() (string, error) {
	return v.decodeString(TagT61String)
}

// BMPString decodes v as a BMPString.
func (v Value) BMPString() (string, error) {
	return v.decodeString(TagBMPString)
}

// UniversalString decodes v as a UniversalString.
func (v Value) UniversalString() (string, error) {
	return v.decodeString(TagUniversalString)
}

// UTF8String decodes v as a UTF8String.
func (v Value) UTF8String() (string, error) {
	return v.decodeString(TagUTF8String)
}

// VisibleString decodes v as a VisibleString.
func (v Value) VisibleString() (string, error) {
	return v.decodeString(TagVisibleString)
}

// GeneralString decodes v as a GeneralString.
func (v Value) GeneralString() (string, error) {
	return v.decodeString(TagGeneralString)
}

// DirectoryString decodes v as the X.520 DirectoryString CHOICE. It accepts
// the T61String, PrintableString, UniversalString, UTF8String and BMPString
// alternatives.
func (v Value) DirectoryString() (string, error) {
	return v.decodeString(TagPrintableString, TagT61String, TagUniversalString, TagUTF8String, TagBMPString)
}

// AsString decodes v as a string using the codec registered for its tag. If no
// codec is registered AsString fails with [UnknownCharset].
func (v Value) AsString() (string, error) {
	s, err := v.registry().Decode(byte(v.tag), v.data)
	if err != nil {
		return "", charsetError(err, v.tag, v.data, true)
	}
	return s, nil
}

// IsString reports whether a codec is registered for the tag of v.
func (v Value) IsString() bool {
	_, ok := v.registry().Lookup(byte(v.tag))
	return ok
}

//endregion

//region [UNIVERSAL 23] UTCTime and [UNIVERSAL 24] GeneralizedTime

// UTCTime decodes v as a UTCTime in the DER form YYMMDDhhmmssZ. Two digit
// years below 50 are in the 21st century.
func (v Value) UTCTime() (UTCTime, error) {
	if err := v.expect(TagUTCTime); err != nil {
		return UTCTime{}, err
	}
	t, err := parseUTCTime(v.data)
	if err != nil {
		return UTCTime{}, &Error{Kind: InvalidContent, Tag: v.tag, Err: err}
	}
	return UTCTime(t), nil
}

// GeneralizedTime decodes v as a GeneralizedTime in the DER form
// YYYYMMDDhhmmss[.f]Z.
func (v Value) GeneralizedTime() (GeneralizedTime, error) {
	if err := v.expect(TagGeneralizedTime); err != nil {
		return GeneralizedTime{}, err
	}
	t, err := parseGeneralizedTime(v.data)
	if err != nil {
		return GeneralizedTime{}, &Error{Kind: InvalidContent, Tag: v.tag, Err: err}
	}
	return GeneralizedTime(t), nil
}

//endregion

//region [UNIVERSAL 16] SEQUENCE and [UNIVERSAL 17] SET

// Stream returns a stream over the elements of the constructed value v. Offsets
// reported by the stream are relative to the content of v. A primitive value
// fails with [TagMismatch].
func (v Value) Stream() (*Stream, error) {
	if !v.tag.IsConstructed() {
		return nil, &Error{Kind: TagMismatch, Tag: v.tag, Expected: v.tag.Constructed()}
	}
	s := NewStream(v.data)
	s.charsets = v.charsets
	return s, nil
}

// Elements decodes all elements of the constructed value v.
func (v Value) Elements() ([]Value, error) {
	s, err := v.Stream()
	if err != nil {
		return nil, err
	}
	var elems []Value
	for e, err := range s.All() {
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return elems, nil
}

// Sequence decodes the elements of v after checking that v is a SEQUENCE.
func (v Value) Sequence() ([]Value, error) {
	if err := v.expect(TagSequence); err != nil {
		return nil, err
	}
	return v.Elements()
}

// Set decodes the elements of v after checking that v is a SET.
func (v Value) Set() ([]Value, error) {
	if err := v.expect(TagSet); err != nil {
		return nil, err
	}
	return v.Elements()
}

// Explicit returns the single value wrapped by the explicitly tagged value v.
// It fails with [TagMismatch] if v does not have the given tag and with
// [TrailingData] if v contains more than one value.
func (v Value) Explicit(tag Tag) (Value, error) {
	if err := v.expect(tag.Constructed()); err != nil {
		return Value{}, err
	}
	return ParseWith(v.data, v.charsets)
}

//endregion
