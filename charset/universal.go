package charset

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var errInvalidCodePoint = errors.New("invalid code point")

// universalCodec implements UniversalString. Every character is a 4-byte big
// endian code point.
type universalCodec struct{}

func (universalCodec) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &universalDecoder{}}
}

func (universalCodec) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &universalEncoder{}}
}

func (universalCodec) String() string { return "UniversalString" }

type universalDecoder struct{ pos int }

func (t *universalDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	defer func() { t.pos += nSrc }()
	for nSrc < len(src) {
		if len(src)-nSrc < 4 {
			if atEOF {
				return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: transform.ErrShortSrc}
			}
			return nDst, nSrc, transform.ErrShortSrc
		}
		u := binary.BigEndian.Uint32(src[nSrc:])
		if u > utf8.MaxRune || 0xd800 <= u && u <= 0xdfff {
			return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: errInvalidCodePoint}
		}
		r := rune(u)
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += 4
	}
	return nDst, nSrc, nil
}

func (t *universalDecoder) Reset() { t.pos = 0 }

type universalEncoder struct{ pos int }

func (t *universalEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	defer func() { t.pos += nSrc }()
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: encoding.ErrInvalidUTF8}
		}
		if len(dst)-nDst < 4 {
			return nDst, nSrc, transform.ErrShortDst
		}
		binary.BigEndian.PutUint32(dst[nDst:], uint32(r))
		nDst += 4
		nSrc += size
	}
	return nDst, nSrc, nil
}

func (t *universalEncoder) Reset() { t.pos = 0 }
