package charset

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var (
	errOddLength         = errors.New("odd number of bytes")
	errUnpairedSurrogate = errors.New("unpaired surrogate")
)

// bmpCodec implements BMPString as UTF-16 big endian without a byte order
// mark. Surrogate pairs are accepted for characters outside the BMP.
type bmpCodec struct{}

func (bmpCodec) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &bmpDecoder{}}
}

func (bmpCodec) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &bmpEncoder{}}
}

func (bmpCodec) String() string { return "BMPString" }

type bmpDecoder struct{ pos int }

func (t *bmpDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	defer func() { t.pos += nSrc }()
	for nSrc < len(src) {
		if len(src)-nSrc < 2 {
			if atEOF {
				return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: errOddLength}
			}
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := rune(binary.BigEndian.Uint16(src[nSrc:])), 2
		switch {
		case 0xd800 <= r && r < 0xdc00:
			if len(src)-nSrc < 4 {
				if atEOF {
					return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: errUnpairedSurrogate}
				}
				return nDst, nSrc, transform.ErrShortSrc
			}
			r2 := rune(binary.BigEndian.Uint16(src[nSrc+2:]))
			if r2 < 0xdc00 || r2 > 0xdfff {
				return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: errUnpairedSurrogate}
			}
			r, size = utf16.DecodeRune(r, r2), 4
		case 0xdc00 <= r && r <= 0xdfff:
			return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: errUnpairedSurrogate}
		}
		if nDst+utf8.RuneLen(r) > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
	}
	return nDst, nSrc, nil
}

func (t *bmpDecoder) Reset() { t.pos = 0 }

type bmpEncoder struct{ pos int }

func (t *bmpEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	defer func() { t.pos += nSrc }()
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: encoding.ErrInvalidUTF8}
		}
		if r < 0x10000 {
			if len(dst)-nDst < 2 {
				return nDst, nSrc, transform.ErrShortDst
			}
			binary.BigEndian.PutUint16(dst[nDst:], uint16(r))
			nDst += 2
		} else {
			if len(dst)-nDst < 4 {
				return nDst, nSrc, transform.ErrShortDst
			}
			r1, r2 := utf16.EncodeRune(r)
			binary.BigEndian.PutUint16(dst[nDst:], uint16(r1))
			binary.BigEndian.PutUint16(dst[nDst+2:], uint16(r2))
			nDst += 4
		}
		nSrc += size
	}
	return nDst, nSrc, nil
}

func (t *bmpEncoder) Reset() { t.pos = 0 }
