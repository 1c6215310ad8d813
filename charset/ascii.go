package charset

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// asciiCodec implements the character sets that are subsets of ASCII. Each
// character is a single byte in both the DER content and UTF-8.
type asciiCodec struct {
	name       string
	valid      func(byte) bool
	substitute bool
}

func (c *asciiCodec) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &asciiDecoder{codec: c}}
}

func (c *asciiCodec) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &asciiEncoder{codec: c}}
}

func (c *asciiCodec) String() string { return c.name }

// asciiDecoder converts DER content bytes into UTF-8.
type asciiDecoder struct {
	codec *asciiCodec
	pos   int
}

func (t *asciiDecoder) Transform(dst, src []byte, _ bool) (nDst, nSrc int, err error) {
	defer func() { t.pos += nSrc }()
	for nSrc < len(src) {
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		b := src[nSrc]
		if !t.codec.valid(b) {
			if !t.codec.substitute {
				return nDst, nSrc, &UnmappableError{Offset: t.pos + nSrc, Rune: rune(b)}
			}
			b = '?'
		}
		dst[nDst] = b
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}

func (t *asciiDecoder) Reset() { t.pos = 0 }

// asciiEncoder converts UTF-8 into DER content bytes.
type asciiEncoder struct {
	codec *asciiCodec
	pos   int
}

func (t *asciiEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	defer func() { t.pos += nSrc }()
	for nSrc < len(src) {
		r, size := rune(src[nSrc]), 1
		if r >= utf8.RuneSelf {
			r, size = utf8.DecodeRune(src[nSrc:])
			if r == utf8.RuneError && size == 1 {
				if !atEOF && !utf8.FullRune(src[nSrc:]) {
					return nDst, nSrc, transform.ErrShortSrc
				}
				return nDst, nSrc, &MalformedError{Offset: t.pos + nSrc, Err: encoding.ErrInvalidUTF8}
			}
		}
		c := byte(r)
		if r >= utf8.RuneSelf || !t.codec.valid(c) {
			if !t.codec.substitute {
				return nDst, nSrc, &UnmappableError{Offset: t.pos + nSrc, Rune: r}
			}
			c = '?'
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc += size
	}
	return nDst, nSrc, nil
}

func (t *asciiEncoder) Reset() { t.pos = 0 }
