// Package charset implements the character sets of the ASN.1 restricted string
// types as [encoding.Encoding] values and a [Registry] that maps DER tags to
// them.
//
// Every codec converts between the content bytes of a DER string value and
// UTF-8. Encoders and decoders are [transform.Transformer] values and can be
// used incrementally: [transform.ErrShortSrc] and [transform.ErrShortDst]
// report that more input or more output space is needed, which is different
// from the content errors [*UnmappableError] and [*MalformedError]. Offsets in
// content errors count input bytes since the transformer was created or last
// reset, across all calls to Transform.
package charset

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	// ErrUnknownCharset indicates that no codec is registered for a tag.
	ErrUnknownCharset = errors.New("charset: no codec registered")
	// ErrDuplicateRegistration indicates that a different codec is already
	// registered for a tag.
	ErrDuplicateRegistration = errors.New("charset: tag already registered")
	// ErrMalformed is matched by every [*MalformedError].
	ErrMalformed = errors.New("charset: malformed input")
)

// UnmappableError reports a character that is valid in the input but cannot be
// represented in the target character set.
type UnmappableError struct {
	Offset int  // input offset of the character
	Rune   rune // the character
}

func (e *UnmappableError) Error() string {
	return fmt.Sprintf("charset: unmappable character %U %q at offset %d", e.Rune, e.Rune, e.Offset)
}

// MalformedError reports input that is not a valid encoding in its character
// set, such as invalid UTF-8 or an incomplete UniversalString unit.
type MalformedError struct {
	Offset int   // input offset of the first malformed byte
	Err    error // underlying cause, may be nil
}

func (e *MalformedError) Error() string {
	s := fmt.Sprintf("charset: malformed input at offset %d", e.Offset)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is reports whether target is [ErrMalformed].
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Codecs of the ASN.1 character string types.
var (
	// Printable is the strict PrintableString codec. Characters outside the
	// PrintableString repertoire fail with an [*UnmappableError].
	Printable encoding.Encoding = &asciiCodec{name: "PrintableString", valid: IsPrintableByte}
	// PrintableSubstitute is like Printable but replaces characters outside the
	// repertoire by '?'.
	PrintableSubstitute encoding.Encoding = &asciiCodec{name: "PrintableString (substitute)", valid: IsPrintableByte, substitute: true}
	// IA5 is the IA5String codec (7-bit ASCII).
	IA5 encoding.Encoding = &asciiCodec{name: "IA5String", valid: isASCII}
	// IA5Substitute is like IA5 but replaces non-ASCII characters by '?'.
	IA5Substitute encoding.Encoding = &asciiCodec{name: "IA5String (substitute)", valid: isASCII, substitute: true}
	// Visible is the VisibleString codec (0x20 to 0x7E).
	Visible encoding.Encoding = &asciiCodec{name: "VisibleString", valid: isVisible}
	// Universal is the UniversalString codec (UCS-4, big endian).
	Universal encoding.Encoding = universalCodec{}
	// UTF8 is the UTF8String codec. Invalid UTF-8 fails with a
	// [*MalformedError] in both directions.
	UTF8 encoding.Encoding = utf8Codec{}
	// BMP is the BMPString codec (UTF-16, big endian, without byte order mark).
	// Odd lengths and unpaired surrogates fail with a [*MalformedError].
	BMP encoding.Encoding = bmpCodec{}
	// T61 is the codec used for T61String. Only the ISO 8859-1 subset of T.61
	// is supported.
	T61 encoding.Encoding = charmapCodec{charmap.ISO8859_1}
	// General is the codec used for GeneralString (ISO 8859-1).
	General encoding.Encoding = charmapCodec{charmap.ISO8859_1}
)

var byName = map[string]encoding.Encoding{
	"printable":            Printable,
	"printable-substitute": PrintableSubstitute,
	"ia5":                  IA5,
	"ia5-substitute":       IA5Substitute,
	"visible":              Visible,
	"universal":            Universal,
	"utf8":                 UTF8,
	"bmp":                  BMP,
	"t61":                  T61,
	"latin1":               General,
}

// ByName returns the codec with the given name. Known names are "printable",
// "printable-substitute", "ia5", "ia5-substitute", "visible", "universal",
// "utf8", "bmp", "t61" and "latin1".
func ByName(name string) (encoding.Encoding, bool) {
	enc, ok := byName[name]
	return enc, ok
}

// IsPrintableByte reports whether b is in the PrintableString repertoire:
// A-Z, a-z, 0-9, space and the characters ' ( ) + , - . / : = ?.
func IsPrintableByte(b byte) bool {
	return 'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z' ||
		'0' <= b && b <= '9' ||
		'\'' <= b && b <= ')' ||
		'+' <= b && b <= '/' ||
		b == ' ' ||
		b == ':' ||
		b == '=' ||
		b == '?'
}

// IsPrintable reports whether every character of s is in the PrintableString
// repertoire.
func IsPrintable(s string) bool {
	for i := 0; i < len(s); i++ {
		if !IsPrintableByte(s[i]) {
			return false
		}
	}
	return true
}

// IsIA5 reports whether s consists of ASCII characters only.
func IsIA5(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isASCII(b byte) bool   { return b < utf8.RuneSelf }
func isVisible(b byte) bool { return 0x20 <= b && b <= 0x7e }

// utf8Codec validates UTF-8 in both directions.
type utf8Codec struct{}

func (utf8Codec) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &tracking{t: encoding.UTF8Validator}}
}

func (utf8Codec) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &tracking{t: encoding.UTF8Validator}}
}

func (utf8Codec) String() string { return "UTF8String" }

// tracking wraps a validating transformer and converts its content errors into
// a [*MalformedError] with an absolute offset.
type tracking struct {
	t   transform.Transformer
	pos int
}

func (t *tracking) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = t.t.Transform(dst, src, atEOF)
	if err != nil && err != transform.ErrShortSrc && err != transform.ErrShortDst {
		err = &MalformedError{Offset: t.pos + nSrc, Err: err}
	}
	t.pos += nSrc
	return nDst, nSrc, err
}

func (t *tracking) Reset() {
	t.t.Reset()
	t.pos = 0
}

// charmapCodec is a single byte character set from x/text whose encoder reports
// characters outside the charset as an [*UnmappableError].
type charmapCodec struct {
	*charmap.Charmap
}

func (c charmapCodec) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &repertoire{t: c.Charmap.NewEncoder()}}
}

// repertoire wraps an x/text encoder and converts its content errors into
// errors with an absolute offset and the offending character.
type repertoire struct {
	t   transform.Transformer
	pos int
}

func (t *repertoire) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = t.t.Transform(dst, src, atEOF)
	if err != nil && err != transform.ErrShortSrc && err != transform.ErrShortDst {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			err = &MalformedError{Offset: t.pos + nSrc, Err: encoding.ErrInvalidUTF8}
		} else {
			err = &UnmappableError{Offset: t.pos + nSrc, Rune: r}
		}
	}
	t.pos += nSrc
	return nDst, nSrc, err
}

func (t *repertoire) Reset() {
	t.t.Reset()
	t.pos = 0
}
