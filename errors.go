// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"strconv"
	"unicode/utf8"

	"codello.dev/der/charset"
	"golang.org/x/text/encoding"
)

// Kind classifies the errors returned by this package. A Kind is an error
// itself, so callers can test for a specific kind using [errors.Is]:
//
//	if errors.Is(err, der.TruncatedInput) {
//		// need more data
//	}
//
//go:generate stringer -type=Kind
type Kind int

const (
	// TruncatedInput indicates that the input ended before a complete TLV was
	// read.
	TruncatedInput Kind = iota + 1
	// MalformedLength indicates a length encoding that is not allowed in DER:
	// the indefinite form, more than 4 length bytes or a non-minimal encoding.
	MalformedLength
	// TrailingData indicates that bytes remained after the single value that
	// was expected.
	TrailingData
	// TagMismatch indicates that a typed accessor was called on a value with a
	// different tag.
	TagMismatch
	// InvalidLength indicates that the content length is not allowed for the
	// type, e.g. a BOOLEAN with 2 content bytes.
	InvalidLength
	// Overflow indicates that a value does not fit into the requested Go type.
	Overflow
	// UnmappableCharacter indicates that a character cannot be represented in
	// the character set of a string type.
	UnmappableCharacter
	// MalformedText indicates string content that is not a valid encoding in
	// its character set.
	MalformedText
	// UnknownCharset indicates that no codec is registered for a string tag.
	UnknownCharset
	// DuplicateRegistration indicates an attempt to register a second codec for
	// the same tag.
	DuplicateRegistration
	// UnsupportedTag indicates an identifier in the high-tag-number form.
	UnsupportedTag
	// InvalidContent indicates content bytes that violate the DER rules for the
	// type, e.g. a non-minimal OBJECT IDENTIFIER arc.
	InvalidContent
	// NegativeValue indicates a negative number where only non-negative values
	// are supported.
	NegativeValue
)

var kindText = [...]string{
	TruncatedInput:        "truncated input",
	MalformedLength:       "malformed length",
	TrailingData:          "trailing data",
	TagMismatch:           "tag mismatch",
	InvalidLength:         "invalid length",
	Overflow:              "value overflows",
	UnmappableCharacter:   "unmappable character",
	MalformedText:         "malformed text",
	UnknownCharset:        "unknown charset",
	DuplicateRegistration: "duplicate charset registration",
	UnsupportedTag:        "unsupported tag",
	InvalidContent:        "invalid content",
	NegativeValue:         "negative value",
}

// Error implements the error interface.
func (k Kind) Error() string {
	if k > 0 && int(k) < len(kindText) {
		return "der: " + kindText[k]
	}
	return "der: " + k.String()
}

// An Error describes a failure to decode or encode a DER value. An Error
// matches its Kind using [errors.Is] and unwraps to the underlying cause, if
// any.
type Error struct {
	Kind     Kind
	Tag      Tag   // tag of the value being processed, if known
	Expected Tag   // expected tag, set for TagMismatch
	Offset   int   // byte offset at which the error was detected, if known
	Err      error // underlying cause, may be nil
}

func (e *Error) Error() string {
	b := []byte(e.Kind.Error())
	switch {
	case e.Kind == TagMismatch:
		b = append(b, ": expected "...)
		b = append(b, e.Expected.TypeName()...)
		b = append(b, ", got "...)
		b = append(b, e.Tag.TypeName()...)
	case e.Tag != 0:
		b = append(b, " decoding "...)
		b = append(b, e.Tag.TypeName()...)
	}
	if e.Offset > 0 {
		b = append(b, " at offset "...)
		b = strconv.AppendInt(b, int64(e.Offset), 10)
	}
	if e.Err != nil {
		b = append(b, ": "...)
		b = append(b, e.Err.Error()...)
	}
	return string(b)
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// at sets the offset and tag of err if it is an *Error that does not have them
// yet. Other errors are returned unchanged.
func at(err error, tag Tag, offset int) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Tag == 0 {
			e.Tag = tag
		}
		if e.Offset == 0 {
			e.Offset = offset
		}
	}
	return err
}

// ioError wraps an error returned by the underlying reader of a [Decoder].
type ioError struct {
	action string
	err    error
}

func (e *ioError) Error() string {
	return "der: " + e.action + ": " + e.err.Error()
}

func (e *ioError) Unwrap() error {
	return e.err
}

// charsetError translates an error from the charset package into an *Error. If
// decoding is true the codec was converting DER content into text, otherwise
// text into DER content.
func charsetError(err error, tag Tag, content []byte, decoding bool) error {
	var (
		ue *charset.UnmappableError
		me *charset.MalformedError
	)
	switch {
	case errors.As(err, &ue):
		return &Error{Kind: UnmappableCharacter, Tag: tag, Offset: ue.Offset, Err: err}
	case errors.As(err, &me):
		return &Error{Kind: MalformedText, Tag: tag, Offset: me.Offset, Err: err}
	case errors.Is(err, charset.ErrUnknownCharset):
		return &Error{Kind: UnknownCharset, Tag: tag, Err: err}
	case errors.Is(err, charset.ErrDuplicateRegistration):
		return &Error{Kind: DuplicateRegistration, Tag: tag, Err: err}
	case errors.Is(err, encoding.ErrInvalidUTF8):
		off := 0
		if decoding {
			off = invalidUTF8(content)
		}
		return &Error{Kind: MalformedText, Tag: tag, Offset: off, Err: err}
	case decoding:
		return &Error{Kind: MalformedText, Tag: tag, Err: err}
	default:
		return &Error{Kind: UnmappableCharacter, Tag: tag, Err: err}
	}
}

// invalidUTF8 returns the offset of the first invalid UTF-8 sequence in b.
func invalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, n := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && n == 1 {
			return i
		}
		i += n
	}
	return len(b)
}
