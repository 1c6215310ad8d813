// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"io"
	"iter"
	"math"

	"codello.dev/der/charset"
	"golang.org/x/crypto/cryptobyte"
)

// A Stream reads consecutive DER values from a byte slice. The stream never
// copies: every returned [Value] is a view into the slice. A Stream only
// advances its own position. Creating a nested stream via [Value.Stream]
// creates an independent view of the nested content.
type Stream struct {
	in       cryptobyte.String
	size     int
	charsets *charset.Registry
}

// NewStream returns a stream over b. String accessors of values read from the
// stream use the default charset registry.
func NewStream(b []byte) *Stream {
	return &Stream{in: cryptobyte.String(b), size: len(b)}
}

// NewStreamWith returns a stream over b whose values decode strings using reg.
func NewStreamWith(b []byte, reg *charset.Registry) *Stream {
	s := NewStream(b)
	s.charsets = reg
	return s
}

// Offset returns the number of bytes consumed so far.
func (s *Stream) Offset() int {
	return s.size - len(s.in)
}

// Len returns the number of unread bytes.
func (s *Stream) Len() int {
	return len(s.in)
}

// More reports whether there are unread bytes.
func (s *Stream) More() bool {
	return !s.in.Empty()
}

// Remaining returns the unread bytes. The returned slice shares memory with
// the stream's input.
func (s *Stream) Remaining() []byte {
	return []byte(s.in)
}

// PeekTag returns the tag of the next value without consuming it. It returns
// false if the stream is exhausted.
func (s *Stream) PeekTag() (Tag, bool) {
	if s.in.Empty() {
		return 0, false
	}
	return Tag(s.in[0]), true
}

// Next decodes the next value. If the stream is exhausted Next returns an error
// of kind [TruncatedInput]. On error the stream does not advance.
func (s *Stream) Next() (Value, error) {
	start := s.Offset()
	in := s.in
	var t uint8
	if !in.ReadUint8(&t) {
		return Value{}, &Error{Kind: TruncatedInput, Offset: start, Err: errors.New("missing tag")}
	}
	tag := Tag(t)
	if t&tagNumberMask == highTagNumber {
		return Value{}, &Error{Kind: UnsupportedTag, Tag: tag, Offset: start, Err: errors.New("high tag number form")}
	}
	l, err := readLength(byteReaderFunc(func() (byte, error) {
		var b uint8
		if !in.ReadUint8(&b) {
			return 0, io.ErrUnexpectedEOF
		}
		return b, nil
	}))
	if err != nil {
		return Value{}, at(err, tag, start)
	}
	var data []byte
	if !in.ReadBytes(&data, l) {
		return Value{}, &Error{Kind: TruncatedInput, Tag: tag, Offset: start,
			Err: errors.New("content shorter than declared length")}
	}
	s.in = in
	return Value{tag: tag, data: data[:l:l], charsets: s.charsets}, nil
}

// All returns an iterator over the remaining values of s. Iteration stops after
// the first error.
func (s *Stream) All() iter.Seq2[Value, error] {
	return func(yield func(Value, error) bool) {
		for s.More() {
			v, err := s.Next()
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Sequence reads the next value, checks that it is a SEQUENCE and returns its
// elements.
func (s *Stream) Sequence() ([]Value, error) {
	return s.constructed(TagSequence)
}

// Set reads the next value, checks that it is a SET and returns its elements.
func (s *Stream) Set() ([]Value, error) {
	return s.constructed(TagSet)
}

func (s *Stream) constructed(tag Tag) ([]Value, error) {
	start := s.Offset()
	v, err := s.Next()
	if err != nil {
		return nil, err
	}
	if err = v.expect(tag); err != nil {
		return nil, at(err, tag, start)
	}
	elems, err := v.Elements()
	if err != nil {
		return nil, err
	}
	return elems, nil
}

// byteReaderFunc implements [io.ByteReader] using a function.
type byteReaderFunc func() (byte, error)

func (f byteReaderFunc) ReadByte() (byte, error) {
	return f()
}

// readLength reads a DER length from r. Only the definite form with at most 4
// length bytes is accepted, and the length must be minimally encoded. Errors
// caused by the length encoding are returned as *Error, an unexpected end of r
// as [TruncatedInput]. Other errors from r are returned unchanged.
func readLength(r io.ByteReader) (int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, truncated(err, "missing length")
	}
	if b&0x80 == 0 {
		return int(b), nil
	}
	n := int(b & 0x7f)
	if n == 0 {
		return 0, &Error{Kind: MalformedLength, Err: errors.New("indefinite length")}
	}
	if n > 4 {
		return 0, &Error{Kind: MalformedLength, Err: errors.New("more than 4 length bytes")}
	}
	var l uint64
	for i := range n {
		if b, err = r.ReadByte(); err != nil {
			return 0, truncated(err, "missing length bytes")
		}
		if i == 0 && b == 0 {
			return 0, &Error{Kind: MalformedLength, Err: errors.New("leading zero in length")}
		}
		l = l<<8 | uint64(b)
	}
	if l < 0x80 {
		return 0, &Error{Kind: MalformedLength, Err: errors.New("long form for short length")}
	}
	if l > math.MaxInt32 {
		return 0, &Error{Kind: MalformedLength, Err: errors.New("length exceeds 2^31-1")}
	}
	return int(l), nil
}

// truncated converts an end of input into a [TruncatedInput] error.
func truncated(err error, msg string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &Error{Kind: TruncatedInput, Err: errors.New(msg)}
	}
	return err
}
