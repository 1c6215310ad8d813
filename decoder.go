// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"errors"
	"io"
	"iter"
	"slices"
	"strconv"

	"codello.dev/der/charset"
)

// contentChunk is the size by which the content buffer of a [Decoder] grows at
// least. Larger values are read in growing chunks so that a declared length is
// never allocated before the bytes arrive.
const contentChunk = 32 << 10

// A Decoder reads consecutive top-level DER values from an input stream. In
// contrast to a [Stream] the content of each returned [Value] is copied into a
// buffer owned by the value.
//
// If the underlying reader does not implement [io.ByteReader], the Decoder
// does its own buffering. The buffering never reads past the end of the
// current value.
//
// After Decode returns an error other than [io.EOF] the position of the
// Decoder in the input is undefined and it should not be used further.
type Decoder struct {
	br interface {
		io.Reader
		io.ByteReader
	}
	buf       bufferedReader
	offset    int64
	maxLength int
	charsets  *charset.Registry
}

// A DecoderOption configures a [Decoder].
type DecoderOption func(*Decoder)

// WithMaxLength limits the content length of a single value to n bytes. Longer
// values fail with [InvalidLength]. A value of 0 means no limit beyond the
// 2^31-1 bytes allowed by the length encoding.
func WithMaxLength(n int) DecoderOption {
	return func(d *Decoder) { d.maxLength = n }
}

// WithCharsets sets the registry used by the string accessors of decoded
// values.
func WithCharsets(reg *charset.Registry) DecoderOption {
	return func(d *Decoder) { d.charsets = reg }
}

// NewDecoder creates a new Decoder reading from r.
func NewDecoder(r io.Reader, opts ...DecoderOption) *Decoder {
	d := new(Decoder)
	if br, ok := r.(interface {
		io.Reader
		io.ByteReader
	}); ok {
		d.br = br
	} else {
		d.buf.Reset(r)
		d.br = &d.buf
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// InputOffset returns the number of bytes read from the input so far.
func (d *Decoder) InputOffset() int64 {
	return d.offset
}

// Decode reads the next value. At the end of the input Decode returns [io.EOF].
// If the input ends within a value the error has kind [TruncatedInput]. Errors
// from the underlying reader are wrapped and can be inspected with
// [errors.Is] and [errors.As].
func (d *Decoder) Decode() (Value, error) {
	start := int(d.offset)
	t, err := d.readByte()
	if err == io.EOF {
		return Value{}, io.EOF
	} else if err != nil {
		return Value{}, &ioError{"read", err}
	}
	tag := Tag(t)
	if t&tagNumberMask == highTagNumber {
		return Value{}, &Error{Kind: UnsupportedTag, Tag: tag, Offset: start, Err: errors.New("high tag number form")}
	}

	l, err := readLength(byteReaderFunc(d.readByte))
	if err != nil {
		return Value{}, d.wrap(err, tag, start)
	}
	if d.maxLength > 0 && l > d.maxLength {
		return Value{}, &Error{Kind: InvalidLength, Tag: tag, Offset: start,
			Err: errors.New("length " + strconv.Itoa(l) + " exceeds limit of " + strconv.Itoa(d.maxLength))}
	}

	d.buf.SetLimit(l)
	data, err := d.readContent(l)
	d.buf.SetLimit(0)
	if err != nil {
		return Value{}, d.wrap(truncated(err, "content shorter than declared length"), tag, start)
	}
	return Value{tag: tag, data: data, charsets: d.charsets}, nil
}

// All returns an iterator over the remaining values of the input. Iteration
// ends at the end of the input or after the first error.
func (d *Decoder) All() iter.Seq2[Value, error] {
	return func(yield func(Value, error) bool) {
		for {
			v, err := d.Decode()
			if err == io.EOF {
				return
			}
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// readByte reads a single byte and advances the offset.
func (d *Decoder) readByte() (byte, error) {
	b, err := d.br.ReadByte()
	if err == nil {
		d.offset++
	}
	return b, err
}

// readContent reads exactly n bytes. The result grows with the bytes actually
// read.
func (d *Decoder) readContent(n int) ([]byte, error) {
	data := make([]byte, 0, min(n, contentChunk))
	for len(data) < n {
		if len(data) == cap(data) {
			data = slices.Grow(data, min(n-len(data), max(len(data), contentChunk)))
		}
		m, err := io.ReadFull(d.br, data[len(data):min(cap(data), n)])
		data = data[:len(data)+m]
		d.offset += int64(m)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

// wrap adds position information to DER errors and wraps I/O errors.
func (d *Decoder) wrap(err error, tag Tag, offset int) error {
	var e *Error
	if errors.As(err, &e) {
		return at(err, tag, offset)
	}
	return &ioError{"read", err}
}
