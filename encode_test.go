// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"codello.dev/der/charset"
)

func TestValue_Encode(t *testing.T) {
	tests := map[string]struct {
		value Value
		want  []byte
	}{
		"Integer300":    {NewInteger(BigIntFromUint32(300)), []byte{0x02, 0x02, 0x01, 0x2c}},
		"IntegerZero":   {NewInteger(BigInt{}), []byte{0x02, 0x01, 0x00}},
		"True":          {NewBoolean(true), []byte{0x01, 0x01, 0xff}},
		"False":         {NewBoolean(false), []byte{0x01, 0x01, 0x00}},
		"Null":          {NewNull(), []byte{0x05, 0x00}},
		"OctetString":   {NewOctetString([]byte{1, 2, 3}), []byte{0x04, 0x03, 0x01, 0x02, 0x03}},
		"EmptyOctets":   {NewOctetString(nil), []byte{0x04, 0x00}},
		"Enumerated":    {NewEnumerated(5), []byte{0x0a, 0x01, 0x05}},
		"EnumeratedNeg": {NewEnumerated(-129), []byte{0x0a, 0x02, 0xff, 0x7f}},
		"Enumerated128": {NewEnumerated(128), []byte{0x0a, 0x02, 0x00, 0x80}},
		"Implicit":      {New(ContextSpecific(1, false), []byte{0xaa}), []byte{0x81, 0x01, 0xaa}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := tc.value.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v, want nil", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Encode() = %# x, want %# x", got, tc.want)
			}
			if n := tc.value.EncodedLen(); n != len(tc.want) {
				t.Errorf("EncodedLen() = %d, want %d", n, len(tc.want))
			}
		})
	}
}

func TestValue_Encode_Length(t *testing.T) {
	tests := map[string]struct {
		n      int
		header []byte
	}{
		"0":       {0, []byte{0x04, 0x00}},
		"127":     {127, []byte{0x04, 0x7f}},
		"128":     {128, []byte{0x04, 0x81, 0x80}},
		"255":     {255, []byte{0x04, 0x81, 0xff}},
		"256":     {256, []byte{0x04, 0x82, 0x01, 0x00}},
		"65535":   {65535, []byte{0x04, 0x82, 0xff, 0xff}},
		"65536":   {65536, []byte{0x04, 0x83, 0x01, 0x00, 0x00}},
		"1 << 24": {1 << 24, []byte{0x04, 0x84, 0x01, 0x00, 0x00, 0x00}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			v := NewOctetString(make([]byte, tc.n))
			got, err := v.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v, want nil", err)
			}
			if !bytes.HasPrefix(got, tc.header) || len(got) != len(tc.header)+tc.n {
				t.Errorf("Encode() header = %# x, want %# x", got[:min(len(got), len(tc.header))], tc.header)
			}
			if v.EncodedLen() != len(got) {
				t.Errorf("EncodedLen() = %d, want %d", v.EncodedLen(), len(got))
			}
			back, err := Parse(got)
			if err != nil {
				t.Fatalf("Parse(Encode()) error = %v, want nil", err)
			}
			if !back.Equal(v) {
				t.Errorf("Parse(Encode()) = %v, want %v", back, v)
			}
		})
	}
}

func TestValue_Encode_HighTag(t *testing.T) {
	_, err := New(Tag(0x1f), nil).Encode()
	if !errors.Is(err, UnsupportedTag) {
		t.Errorf("Encode() error = %v, want %v", err, UnsupportedTag)
	}
}

func TestNewInteger_RoundTrip(t *testing.T) {
	enc, err := NewInteger(BigIntFromUint32(300)).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if want := []byte{0x02, 0x02, 0x01, 0x2c}; !bytes.Equal(enc, want) {
		t.Fatalf("Encode() = %# x, want %# x", enc, want)
	}
	got, err := mustParse(t, enc).Integer()
	if err != nil {
		t.Fatalf("Integer() error = %v, want nil", err)
	}
	if n, err := got.Uint32(); err != nil || n != 300 {
		t.Errorf("Integer().Uint32() = %d, %v, want 300, nil", n, err)
	}
}

func TestNewSignedInteger(t *testing.T) {
	tests := map[string]struct {
		x    int64
		want []byte
	}{
		"0":    {0, []byte{0x00}},
		"1":    {1, []byte{0x01}},
		"127":  {127, []byte{0x7f}},
		"128":  {128, []byte{0x00, 0x80}},
		"256":  {256, []byte{0x01, 0x00}},
		"-1":   {-1, []byte{0xff}},
		"-128": {-128, []byte{0x80}},
		"-129": {-129, []byte{0xff, 0x7f}},
		"-256": {-256, []byte{0xff, 0x00}},
		"-257": {-257, []byte{0xfe, 0xff}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			v := NewSignedInteger(big.NewInt(tc.x))
			if !bytes.Equal(v.Data(), tc.want) {
				t.Errorf("NewSignedInteger(%d) = %# x, want %# x", tc.x, v.Data(), tc.want)
			}
			got, err := v.SignedInteger()
			if err != nil || got.Int64() != tc.x {
				t.Errorf("SignedInteger() = %v, %v, want %d, nil", got, err, tc.x)
			}
		})
	}
}

func TestNewBitString(t *testing.T) {
	v, err := NewBitString(BitString{Bytes: []byte{0xff}, BitLength: 3})
	if err != nil {
		t.Fatalf("NewBitString() error = %v, want nil", err)
	}
	if want := []byte{0x05, 0xe0}; !bytes.Equal(v.Data(), want) {
		t.Errorf("NewBitString() = %# x, want %# x", v.Data(), want)
	}
	bs, err := v.UnalignedBitString()
	if err != nil || bs.BitLength != 3 || !bytes.Equal(bs.Bytes, []byte{0xe0}) {
		t.Errorf("UnalignedBitString() = %v, %v, want 111, nil", bs, err)
	}

	if _, err = NewBitString(BitString{Bytes: []byte{0xff}, BitLength: 9}); !errors.Is(err, InvalidContent) {
		t.Errorf("NewBitString() error = %v, want %v", err, InvalidContent)
	}
}

func TestNewObjectIdentifier(t *testing.T) {
	tests := map[string]struct {
		oid     ObjectIdentifier
		want    []byte
		wantErr error
	}{
		"CommonName":  {ObjectIdentifier{2, 5, 4, 3}, []byte{0x55, 0x04, 0x03}, nil},
		"RSA":         {ObjectIdentifier{1, 2, 840, 113549}, []byte{0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d}, nil},
		"LargeSecond": {ObjectIdentifier{2, 999}, []byte{0x88, 0x37}, nil},
		"TooShort":    {ObjectIdentifier{1}, nil, InvalidContent},
		"BadFirst":    {ObjectIdentifier{3, 1}, nil, InvalidContent},
		"BadSecond":   {ObjectIdentifier{1, 40}, nil, InvalidContent},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := NewObjectIdentifier(tc.oid)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewObjectIdentifier(%v) error = %v, want %v", tc.oid, err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if !bytes.Equal(v.Data(), tc.want) {
				t.Errorf("NewObjectIdentifier(%v) = %# x, want %# x", tc.oid, v.Data(), tc.want)
			}
			got, err := v.ObjectIdentifier()
			if err != nil || !got.Equal(tc.oid) {
				t.Errorf("ObjectIdentifier() = %v, %v, want %v, nil", got, err, tc.oid)
			}
		})
	}
}

func TestNewString(t *testing.T) {
	tests := map[string]struct {
		tag     Tag
		s       string
		want    []byte
		wantErr error
	}{
		"Printable":   {TagPrintableString, "Hi", []byte{'H', 'i'}, nil},
		"PrintableAt": {TagPrintableString, "a@b", nil, UnmappableCharacter},
		"IA5":         {TagIA5String, "a@b", []byte{'a', '@', 'b'}, nil},
		"IA5Umlaut":   {TagIA5String, "ä", nil, UnmappableCharacter},
		"BMP":         {TagBMPString, "hé", []byte{0x00, 'h', 0x00, 0xe9}, nil},
		"T61":         {TagT61String, "é", []byte{0xe9}, nil},
		"T61Euro":     {TagT61String, "a€", nil, UnmappableCharacter},
		"Universal":   {TagUniversalString, "h", []byte{0x00, 0x00, 0x00, 'h'}, nil},
		"UTF8":        {TagUTF8String, "é", []byte{0xc3, 0xa9}, nil},
		"Empty":       {TagUTF8String, "", []byte{}, nil},
		"Unknown":     {TagNumericString, "1", nil, UnknownCharset},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := NewString(nil, tc.tag, tc.s)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("NewString(%q) error = %v, want %v", tc.s, err, tc.wantErr)
			}
			if err != nil {
				return
			}
			if !bytes.Equal(v.Data(), tc.want) {
				t.Errorf("NewString(%q) = %# x, want %# x", tc.s, v.Data(), tc.want)
			}
			got, err := v.AsString()
			if err != nil || got != tc.s {
				t.Errorf("AsString() = %q, %v, want %q, nil", got, err, tc.s)
			}
		})
	}
}

func TestNewString_UnmappablePosition(t *testing.T) {
	_, err := NewString(nil, TagT61String, "Grüße €")
	var e *Error
	if !errors.As(err, &e) || e.Kind != UnmappableCharacter {
		t.Fatalf("NewString() error = %v, want %v", err, UnmappableCharacter)
	}
	if e.Offset != 8 {
		t.Errorf("NewString() error offset = %d, want 8", e.Offset)
	}
	var ue *charset.UnmappableError
	if !errors.As(err, &ue) || ue.Rune != '€' {
		t.Errorf("NewString() error = %v, want unmappable '€'", err)
	}
}

func TestNewString_Registry(t *testing.T) {
	reg := charset.NewRegistry()
	if err := reg.Register(byte(TagNumericString), charset.IA5); err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}
	v, err := NewString(reg, TagNumericString, "42")
	if err != nil {
		t.Fatalf("NewString() error = %v, want nil", err)
	}
	if s, err := v.AsString(); err != nil || s != "42" {
		t.Errorf("AsString() = %q, %v, want %q, nil", s, err, "42")
	}
}

func TestNewTimes(t *testing.T) {
	ts := time.Date(2024, 2, 29, 12, 0, 0, 500_000_000, time.FixedZone("CET", 3600))
	v, err := NewUTCTime(ts)
	if err != nil {
		t.Fatalf("NewUTCTime() error = %v, want nil", err)
	}
	if got := string(v.Data()); got != "240229110000Z" {
		t.Errorf("NewUTCTime() = %s, want 240229110000Z", got)
	}
	v, err = NewGeneralizedTime(ts)
	if err != nil {
		t.Fatalf("NewGeneralizedTime() error = %v, want nil", err)
	}
	if got := string(v.Data()); got != "20240229110000.5Z" {
		t.Errorf("NewGeneralizedTime() = %s, want 20240229110000.5Z", got)
	}
	if _, err = NewUTCTime(time.Date(2050, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, InvalidContent) {
		t.Errorf("NewUTCTime(2050) error = %v, want %v", err, InvalidContent)
	}
}

func TestNewSequence(t *testing.T) {
	seq, err := NewSequence(NewInteger(BigIntFromUint32(1)), NewNull())
	if err != nil {
		t.Fatalf("NewSequence() error = %v, want nil", err)
	}
	got, err := seq.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if want := []byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x05, 0x00}; !bytes.Equal(got, want) {
		t.Errorf("Encode() = %# x, want %# x", got, want)
	}
	empty, _ := NewSequence()
	if got, _ = empty.Encode(); !bytes.Equal(got, []byte{0x30, 0x00}) {
		t.Errorf("NewSequence().Encode() = %# x, want 30 00", got)
	}
}

func TestNewSetOf(t *testing.T) {
	set, err := NewSetOf(
		NewOctetString([]byte{0x02}),
		NewOctetString([]byte{0x01, 0x00}),
		NewOctetString([]byte{0x01}),
	)
	if err != nil {
		t.Fatalf("NewSetOf() error = %v, want nil", err)
	}
	want := []byte{
		0x31, 0x0a,
		0x04, 0x01, 0x01,
		0x04, 0x01, 0x02,
		0x04, 0x02, 0x01, 0x00,
	}
	if got, _ := set.Encode(); !bytes.Equal(got, want) {
		t.Errorf("NewSetOf() = %# x, want %# x", got, want)
	}
}

func TestNewSet(t *testing.T) {
	seq, _ := NewSequence()
	set, err := NewSet(seq, NewOctetString([]byte{0x01}), NewBoolean(true), New(ContextSpecific(0, false), nil))
	if err != nil {
		t.Fatalf("NewSet() error = %v, want nil", err)
	}
	elems, err := set.Set()
	if err != nil {
		t.Fatalf("Set() error = %v, want nil", err)
	}
	var tags []string
	for _, e := range elems {
		tags = append(tags, e.Tag().TypeName())
	}
	if got, want := strings.Join(tags, ","), "BOOLEAN,OCTET STRING,SEQUENCE,[0]"; got != want {
		t.Errorf("NewSet() order = %s, want %s", got, want)
	}
}

func TestNewExplicit(t *testing.T) {
	v, err := NewExplicit(ContextSpecific(0, false), NewBoolean(true))
	if err != nil {
		t.Fatalf("NewExplicit() error = %v, want nil", err)
	}
	got, _ := v.Encode()
	if want := []byte{0xa0, 0x03, 0x01, 0x01, 0xff}; !bytes.Equal(got, want) {
		t.Errorf("NewExplicit() = %# x, want %# x", got, want)
	}
	inner, err := v.Explicit(ContextSpecific(0, true))
	if err != nil || !inner.Equal(NewBoolean(true)) {
		t.Errorf("Explicit() = %v, %v, want BOOLEAN, nil", inner, err)
	}
}

func TestValue_WriteTo(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewNull().WriteTo(&buf)
	if err != nil || n != 2 {
		t.Fatalf("WriteTo() = %d, %v, want 2, nil", n, err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x05, 0x00}) {
		t.Errorf("WriteTo() wrote %# x, want 05 00", buf.Bytes())
	}
}

func TestValue_Append(t *testing.T) {
	dst := []byte{0xde, 0xad}
	got, err := NewBoolean(false).Append(dst)
	if err != nil {
		t.Fatalf("Append() error = %v, want nil", err)
	}
	if want := []byte{0xde, 0xad, 0x01, 0x01, 0x00}; !bytes.Equal(got, want) {
		t.Errorf("Append() = %# x, want %# x", got, want)
	}
}
