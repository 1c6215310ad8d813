// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func TestValue_Content(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want Content
	}{
		"Boolean":     {[]byte{0x01, 0x01, 0xff}, Boolean(true)},
		"Integer":     {[]byte{0x02, 0x01, 0x05}, Integer(BigIntFromUint32(5))},
		"OctetString": {[]byte{0x04, 0x01, 0xaa}, OctetString{0xaa}},
		"Null":        {[]byte{0x05, 0x00}, Null{}},
		"OID":         {[]byte{0x06, 0x03, 0x55, 0x04, 0x03}, ObjectIdentifier{2, 5, 4, 3}},
		"Enumerated":  {[]byte{0x0a, 0x01, 0x02}, Enumerated(2)},
		"BitString":   {[]byte{0x03, 0x02, 0x04, 0xf0}, BitString{[]byte{0xf0}, 4}},
		"String":      {[]byte{0x0c, 0x02, 'h', 'i'}, String{TagUTF8String, "hi"}},
		"Raw":         {[]byte{0x80, 0x01, 0x07}, Raw{New(ContextSpecific(0, false), []byte{0x07})}},
		"Sequence":    {[]byte{0x30, 0x08, 0x02, 0x01, 0x01, 0x31, 0x03, 0x05, 0x01, 0x00}, nil},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := mustParse(t, tt.data).Content()
			if tt.want == nil {
				// invalid NULL nested in a SET
				if !errors.Is(err, InvalidLength) {
					t.Fatalf("Content() error = %v, want %v", err, InvalidLength)
				}
				return
			}
			if err != nil {
				t.Fatalf("Content() error = %v, want nil", err)
			}
			if r, ok := tt.want.(Raw); ok {
				g, ok := got.(Raw)
				if !ok || !g.Equal(r.Value) {
					t.Errorf("Content() = %#v, want %#v", got, tt.want)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Content() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValue_Content_Tree(t *testing.T) {
	// SEQUENCE { INTEGER 1, SET { PrintableString "A" }, [0] { NULL } }
	data := []byte{
		0x30, 0x0c,
		0x02, 0x01, 0x01,
		0x31, 0x03, 0x13, 0x01, 'A',
		0xa0, 0x02, 0x05, 0x00,
	}
	got, err := mustParse(t, data).Content()
	if err != nil {
		t.Fatalf("Content() error = %v, want nil", err)
	}
	want := Constructed{Tag: TagSequence, Elements: []Content{
		Integer(BigIntFromUint32(1)),
		Constructed{Tag: TagSet, Elements: []Content{String{TagPrintableString, "A"}}},
		Constructed{Tag: ContextSpecific(0, true), Elements: []Content{Null{}}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Content() = %#v, want %#v", got, want)
	}
}

func TestValue_Content_ErrorOffset(t *testing.T) {
	// the second element is a BOOLEAN with 2 content bytes
	data := []byte{0x30, 0x06, 0x05, 0x00, 0x01, 0x02, 0x00, 0x00}
	_, err := mustParse(t, data).Content()
	var e *Error
	if !errors.As(err, &e) || e.Kind != InvalidLength {
		t.Fatalf("Content() error = %v, want %v", err, InvalidLength)
	}
	if e.Offset != 2 || e.Tag != TagBoolean {
		t.Errorf("Content() error at %v offset %d, want BOOLEAN offset 2", e.Tag, e.Offset)
	}
}

func TestValue_Content_Depth(t *testing.T) {
	nested := func(depth int) []byte {
		v := NewNull()
		for range depth {
			var err error
			if v, err = NewSequence(v); err != nil {
				t.Fatalf("NewSequence() error = %v, want nil", err)
			}
		}
		b, err := v.Encode()
		if err != nil {
			t.Fatalf("Encode() error = %v, want nil", err)
		}
		return b
	}

	if _, err := mustParse(t, nested(MaxDepth)).Content(); err != nil {
		t.Errorf("Content() at depth %d error = %v, want nil", MaxDepth, err)
	}
	if _, err := mustParse(t, nested(MaxDepth+1)).Content(); !errors.Is(err, InvalidContent) {
		t.Errorf("Content() at depth %d error = %v, want %v", MaxDepth+1, err, InvalidContent)
	}
}

func TestValue_Content_Charsets(t *testing.T) {
	got, err := mustParse(t, []byte{0x13, 0x01, '@'}).Content()
	if !errors.Is(err, UnmappableCharacter) || got != nil {
		t.Errorf("Content() = %v, %v, want nil, %v", got, err, UnmappableCharacter)
	}
	// NumericString has no codec in the default registry
	got, err = mustParse(t, []byte{0x12, 0x01, '1'}).Content()
	if err != nil {
		t.Fatalf("Content() error = %v, want nil", err)
	}
	if r, ok := got.(Raw); !ok || !bytes.Equal(r.Data(), []byte{'1'}) {
		t.Errorf("Content() = %#v, want Raw", got)
	}
}
