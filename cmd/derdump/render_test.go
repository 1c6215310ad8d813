// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"strings"
	"testing"

	"codello.dev/der"
)

func mustParse(t *testing.T, b []byte) der.Value {
	t.Helper()
	v, err := der.Parse(b)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil", err)
	}
	return v
}

func TestBuildNode(t *testing.T) {
	tests := map[string]struct {
		data []byte
		want node
	}{
		"Boolean":  {[]byte{0x01, 0x01, 0xff}, node{Tag: "[UNIVERSAL 1]", Type: "BOOLEAN", Length: 1, Value: "true"}},
		"Negative": {[]byte{0x02, 0x01, 0x80}, node{Tag: "[UNIVERSAL 2]", Type: "INTEGER", Length: 1, Value: "-128"}},
		"Padded":   {[]byte{0x02, 0x02, 0x00, 0x05}, node{Tag: "[UNIVERSAL 2]", Type: "INTEGER", Length: 2, Value: "5"}},
		"Octets":   {[]byte{0x04, 0x02, 0xca, 0xfe}, node{Tag: "[UNIVERSAL 4]", Type: "OCTET STRING", Length: 2, Value: "cafe"}},
		"Null":     {[]byte{0x05, 0x00}, node{Tag: "[UNIVERSAL 5]", Type: "NULL"}},
		"OID":      {[]byte{0x06, 0x03, 0x55, 0x04, 0x03}, node{Tag: "[UNIVERSAL 6]", Type: "OBJECT IDENTIFIER", Length: 3, Value: "2.5.4.3"}},
		"String":   {[]byte{0x0c, 0x02, 'h', 'i'}, node{Tag: "[UNIVERSAL 12]", Type: "UTF8String", Length: 2, Value: "hi", Text: true}},
		"Time":     {[]byte("\x17\x0d240229110000Z"), node{Tag: "[UNIVERSAL 23]", Type: "UTCTime", Length: 13, Value: "2024-02-29T11:00:00Z"}},
		"Implicit": {[]byte{0x80, 0x01, 0x2a}, node{Tag: "[0]", Type: "[0]", Length: 1, Value: "2a", Raw: true}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			for _, strict := range []bool{false, true} {
				got, err := buildNode(mustParse(t, tc.data), strict)
				if err != nil {
					t.Fatalf("buildNode(%v) error = %v, want nil", strict, err)
				}
				if got.Tag != tc.want.Tag || got.Type != tc.want.Type || got.Length != tc.want.Length ||
					got.Value != tc.want.Value || got.Raw != tc.want.Raw || got.Text != tc.want.Text {
					t.Errorf("buildNode(%v) = %+v, want %+v", strict, got, tc.want)
				}
			}
		})
	}
}

func TestBuildNode_Invalid(t *testing.T) {
	// SEQUENCE { NULL with content, INTEGER 1 }
	v := mustParse(t, []byte{0x30, 0x06, 0x05, 0x01, 0x00, 0x02, 0x01, 0x01})

	got, err := buildNode(v, false)
	if err != nil {
		t.Fatalf("buildNode(false) error = %v, want nil", err)
	}
	if len(got.Elements) != 2 {
		t.Fatalf("buildNode(false) has %d elements, want 2", len(got.Elements))
	}
	if e := got.Elements[0]; !e.Raw || e.Value != "00" {
		t.Errorf("buildNode(false).Elements[0] = %+v, want raw 00", e)
	}
	if e := got.Elements[1]; e.Value != "1" {
		t.Errorf("buildNode(false).Elements[1] = %+v, want INTEGER 1", e)
	}

	_, err = buildNode(v, true)
	if !errors.Is(err, der.InvalidLength) {
		t.Errorf("buildNode(true) error = %v, want %v", err, der.InvalidLength)
	}
}

func TestWriteText(t *testing.T) {
	n := node{Type: "SEQUENCE", Tag: "[UNIVERSAL 16]/c", Elements: []node{
		{Type: "UTF8String", Value: "a\"b", Text: true},
		{Type: "[0]", Length: 2, Value: "0102", Raw: true},
		{Type: "SET", Tag: "[UNIVERSAL 17]/c"},
		{Type: "NULL"},
	}}
	var b strings.Builder
	if err := writeText(&b, n, 0); err != nil {
		t.Fatalf("writeText() error = %v, want nil", err)
	}
	want := "SEQUENCE (4 elements)\n" +
		"  UTF8String \"a\\\"b\"\n" +
		"  [0] [2 bytes] 0102\n" +
		"  SET (0 elements)\n" +
		"  NULL\n"
	if got := b.String(); got != want {
		t.Errorf("writeText() =\n%s\nwant\n%s", got, want)
	}
}
