// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"fmt"
	"testing"
)

func ExampleTag_String() {
	t1 := Application(17, false)
	t2 := ContextSpecific(8, true)
	t3 := TagInteger
	fmt.Println(t1.String())
	fmt.Println(t2.String())
	fmt.Println(t3.String())
	// Output:
	// [APPLICATION 17]
	// [8]/c
	// [UNIVERSAL 2]
}

func TestTag(t *testing.T) {
	tests := map[string]struct {
		tag         Tag
		class       Class
		number      int
		constructed bool
		typeName    string
	}{
		"Integer":     {TagInteger, ClassUniversal, 2, false, "INTEGER"},
		"Sequence":    {TagSequence, ClassUniversal, 16, true, "SEQUENCE"},
		"Set":         {TagSet, ClassUniversal, 17, true, "SET"},
		"Printable":   {TagPrintableString, ClassUniversal, 19, false, "PrintableString"},
		"Context":     {ContextSpecific(3, false), ClassContextSpecific, 3, false, "[3]"},
		"Application": {Application(1, true), ClassApplication, 1, true, "[APPLICATION 1]/c"},
		"Private":     {NewTag(ClassPrivate, 30, false), ClassPrivate, 30, false, "[PRIVATE 30]"},
		"Unknown":     {Tag(0x07), ClassUniversal, 7, false, "[UNIVERSAL 7]"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.tag.Class(); got != tt.class {
				t.Errorf("Tag.Class() = %v, want %v", got, tt.class)
			}
			if got := tt.tag.Number(); got != tt.number {
				t.Errorf("Tag.Number() = %v, want %v", got, tt.number)
			}
			if got := tt.tag.IsConstructed(); got != tt.constructed {
				t.Errorf("Tag.IsConstructed() = %v, want %v", got, tt.constructed)
			}
			if got := tt.tag.TypeName(); got != tt.typeName {
				t.Errorf("Tag.TypeName() = %v, want %v", got, tt.typeName)
			}
		})
	}
}

func TestTag_Constructed(t *testing.T) {
	tag := ContextSpecific(0, false)
	if got := tag.Constructed(); got != 0xa0 {
		t.Errorf("Tag.Constructed() = %#x, want 0xa0", byte(got))
	}
	if got := tag.Constructed().Primitive(); got != tag {
		t.Errorf("Tag.Primitive() = %v, want %v", got, tag)
	}
	if !tag.IsContextSpecificWith(0) || tag.IsContextSpecificWith(1) {
		t.Errorf("Tag.IsContextSpecificWith() mismatch for %v", tag)
	}
}

func TestNewTag_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewTag(ClassUniversal, 31, false) did not panic")
		}
	}()
	NewTag(ClassUniversal, 31, false)
}
