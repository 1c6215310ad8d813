// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import (
	"bytes"
	"cmp"
	"slices"
)

// LexOrder compares two encodings as unsigned byte strings. The first differing
// byte decides. If one encoding is a prefix of the other, the shorter one sorts
// first. LexOrder is the ordering of the elements of a SET OF in DER (X.690,
// Section 11.6).
//
// The result is -1 if a < b, 0 if a == b and +1 if a > b.
func LexOrder(a, b []byte) int {
	return bytes.Compare(a, b)
}

// TagOrder compares two encodings by their first byte only. The constructed bit
// 0x20 is forced on both sides so that a primitive and a constructed encoding
// with the same class and number compare equal. Empty encodings sort first.
// TagOrder is the ordering of the components of a SET in DER (X.690, Section
// 10.3).
func TagOrder(a, b []byte) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return -1
	case len(b) == 0:
		return +1
	}
	return cmp.Compare(a[0]|constructedBit, b[0]|constructedBit)
}

// SortSetOf sorts encodings in place using [LexOrder].
func SortSetOf(encodings [][]byte) {
	slices.SortFunc(encodings, LexOrder)
}

// SortSet sorts encodings in place using [TagOrder]. Encodings with equal tags
// keep their relative order.
func SortSet(encodings [][]byte) {
	slices.SortStableFunc(encodings, TagOrder)
}
