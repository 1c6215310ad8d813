// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package der implements a codec for single ASN.1 values encoded using the
// Distinguished Encoding Rules (DER) as defined in [Rec. ITU-T X.690].
// See also “[A Layman's Guide to a Subset of ASN.1, BER, and DER]”.
//
// # Values
//
// A [Value] is one decoded tag-length-value (TLV) unit. It consists of a single
// identifier byte (the [Tag]) and a view onto its content bytes. Values are
// created by [Parse] (exactly one TLV in a byte slice), by a [Stream] (a
// sequence of TLVs in a byte slice), by a [Decoder] (a sequence of TLVs read
// from an [io.Reader]), or explicitly through one of the New functions when
// assembling an encoding.
//
// Typed accessors such as [Value.Integer] or [Value.PrintableString] validate
// the tag before they decode the content. They never modify the value, so they
// can be called repeatedly. [Value.Content] decodes a value and all of its
// children eagerly into a [Content] tree.
//
// # Limitations
//
// Only the low-tag-number form is supported: a tag is always a single byte. Only
// the definite-length form with at most 4 length bytes is accepted. The
// indefinite-length form of BER is always rejected.
//
// INTEGER values are exposed as [BigInt], an unsigned magnitude. The content of
// an INTEGER is not interpreted as two's complement by [Value.Integer]. Use
// [Value.SignedInteger] for the signed interpretation defined by ASN.1.
//
// [Rec. ITU-T X.690]: https://www.itu.int/rec/T-REC-X.690
// [A Layman's Guide to a Subset of ASN.1, BER, and DER]: http://luca.ntop.org/Teaching/Appunti/asn1.html
package der

import (
	"strconv"
	"strings"
)

// Tag is the identifier byte of a DER encoding. It consists of the class (two
// high bits), the constructed bit (0x20) and the tag number (five low bits).
// For details, see Section 8 of Rec. ITU-T X.680 and Section 8.1.2 of Rec.
// ITU-T X.690.
type Tag byte

// Class holds the class part of an ASN.1 tag. The class acts as a namespace for
// the tag number. A Class value is an unsigned 2-bit integer. Class values
// whose value exceeds 2 bits are invalid.
//
//go:generate stringer -type=Class -trimprefix=Class
type Class uint8

// IsValid reports whether c is a valid Class value.
func (c Class) IsValid() bool {
	return c <= 3
}

// Predefined [Class] constants. These are all the possible values that can be
// encoded in the [Class] type.
const (
	ClassUniversal Class = iota
	ClassApplication
	ClassContextSpecific
	ClassPrivate
)

const (
	classMask       = 0xc0
	constructedBit  = 0x20
	tagNumberMask   = 0x1f
	highTagNumber   = 0x1f
	maxLowTagNumber = 30
)

// Identifier bytes of the universal types supported by this package. These
// assignments are defined in Rec. ITU-T X.680, Section 8, Table 1. [TagSequence]
// and [TagSet] include the constructed bit.
const (
	TagBoolean         Tag = 0x01
	TagInteger         Tag = 0x02
	TagBitString       Tag = 0x03
	TagOctetString     Tag = 0x04
	TagNull            Tag = 0x05
	TagOID             Tag = 0x06
	TagEnumerated      Tag = 0x0a
	TagUTF8String      Tag = 0x0c
	TagSequence        Tag = 0x30
	TagSet             Tag = 0x31
	TagNumericString   Tag = 0x12
	TagPrintableString Tag = 0x13
	TagT61String       Tag = 0x14
	TagTeletexString       = TagT61String
	TagIA5String       Tag = 0x16
	TagUTCTime         Tag = 0x17
	TagGeneralizedTime Tag = 0x18
	TagVisibleString   Tag = 0x1a
	TagGeneralString   Tag = 0x1b
	TagUniversalString Tag = 0x1c
	TagBMPString       Tag = 0x1e
)

// NewTag builds a tag from its components. It panics if number does not fit
// into the low-tag-number form.
func NewTag(class Class, number int, constructed bool) Tag {
	if number < 0 || number > maxLowTagNumber || !class.IsValid() {
		panic("der: tag out of range")
	}
	t := Tag(class)<<6 | Tag(number)
	if constructed {
		t |= constructedBit
	}
	return t
}

// ContextSpecific returns the context-specific tag [number], as used for
// IMPLICIT and EXPLICIT tagging.
func ContextSpecific(number int, constructed bool) Tag {
	return NewTag(ClassContextSpecific, number, constructed)
}

// Application returns the application tag [APPLICATION number].
func Application(number int, constructed bool) Tag {
	return NewTag(ClassApplication, number, constructed)
}

// Class returns the class of t.
func (t Tag) Class() Class { return Class(t >> 6) }

// Number returns the tag number of t.
func (t Tag) Number() int { return int(t & tagNumberMask) }

// IsUniversal reports whether t belongs to the UNIVERSAL class.
func (t Tag) IsUniversal() bool { return t&classMask == 0x00 }

// IsApplication reports whether t belongs to the APPLICATION class.
func (t Tag) IsApplication() bool { return t&classMask == 0x40 }

// IsContextSpecific reports whether t is a context-specific tag.
func (t Tag) IsContextSpecific() bool { return t&classMask == 0x80 }

// IsPrivate reports whether t belongs to the PRIVATE class.
func (t Tag) IsPrivate() bool { return t&classMask == 0xc0 }

// IsConstructed reports whether the constructed bit of t is set.
func (t Tag) IsConstructed() bool { return t&constructedBit != 0 }

// IsContextSpecificWith reports whether t is the context-specific tag with the
// given number, regardless of the constructed bit.
func (t Tag) IsContextSpecificWith(number int) bool {
	return t.IsContextSpecific() && t.Number() == number
}

// Constructed returns t with the constructed bit set.
func (t Tag) Constructed() Tag { return t | constructedBit }

// Primitive returns t with the constructed bit cleared.
func (t Tag) Primitive() Tag { return t &^ constructedBit }

// String returns a string representation of t in a format similar to the one
// used in ASN.1 notation. The tag number is enclosed by square brackets and
// prefixed with the class used. To avoid ambiguity the UNIVERSAL word is used
// for universal tags, although this is not valid ASN.1 syntax. Constructed
// tags are suffixed with "/c".
func (t Tag) String() string {
	var s string
	if t.IsContextSpecific() {
		s = "[" + strconv.Itoa(t.Number()) + "]"
	} else {
		s = "[" + strings.ToUpper(t.Class().String()) + " " + strconv.Itoa(t.Number()) + "]"
	}
	if t.IsConstructed() {
		s += "/c"
	}
	return s
}

// universalNames maps universal tag numbers to their ASN.1 type names.
var universalNames = [...]string{
	1:  "BOOLEAN",
	2:  "INTEGER",
	3:  "BIT STRING",
	4:  "OCTET STRING",
	5:  "NULL",
	6:  "OBJECT IDENTIFIER",
	10: "ENUMERATED",
	12: "UTF8String",
	16: "SEQUENCE",
	17: "SET",
	18: "NumericString",
	19: "PrintableString",
	20: "T61String",
	22: "IA5String",
	23: "UTCTime",
	24: "GeneralizedTime",
	26: "VisibleString",
	27: "GeneralString",
	28: "UniversalString",
	30: "BMPString",
}

// TypeName returns the ASN.1 type name of a universal tag such as "INTEGER" or
// "SEQUENCE". For other tags TypeName returns t.String().
func (t Tag) TypeName() string {
	if t.IsUniversal() && t.Number() < len(universalNames) && universalNames[t.Number()] != "" {
		return universalNames[t.Number()]
	}
	return t.String()
}
