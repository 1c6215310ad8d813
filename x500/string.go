// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package x500

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	ldap "github.com/go-ldap/ldap/v3"

	"codello.dev/der"
	"codello.dev/der/charset"
)

// Object identifiers of well-known attribute types.
var (
	OIDCommonName         = der.ObjectIdentifier{2, 5, 4, 3}
	OIDSerialNumber       = der.ObjectIdentifier{2, 5, 4, 5}
	OIDCountry            = der.ObjectIdentifier{2, 5, 4, 6}
	OIDLocality           = der.ObjectIdentifier{2, 5, 4, 7}
	OIDProvince           = der.ObjectIdentifier{2, 5, 4, 8}
	OIDStreetAddress      = der.ObjectIdentifier{2, 5, 4, 9}
	OIDOrganization       = der.ObjectIdentifier{2, 5, 4, 10}
	OIDOrganizationalUnit = der.ObjectIdentifier{2, 5, 4, 11}
	OIDUserID             = der.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 1}
	OIDDomainComponent    = der.ObjectIdentifier{0, 9, 2342, 19200300, 100, 1, 25}
	OIDEmailAddress       = der.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

// attributeType describes how values of a known attribute type are written.
type attributeType struct {
	keyword string
	oid     der.ObjectIdentifier
	tag     der.Tag // string type of values parsed from a DN, 0 for automatic
}

var attributeTypes = []attributeType{
	{"CN", OIDCommonName, 0},
	{"SERIALNUMBER", OIDSerialNumber, der.TagPrintableString},
	{"C", OIDCountry, der.TagPrintableString},
	{"L", OIDLocality, 0},
	{"ST", OIDProvince, 0},
	{"STREET", OIDStreetAddress, 0},
	{"O", OIDOrganization, 0},
	{"OU", OIDOrganizationalUnit, 0},
	{"UID", OIDUserID, 0},
	{"DC", OIDDomainComponent, der.TagIA5String},
	{"E", OIDEmailAddress, der.TagIA5String},
}

// keywordAliases maps alternative keywords to the canonical ones.
var keywordAliases = map[string]string{
	"EMAILADDRESS": "E",
	"S":            "ST",
}

func lookupKeyword(keyword string) (attributeType, bool) {
	keyword = strings.ToUpper(keyword)
	if k, ok := keywordAliases[keyword]; ok {
		keyword = k
	}
	i := slices.IndexFunc(attributeTypes, func(t attributeType) bool { return t.keyword == keyword })
	if i < 0 {
		return attributeType{}, false
	}
	return attributeTypes[i], true
}

func lookupOID(oid der.ObjectIdentifier) (attributeType, bool) {
	i := slices.IndexFunc(attributeTypes, func(t attributeType) bool { return t.oid.Equal(oid) })
	if i < 0 {
		return attributeType{}, false
	}
	return attributeTypes[i], true
}

// String returns the RFC 4514 representation of n. The RDNs are written in
// reverse order, the attributes of a multi-valued RDN are joined by "+".
// Attributes of a known type with a string value are written as escaped text.
// All other attributes use the dotted object identifier or the hex encoding of
// the DER value prefixed by "#".
func (n Name) String() string {
	var b strings.Builder
	for i := len(n) - 1; i >= 0; i-- {
		if i < len(n)-1 {
			b.WriteByte(',')
		}
		for j, atv := range n[i] {
			if j > 0 {
				b.WriteByte('+')
			}
			b.WriteString(atv.String())
		}
	}
	return b.String()
}

// String returns the RFC 4514 representation of a.
func (a AttributeTypeAndValue) String() string {
	if t, ok := lookupOID(a.Type); ok && a.Value.IsString() {
		if s, err := a.Value.AsString(); err == nil {
			return t.keyword + "=" + escapeValue(s)
		}
	}
	var name string
	if t, ok := lookupOID(a.Type); ok {
		name = t.keyword
	} else {
		name = a.Type.String()
	}
	enc, err := a.Value.Encode()
	if err != nil {
		return name + "=#"
	}
	return name + "=#" + hex.EncodeToString(enc)
}

// escapeValue escapes s as an attribute value (RFC 4514, Section 2.4).
func escapeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '+' || c == ',' || c == ';' || c == '<' || c == '>' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == 0:
			b.WriteString(`\00`)
		case i == 0 && (c == ' ' || c == '#'):
			b.WriteByte('\\')
			b.WriteByte(c)
		case i == len(s)-1 && c == ' ':
			b.WriteString(`\ `)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ParseDN parses the RFC 4514 string representation of a distinguished name.
// Attribute types are either one of the keywords CN, SERIALNUMBER, C, L, ST,
// STREET, O, OU, UID, DC and E or a dotted object identifier.
//
// The string type of each value is chosen by the attribute type: C and
// SERIALNUMBER are PrintableString, DC and E are IA5String. Other values are
// PrintableString if all characters are representable and UTF8String
// otherwise. Values given in the "#" hex form are decoded by the DN parser and
// re-encoded following the same rules.
func ParseDN(s string) (Name, error) {
	dn, err := ldap.ParseDN(s)
	if err != nil {
		return nil, fmt.Errorf("x500: invalid distinguished name %q: %w", s, err)
	}
	name := make(Name, len(dn.RDNs))
	for i, r := range dn.RDNs {
		rdn := make(RDN, 0, len(r.Attributes))
		for _, a := range r.Attributes {
			atv, err := newAttribute(a.Type, a.Value)
			if err != nil {
				return nil, fmt.Errorf("x500: invalid distinguished name %q: %w", s, err)
			}
			rdn = append(rdn, atv)
		}
		name[len(dn.RDNs)-1-i] = rdn
	}
	return name, nil
}

// newAttribute converts a parsed attribute type and value.
func newAttribute(typ, value string) (AttributeTypeAndValue, error) {
	t, ok := lookupKeyword(typ)
	if !ok {
		oid, err := der.ParseObjectIdentifier(strings.TrimPrefix(strings.ToUpper(typ), "OID."))
		if err != nil {
			return AttributeTypeAndValue{}, fmt.Errorf("unknown attribute type %q", typ)
		}
		t, _ = lookupOID(oid)
		t.oid = oid
	}
	tag := t.tag
	if tag == der.TagIA5String && !charset.IsIA5(value) {
		return AttributeTypeAndValue{}, fmt.Errorf("value of %s is not an IA5String: %q", typ, value)
	}
	if tag == 0 {
		tag = der.TagUTF8String
		if charset.IsPrintable(value) {
			tag = der.TagPrintableString
		}
	}
	v, err := der.NewString(nil, tag, value)
	if err != nil {
		return AttributeTypeAndValue{}, fmt.Errorf("value of %s: %w", typ, err)
	}
	return AttributeTypeAndValue{Type: t.oid, Value: v}, nil
}
