// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package x500 implements X.500 distinguished names on top of DER values. A
// [Name] is the RDNSequence used in the subject and issuer fields of X.509
// certificates:
//
//	Name ::= CHOICE { rdnSequence RDNSequence }
//	RDNSequence ::= SEQUENCE OF RelativeDistinguishedName
//	RelativeDistinguishedName ::= SET SIZE (1..MAX) OF AttributeTypeAndValue
//	AttributeTypeAndValue ::= SEQUENCE {
//	  type  AttributeType,
//	  value AttributeValue }
//
// Names can be converted from and to their DER encoding and from and to the
// string representation defined in RFC 4514.
package x500

import (
	"errors"
	"fmt"

	"codello.dev/der"
)

// AttributeTypeAndValue is a single attribute of a relative distinguished
// name. Value is kept as a DER value so that attributes of any type survive a
// round trip unchanged.
type AttributeTypeAndValue struct {
	Type  der.ObjectIdentifier
	Value der.Value
}

// An RDN is a relative distinguished name: a set of attributes. Most RDNs hold
// a single attribute.
type RDN []AttributeTypeAndValue

// A Name is a sequence of relative distinguished names, most significant
// first. This is the order of the DER encoding, RFC 4514 strings use the
// reverse order.
type Name []RDN

// ParseNameDER parses the DER encoding of a name.
func ParseNameDER(b []byte) (Name, error) {
	v, err := der.Parse(b)
	if err != nil {
		return nil, err
	}
	return ParseName(v)
}

// ParseName decodes a name from a SEQUENCE value. The attribute values are
// not interpreted. Each RDN must hold at least one attribute.
func ParseName(v der.Value) (Name, error) {
	rdns, err := v.Sequence()
	if err != nil {
		return nil, fmt.Errorf("x500: invalid RDNSequence: %w", err)
	}
	name := make(Name, 0, len(rdns))
	for i, r := range rdns {
		atvs, err := r.Set()
		if err != nil {
			return nil, fmt.Errorf("x500: invalid RDN %d: %w", i, err)
		}
		if len(atvs) == 0 {
			return nil, fmt.Errorf("x500: invalid RDN %d: %w", i, errEmptyRDN)
		}
		rdn := make(RDN, 0, len(atvs))
		for _, a := range atvs {
			atv, err := parseAttribute(a)
			if err != nil {
				return nil, fmt.Errorf("x500: invalid RDN %d: %w", i, err)
			}
			rdn = append(rdn, atv)
		}
		name = append(name, rdn)
	}
	return name, nil
}

var errEmptyRDN = errors.New("empty SET")

func parseAttribute(v der.Value) (AttributeTypeAndValue, error) {
	elems, err := v.Sequence()
	if err != nil {
		return AttributeTypeAndValue{}, err
	}
	if len(elems) != 2 {
		return AttributeTypeAndValue{}, fmt.Errorf("AttributeTypeAndValue has %d elements, want 2", len(elems))
	}
	oid, err := elems[0].ObjectIdentifier()
	if err != nil {
		return AttributeTypeAndValue{}, err
	}
	return AttributeTypeAndValue{Type: oid, Value: elems[1]}, nil
}

// Value encodes n as a SEQUENCE value. The attributes of each RDN are sorted
// by their encodings as required for a SET OF.
func (n Name) Value() (der.Value, error) {
	rdns := make([]der.Value, len(n))
	for i, rdn := range n {
		atvs := make([]der.Value, len(rdn))
		for j, atv := range rdn {
			oid, err := der.NewObjectIdentifier(atv.Type)
			if err != nil {
				return der.Value{}, err
			}
			if atvs[j], err = der.NewSequence(oid, atv.Value); err != nil {
				return der.Value{}, err
			}
		}
		var err error
		if rdns[i], err = der.NewSetOf(atvs...); err != nil {
			return der.Value{}, err
		}
	}
	return der.NewSequence(rdns...)
}

// Encode returns the DER encoding of n.
func (n Name) Encode() ([]byte, error) {
	v, err := n.Value()
	if err != nil {
		return nil, err
	}
	return v.Encode()
}

// Lookup returns the value of the first attribute with the given type.
func (n Name) Lookup(t der.ObjectIdentifier) (der.Value, bool) {
	for _, rdn := range n {
		for _, atv := range rdn {
			if atv.Type.Equal(t) {
				return atv.Value, true
			}
		}
	}
	return der.Value{}, false
}
