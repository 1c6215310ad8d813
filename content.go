// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package der

import "errors"

// MaxDepth is the maximum nesting of constructed values decoded by
// [Value.Content].
const MaxDepth = 64

// Content is the decoded content of a DER value. It is one of the following
// types:
//
//	Boolean           BOOLEAN
//	Integer           INTEGER
//	BitString         BIT STRING
//	OctetString       OCTET STRING
//	Null              NULL
//	ObjectIdentifier  OBJECT IDENTIFIER
//	Enumerated        ENUMERATED
//	String            any tag with a registered charset
//	UTCTime           UTCTime
//	GeneralizedTime   GeneralizedTime
//	Constructed       any constructed value, including SEQUENCE and SET
//	Raw               any other primitive value
type Content interface {
	content()
}

type (
	// Boolean is the content of a BOOLEAN value.
	Boolean bool
	// Integer is the content of an INTEGER value.
	Integer BigInt
	// OctetString is the content of an OCTET STRING value.
	OctetString []byte
	// Null is the content of a NULL value.
	Null struct{}
	// Enumerated is the content of an ENUMERATED value.
	Enumerated int32
)

// String is the content of a character string value.
type String struct {
	Tag  Tag
	Text string
}

// Constructed is the content of a constructed value. Elements holds the decoded
// content of each element in encoding order.
type Constructed struct {
	Tag      Tag
	Elements []Content
}

// Raw is the content of a primitive value whose type is unknown, for example
// an implicitly tagged value. It holds the value itself.
type Raw struct {
	Value
}

func (Boolean) content()          {}
func (Integer) content()          {}
func (BitString) content()        {}
func (OctetString) content()      {}
func (Null) content()             {}
func (ObjectIdentifier) content() {}
func (Enumerated) content()       {}
func (String) content()           {}
func (UTCTime) content()          {}
func (GeneralizedTime) content()  {}
func (Constructed) content()      {}
func (Raw) content()              {}

// Content decodes v and, if v is constructed, all of its descendants into a
// [Content] tree. Unlike the typed accessors the whole tree is validated
// eagerly. Nesting deeper than [MaxDepth] fails with [InvalidContent].
func (v Value) Content() (Content, error) {
	return v.decodeContent(0)
}

func (v Value) decodeContent(depth int) (Content, error) {
	if v.tag.IsConstructed() {
		if depth >= MaxDepth {
			return nil, &Error{Kind: InvalidContent, Tag: v.tag, Err: errors.New("nesting too deep")}
		}
		s, err := v.Stream()
		if err != nil {
			return nil, err
		}
		c := Constructed{Tag: v.tag}
		for s.More() {
			start := s.Offset()
			e, err := s.Next()
			if err != nil {
				return nil, err
			}
			ec, err := e.decodeContent(depth + 1)
			if err != nil {
				return nil, at(err, e.tag, start)
			}
			c.Elements = append(c.Elements, ec)
		}
		return c, nil
	}

	switch v.tag {
	case TagBoolean:
		b, err := v.Boolean()
		return nilOnError(Boolean(b), err)
	case TagInteger:
		i, err := v.Integer()
		return nilOnError(Integer(i), err)
	case TagBitString:
		return nilOnError(v.UnalignedBitString())
	case TagOctetString:
		b, err := v.OctetString()
		return nilOnError(OctetString(b), err)
	case TagNull:
		return nilOnError(Null{}, v.Null())
	case TagOID:
		return nilOnError(v.ObjectIdentifier())
	case TagEnumerated:
		e, err := v.Enumerated()
		return nilOnError(Enumerated(e), err)
	case TagUTCTime:
		return nilOnError(v.UTCTime())
	case TagGeneralizedTime:
		return nilOnError(v.GeneralizedTime())
	}
	if v.IsString() {
		s, err := v.AsString()
		if err != nil {
			return nil, err
		}
		return String{Tag: v.tag, Text: s}, nil
	}
	return Raw{v}, nil
}

// nilOnError converts the result of an accessor into a Content. On error the
// Content is nil.
func nilOnError[T Content](c T, err error) (Content, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
