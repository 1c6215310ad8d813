// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"codello.dev/der"
)

// A node is the printable form of a single DER value.
type node struct {
	Tag      string `json:"tag"`
	Type     string `json:"type"`
	Length   int    `json:"length"`
	Value    string `json:"value,omitempty"`
	Raw      bool   `json:"raw,omitempty"`
	Text     bool   `json:"-"`
	Elements []node `json:"elements,omitempty"`
}

// buildNode converts v into a node tree. If strict is true the content of all
// values is validated using [der.Value.Content] and the first error is
// returned. Otherwise values whose content is invalid are printed as hex.
func buildNode(v der.Value, strict bool) (node, error) {
	if strict {
		c, err := v.Content()
		if err != nil {
			return node{}, err
		}
		return contentNode(v, c), nil
	}
	return lenientNode(v, 0)
}

// lenientNode walks constructed values itself so that an invalid element does
// not hide its siblings.
func lenientNode(v der.Value, depth int) (node, error) {
	n := node{Tag: v.Tag().String(), Type: v.Tag().TypeName(), Length: v.Len()}
	if !v.Tag().IsConstructed() {
		c, err := v.Content()
		if err != nil {
			n.Value, n.Raw = hex.EncodeToString(v.Data()), true
			return n, nil
		}
		return contentNode(v, c), nil
	}
	if depth >= der.MaxDepth {
		return node{}, fmt.Errorf("%v: nesting too deep", v.Tag())
	}
	s, err := v.Stream()
	if err != nil {
		return node{}, err
	}
	for e, err := range s.All() {
		if err != nil {
			return node{}, err
		}
		en, err := lenientNode(e, depth+1)
		if err != nil {
			return node{}, err
		}
		n.Elements = append(n.Elements, en)
	}
	return n, nil
}

// contentNode converts the decoded content c of v.
func contentNode(v der.Value, c der.Content) node {
	n := node{Tag: v.Tag().String(), Type: v.Tag().TypeName(), Length: v.Len()}
	switch c := c.(type) {
	case der.Boolean:
		n.Value = strconv.FormatBool(bool(c))
	case der.Integer:
		if i, err := v.SignedInteger(); err == nil {
			n.Value = i.String()
		} else {
			n.Value = der.BigInt(c).String()
		}
	case der.BitString:
		n.Value = c.String()
	case der.OctetString:
		n.Value = hex.EncodeToString(c)
	case der.Null:
	case der.ObjectIdentifier:
		n.Value = c.String()
	case der.Enumerated:
		n.Value = strconv.Itoa(int(c))
	case der.String:
		n.Value, n.Text = c.Text, true
	case der.UTCTime:
		n.Value = time.Time(c).Format(time.RFC3339)
	case der.GeneralizedTime:
		n.Value = time.Time(c).Format(time.RFC3339Nano)
	case der.Constructed:
		s, _ := v.Stream()
		i := 0
		for e, err := range s.All() {
			if err != nil || i >= len(c.Elements) {
				break
			}
			n.Elements = append(n.Elements, contentNode(e, c.Elements[i]))
			i++
		}
	case der.Raw:
		n.Value, n.Raw = hex.EncodeToString(c.Data()), true
	}
	return n
}

// writeText writes n as an indented tree.
func writeText(w io.Writer, n node, indent int) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", indent))
	b.WriteString(n.Type)
	switch {
	case n.Elements != nil || strings.HasSuffix(n.Tag, "/c"):
		fmt.Fprintf(&b, " (%d elements)", len(n.Elements))
	case n.Raw:
		fmt.Fprintf(&b, " [%d bytes] %s", n.Length, n.Value)
	case n.Text:
		b.WriteString(" " + strconv.Quote(n.Value))
	case n.Value != "":
		b.WriteString(" " + n.Value)
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	for _, e := range n.Elements {
		if err := writeText(w, e, indent+1); err != nil {
			return err
		}
	}
	return nil
}
