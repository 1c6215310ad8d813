// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/letsencrypt/validator/v10"
	"gopkg.in/yaml.v3"

	"codello.dev/der"
	"codello.dev/der/charset"
)

// Config is the configuration file of derdump. Command line flags take
// precedence over the values in the file.
type Config struct {
	// Format selects the output format: "text" for an indented tree, "json"
	// for one JSON object per input file.
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	// PEM causes inputs to be read as PEM files. Every PEM block is decoded as
	// a sequence of DER values.
	PEM bool `yaml:"pem"`
	// Typed makes invalid content of a value fail the input instead of being
	// printed as raw bytes.
	Typed bool `yaml:"typed"`
	// MaxLength limits the content length of a single top-level value. Zero
	// means no limit.
	MaxLength int `yaml:"maxLength" validate:"min=0"`
	// Parallelism is the number of inputs decoded concurrently. Zero means one
	// input at a time.
	Parallelism int `yaml:"parallelism" validate:"min=0,max=256"`

	Log LogConfig `yaml:"log"`

	// Charsets maps string types to codec names and replaces the default
	// codecs for these types. Keys are ASN.1 type names such as
	// "PrintableString" or tag bytes such as "0x12". Values are names accepted
	// by charset.ByName.
	Charsets map[string]string `yaml:"charsets" validate:"dive,keys,required,endkeys,required"`
}

// LogConfig configures the logger. The level meanings follow syslog:
//
//	-1: suppress all output
//	0: default, which is 4
//	3: log errors
//	4: log warnings and above
//	6: log info and above
//	7: log debug and above
type LogConfig struct {
	Level int `yaml:"level" validate:"min=-1,max=7"`
	// TextFormat causes logs to be written with slog's TextHandler instead of
	// the JSONHandler.
	TextFormat bool `yaml:"textFormat"`
}

// loadConfig reads the configuration file at path. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return parseConfig(b)
}

func parseConfig(b []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return c, nil
}

// registry builds the charset registry described by c.Charsets: the default
// codecs with the configured tags replaced.
func (c Config) registry() (*charset.Registry, error) {
	overrides := make(map[byte]string, len(c.Charsets))
	for name, codec := range c.Charsets {
		tag, err := parseTag(name)
		if err != nil {
			return nil, err
		}
		if _, ok := overrides[tag]; ok {
			return nil, fmt.Errorf("charset for tag %v configured twice", der.Tag(tag))
		}
		overrides[tag] = codec
	}

	reg := charset.NewRegistry()
	def := charset.Default()
	for _, tag := range def.Tags() {
		if _, ok := overrides[tag]; ok {
			continue
		}
		enc, _ := def.Lookup(tag)
		if err := reg.Register(tag, enc); err != nil {
			return nil, err
		}
	}
	for tag, name := range overrides {
		enc, ok := charset.ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown charset %q for tag %v", name, der.Tag(tag))
		}
		if err := reg.Register(tag, enc); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// parseTag parses a universal type name such as "IA5String" or a tag byte
// such as "0x16".
func parseTag(s string) (byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid tag %q", s)
		}
		return byte(n), nil
	}
	for n := range 31 {
		t := der.Tag(n)
		if strings.EqualFold(t.TypeName(), s) {
			return byte(t), nil
		}
	}
	return 0, fmt.Errorf("unknown type %q", s)
}
