// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command derdump prints the structure of DER encoded files.
//
// Usage:
//
//	derdump [flags] file...
//
// A file name of "-" reads from standard input. Files are decoded concurrently
// but printed in the order given on the command line. The flags are:
//
//	-config path
//		YAML configuration file. Flags override values in the file.
//	-format text|json
//		Output format. The default is text.
//	-pem
//		Read the inputs as PEM files.
//	-typed
//		Fail on values with invalid content instead of printing raw bytes.
//	-parallel n
//		Number of files decoded concurrently.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"

	"codello.dev/der"
	"codello.dev/der/charset"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// input is a single file given on the command line and its decoded values.
type input struct {
	name   string
	values []der.Value
	nodes  []node
	err    error
}

// run executes derdump with the given arguments and returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("derdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "File path to the YAML configuration file")
	format := fs.String("format", "", "Output format: text or json")
	pemInput := fs.Bool("pem", false, "Read the inputs as PEM files")
	typed := fs.Bool("typed", false, "Fail on values with invalid content")
	parallel := fs.Int("parallel", 0, "Number of files decoded concurrently")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var conf Config
	if *configPath != "" {
		var err error
		if conf, err = loadConfig(*configPath); err != nil {
			fmt.Fprintf(stderr, "derdump: %v\n", err)
			return 2
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			conf.Format = *format
		case "pem":
			conf.PEM = *pemInput
		case "typed":
			conf.Typed = *typed
		case "parallel":
			conf.Parallelism = *parallel
		}
	})
	if conf.Format == "" {
		conf.Format = "text"
	}
	if conf.Format != "text" && conf.Format != "json" {
		fmt.Fprintf(stderr, "derdump: unknown format %q\n", conf.Format)
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: derdump [flags] file...")
		return 2
	}
	if i := slices.Index(fs.Args(), "-"); i >= 0 && slices.Contains(fs.Args()[i+1:], "-") {
		fmt.Fprintln(stderr, "derdump: standard input given more than once")
		return 2
	}

	logger := newLogger(conf.Log, stderr)
	reg, err := conf.registry()
	if err != nil {
		logger.Error("invalid charset configuration", slog.Any("error", err))
		return 2
	}

	inputs := make([]input, fs.NArg())
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(conf.Parallelism, 1))
	for i, name := range fs.Args() {
		inputs[i].name = name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := &inputs[i]
			logger.Debug("decoding input", slog.String("file", name))
			in.values, in.err = readInput(name, stdin, conf, reg)
			for _, v := range in.values {
				n, err := buildNode(v, conf.Typed)
				if err != nil {
					in.err = err
					break
				}
				in.nodes = append(in.nodes, n)
			}
			if in.err != nil {
				logger.Warn("decoding failed", slog.String("file", name), slog.Any("error", in.err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("decoding aborted", slog.Any("error", err))
		return 1
	}

	code := 0
	for _, in := range inputs {
		if err := write(stdout, conf.Format, in); err != nil {
			logger.Error("writing output", slog.Any("error", err))
			return 1
		}
		if in.err != nil {
			code = 1
		}
	}
	return code
}

// readInput reads all top-level values of the named file.
func readInput(name string, stdin io.Reader, conf Config, reg *charset.Registry) ([]der.Value, error) {
	var r io.Reader = stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if conf.PEM {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return readPEM(data, reg)
	}

	var values []der.Value
	d := der.NewDecoder(r, der.WithMaxLength(conf.MaxLength), der.WithCharsets(reg))
	for v, err := range d.All() {
		if err != nil {
			return values, err
		}
		values = append(values, v)
	}
	return values, nil
}

// readPEM decodes the values of all PEM blocks in data.
func readPEM(data []byte, reg *charset.Registry) ([]der.Value, error) {
	var values []der.Value
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		s := der.NewStreamWith(block.Bytes, reg)
		for v, err := range s.All() {
			if err != nil {
				return values, fmt.Errorf("PEM block %q: %w", block.Type, err)
			}
			values = append(values, v)
		}
	}
	if len(values) == 0 && len(bytes.TrimSpace(data)) > 0 {
		return nil, errors.New("no PEM data found")
	}
	return values, nil
}

// write prints the result of a single input.
func write(w io.Writer, format string, in input) error {
	if format == "json" {
		out := struct {
			File   string `json:"file"`
			Values []node `json:"values"`
			Error  string `json:"error,omitempty"`
		}{File: in.name, Values: in.nodes}
		if in.err != nil {
			out.Error = in.err.Error()
		}
		if out.Values == nil {
			out.Values = []node{}
		}
		return json.NewEncoder(w).Encode(out)
	}

	if _, err := fmt.Fprintf(w, "%s:\n", in.name); err != nil {
		return err
	}
	for _, n := range in.nodes {
		if err := writeText(w, n, 1); err != nil {
			return err
		}
	}
	if in.err != nil {
		_, err := fmt.Fprintf(w, "  error: %v\n", in.err)
		return err
	}
	return nil
}
