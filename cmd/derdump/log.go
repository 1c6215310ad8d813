// Copyright 2025 Kim Wittenburg. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"log/slog"
)

// configToSlogLevel maps the syslog style levels of LogConfig to slog levels.
func configToSlogLevel(l int) slog.Level {
	switch l {
	case 1, 2, 3:
		return slog.LevelError
	case 0, 4, 5:
		return slog.LevelWarn
	case 6:
		return slog.LevelInfo
	case 7:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// newLogger returns a logger writing to w as configured. A level of -1
// discards all output.
func newLogger(conf LogConfig, w io.Writer) *slog.Logger {
	if conf.Level < 0 {
		return slog.New(slog.DiscardHandler)
	}
	opts := &slog.HandlerOptions{Level: configToSlogLevel(conf.Level)}
	var h slog.Handler
	if conf.TextFormat {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h)
}
