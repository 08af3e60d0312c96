// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the logger for a command invocation. When
// stderr is a terminal the output is slog.TextHandler; when it is piped
// or redirected the output is JSON, one record per line.
//
// Callers scope the logger with command context via With():
//
//	logger := cli.NewCommandLogger(slog.LevelInfo).With(
//	    "command", "archive/merge",
//	    "archive", path,
//	)
func NewCommandLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

func newLogger(w io.Writer, terminal bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}
