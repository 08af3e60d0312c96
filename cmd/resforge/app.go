// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/resforge/cmd/resforge/cli"
	"github.com/bureau-foundation/resforge/lib/archive"
	"github.com/bureau-foundation/resforge/lib/config"
	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/resource"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// app holds the state shared by every command of one invocation: the
// global flags and the output stream.
type app struct {
	stdout io.Writer

	configPath string
	verbose    bool

	// logger overrides the command logger when set.
	logger *slog.Logger
}

func newApp(stdout io.Writer) *app {
	return &app{stdout: stdout}
}

// flagSet returns a flag set carrying the global flags.
func (a *app) flagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVar(&a.configPath, "config", "", "path to resforge.yaml (default $"+config.EnvironmentVariable+")")
	flagSet.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	return flagSet
}

// session is a loaded configuration and a logger scoped to one command.
type session struct {
	config *config.Config
	logger *slog.Logger

	// cipher is nil unless encryption.key is configured.
	cipher container.Cipher
}

func (a *app) session(command string) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := a.logger
	if logger == nil {
		logger = cli.NewCommandLogger(level)
	}
	s := &session{config: cfg, logger: logger.With("command", command)}
	key, err := cfg.Encryption.KeyBytes()
	if err != nil {
		return nil, err
	}
	if key != nil {
		cipher, err := container.NewTEA(key)
		if err != nil {
			return nil, err
		}
		s.cipher = cipher
	}
	return s, nil
}

func (a *app) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case a.configPath != "":
		cfg, err = config.LoadFile(a.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (s *session) resourceOptions() resource.Options {
	return resource.Options{Logger: s.logger, Cipher: s.cipher}
}

func (s *session) containerOptions() container.Options {
	return container.Options{Logger: s.logger, Cipher: s.cipher}
}

func (s *session) archiveOptions() archive.Options {
	return archive.Options{Logger: s.logger}
}

// targetRevision parses text, falling back to the configured output
// revision.
func (s *session) targetRevision(text string) (revision.Revision, error) {
	if text != "" {
		return revision.Parse(text)
	}
	if s.config.Output.Revision == "" {
		return revision.Revision{}, errors.New("no target revision: pass --revision or set output.revision")
	}
	head, err := s.config.Output.Head()
	if err != nil {
		return revision.Revision{}, err
	}
	return revision.FromDescriptor(head, s.config.Output.BranchDescriptor), nil
}

// compressionFlags resolves "all", "none" or "auto" (derive from rev).
// An empty mode uses the configured output compression.
func (s *session) compressionFlags(mode string, rev revision.Revision) (serial.CompressionFlags, error) {
	if mode == "" {
		mode = s.config.Output.Compression
	}
	switch mode {
	case "", "auto":
		return resource.CompressionFlagsFor(rev), nil
	case "all":
		return serial.CompressionAll, nil
	case "none":
		return serial.CompressionNone, nil
	default:
		return 0, fmt.Errorf("compression %q must be one of: auto, all, none", mode)
	}
}

// registry builds a registry over the configured archives and FileDBs
// followed by any given on the command line, and loads the index cache
// when one exists.
func (s *session) registry(archives, databases []string) (*archive.Registry, error) {
	registry := archive.NewRegistry(s.archiveOptions())
	for _, path := range append(append([]string(nil), s.config.Paths.Archives...), archives...) {
		a, err := archive.Open(path, s.archiveOptions())
		if err != nil {
			return nil, err
		}
		registry.AddArchive(a)
	}
	for _, path := range append(append([]string(nil), s.config.Paths.FileDB...), databases...) {
		db, err := archive.LoadFileDB(path)
		if err != nil {
			return nil, err
		}
		registry.AddFileDB(db)
	}
	if cache := s.config.Paths.IndexCache; cache != "" {
		if err := registry.LoadIndex(cache); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("ignoring unreadable index cache", "path", cache, "error", err)
		}
	}
	return registry, nil
}

// openArchive opens the FARC at path, or starts an empty one when the
// file does not exist yet.
func (s *session) openArchive(path string) (*archive.Archive, error) {
	a, err := archive.Open(path, s.archiveOptions())
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("creating archive", "path", path)
		return archive.New(path, s.archiveOptions()), nil
	}
	return a, err
}

// readContainer decodes the resource file at path.
func readContainer(path string, opts container.Options) (*container.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return container.DecodeWith(data, opts)
}

// writeContainer encodes c to path.
func writeContainer(c *container.Container, path string, opts container.Options) error {
	data, err := c.EncodeWith(opts)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// writeJSON writes value as indented JSON with a trailing newline.
func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
