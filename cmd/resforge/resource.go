// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/resforge/cmd/resforge/cli"
	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/plan"
	"github.com/bureau-foundation/resforge/lib/resource"
)

func resourceCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "resource",
		Summary: "Inspect and rebuild resource files",
		Subcommands: []*cli.Command{
			resourceInfoCommand(a),
			resourceDepsCommand(a),
			resourceReplaceDepCommand(a),
			resourceRespecCommand(a),
		},
	}
}

type resourceInfo struct {
	Type         string           `json:"type"`
	Method       string           `json:"method"`
	Revision     string           `json:"revision,omitempty"`
	Compression  string           `json:"compression,omitempty"`
	Compressed   bool             `json:"compressed"`
	PayloadSize  int              `json:"payload_size"`
	Boundary     string           `json:"boundary,omitempty"`
	Slack        int              `json:"slack,omitempty"`
	Things       *int             `json:"things,omitempty"`
	Dependencies []dependencyInfo `json:"dependencies"`
}

type dependencyInfo struct {
	Index      int    `json:"index"`
	Descriptor string `json:"descriptor"`
	Type       string `json:"type"`
}

func describeContainer(c *container.Container, s *session) resourceInfo {
	info := resourceInfo{
		Type:         c.Type.String(),
		Method:       c.Method.String(),
		Compressed:   c.Compressed,
		PayloadSize:  len(c.Payload),
		Dependencies: describeDependencies(c.Dependencies),
	}
	if !c.Method.IsBinary() {
		return info
	}
	info.Revision = c.Revision.String()
	info.Compression = c.CompressionFlags.String()
	info.Boundary = c.PayloadBoundary().String()
	info.Slack = c.Slack()

	if c.Type == descriptor.TypePlan {
		p, err := resource.Load[plan.Plan](c, s.resourceOptions())
		if err != nil {
			s.logger.Warn("plan does not decode", "error", err)
			return info
		}
		_, handles, err := p.Things(s.logger)
		if err != nil {
			s.logger.Warn("plan thing data does not decode", "error", err)
			return info
		}
		count := len(handles)
		info.Things = &count
	}
	return info
}

func describeDependencies(dependencies []descriptor.Descriptor) []dependencyInfo {
	described := make([]dependencyInfo, 0, len(dependencies))
	for i, dependency := range dependencies {
		described = append(described, dependencyInfo{
			Index:      i,
			Descriptor: dependency.String(),
			Type:       dependency.Type.String(),
		})
	}
	return described
}

func resourceInfoCommand(a *app) *cli.Command {
	var outputJSON bool
	return &cli.Command{
		Name:    "info",
		Summary: "Show the framing and dependency table of a resource",
		Usage:   "resforge resource info <file> [--json]",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("info")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 1, 1, "resforge resource info <file>"); err != nil {
				return err
			}
			s, err := a.session("resource/info")
			if err != nil {
				return err
			}
			c, err := readContainer(args[0], s.containerOptions())
			if err != nil {
				return err
			}
			info := describeContainer(c, s)
			if outputJSON {
				return writeJSON(a.stdout, info)
			}

			fmt.Fprintf(a.stdout, "type:        %s\n", info.Type)
			fmt.Fprintf(a.stdout, "method:      %s\n", info.Method)
			if info.Revision != "" {
				fmt.Fprintf(a.stdout, "revision:    %s\n", info.Revision)
				fmt.Fprintf(a.stdout, "compression: %s\n", info.Compression)
				fmt.Fprintf(a.stdout, "compressed:  %t\n", info.Compressed)
				fmt.Fprintf(a.stdout, "boundary:    %s (%d bytes slack)\n", info.Boundary, info.Slack)
			}
			fmt.Fprintf(a.stdout, "payload:     %d bytes\n", info.PayloadSize)
			if info.Things != nil {
				fmt.Fprintf(a.stdout, "things:      %d\n", *info.Things)
			}
			fmt.Fprintf(a.stdout, "dependencies: %d\n", len(info.Dependencies))
			for _, dependency := range info.Dependencies {
				fmt.Fprintf(a.stdout, "  %3d  %-44s %s\n", dependency.Index, dependency.Descriptor, dependency.Type)
			}
			return nil
		},
	}
}

func resourceDepsCommand(a *app) *cli.Command {
	var (
		recursive bool
		archives  []string
		databases []string
	)
	return &cli.Command{
		Name:    "deps",
		Summary: "Check that a resource's dependencies are present",
		Usage:   "resforge resource deps <file> [--recursive] [--archive farc]... [--filedb map]...",
		Description: `Resolve every dependency of a resource against the configured
archives and FileDBs (plus any given with --archive and --filedb).
With --recursive, dependencies are decoded and walked in turn, and
the results are written to the configured index cache.

Exits with status 1 when any direct dependency is missing.`,
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("deps")
			flagSet.BoolVarP(&recursive, "recursive", "r", false, "walk dependencies of dependencies")
			flagSet.StringArrayVar(&archives, "archive", nil, "additional FARC to search (repeatable)")
			flagSet.StringArrayVar(&databases, "filedb", nil, "additional FileDB to search (repeatable)")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 1, 1, "resforge resource deps <file>"); err != nil {
				return err
			}
			s, err := a.session("resource/deps")
			if err != nil {
				return err
			}
			c, err := readContainer(args[0], s.containerOptions())
			if err != nil {
				return err
			}
			registry, err := s.registry(archives, databases)
			if err != nil {
				return err
			}

			report := resource.RegisterDependencies(c, registry, recursive, s.resourceOptions())
			fmt.Fprintf(a.stdout, "found: %d  missing: %d\n", report.Found, report.Missing)
			for _, missing := range report.MissingDescriptors {
				fmt.Fprintf(a.stdout, "  missing     %s (%s)\n", missing, missing.Type)
			}
			for _, incomplete := range report.Incomplete {
				fmt.Fprintf(a.stdout, "  incomplete  %s (%s)\n", incomplete, incomplete.Type)
			}

			if recursive && s.config.Paths.IndexCache != "" {
				if err := s.config.EnsurePaths(); err != nil {
					return err
				}
				if err := registry.SaveIndex(s.config.Paths.IndexCache); err != nil {
					return err
				}
			}
			if report.Missing != 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func resourceReplaceDepCommand(a *app) *cli.Command {
	var output string
	return &cli.Command{
		Name:    "replace-dep",
		Summary: "Point one dependency of a resource at another resource",
		Usage:   "resforge resource replace-dep <file> <index> <g123|h<sha1>> [-o file]",
		Description: `Replace dependency <index> (as listed by "resforge resource info")
with a new descriptor, rewriting every reference to it in the payload.
Plans have their embedded thing data rewritten too. The new
descriptor keeps the old entry's resource type.`,
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("replace-dep")
			flagSet.StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 3, 3, "resforge resource replace-dep <file> <index> <descriptor>"); err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("dependency index %q: %w", args[1], err)
			}
			replacement, err := descriptor.Parse(args[2], descriptor.TypeInvalid)
			if err != nil {
				return err
			}
			s, err := a.session("resource/replace-dep")
			if err != nil {
				return err
			}
			c, err := readContainer(args[0], s.containerOptions())
			if err != nil {
				return err
			}
			if err := resource.ReplaceDependency(c, index, replacement, s.resourceOptions()); err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			return writeContainer(c, output, s.containerOptions())
		},
	}
}

func resourceRespecCommand(a *app) *cli.Command {
	var (
		output      string
		target      string
		compression string
	)
	return &cli.Command{
		Name:    "respec",
		Summary: "Rebuild a resource for another revision",
		Usage:   "resforge resource respec <file> -o <file> [--revision 0x272] [--compression auto|all|none]",
		Description: `Decode a resource and encode it again at another revision. Plans have
their thing data re-encoded at the target revision as well. Without
--revision the configured output revision is used.`,
		Examples: []cli.Example{
			{
				Description: "Rebuild a level for the Leerdammer branch",
				Command:     "resforge resource respec level.bin -o level-ld.bin --revision 0x272/LD:4",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("respec")
			flagSet.StringVarP(&output, "output", "o", "", "output file (required)")
			revisionFlags(flagSet, &target, &compression)
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 1, 1, "resforge resource respec <file> -o <file>"); err != nil {
				return err
			}
			return a.rebuild("resource/respec", args[0], output, target, compression, false)
		},
	}
}

func revisionFlags(flagSet *pflag.FlagSet, target, compression *string) {
	flagSet.StringVar(target, "revision", "", "target revision, e.g. 0x3e2 or 0x272/LD:4 (default output.revision)")
	flagSet.StringVar(compression, "compression", "", "auto, all or none (default output.compression)")
}

// rebuild decodes input, re-encodes it at the target revision and
// writes it to output. With planOnly, anything but a plan is rejected.
func (a *app) rebuild(command, input, output, target, compression string, planOnly bool) error {
	if output == "" {
		return fmt.Errorf("--output is required")
	}
	s, err := a.session(command)
	if err != nil {
		return err
	}
	rev, err := s.targetRevision(target)
	if err != nil {
		return err
	}
	flags, err := s.compressionFlags(compression, rev)
	if err != nil {
		return err
	}
	c, err := readContainer(input, s.containerOptions())
	if err != nil {
		return err
	}
	if planOnly && c.Type != descriptor.TypePlan {
		return fmt.Errorf("%s: %w: %s is not a plan", input, resource.ErrTypeMismatch, c.Type)
	}
	rebuilt, err := resource.RespecWith(c, rev, flags, s.resourceOptions())
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := writeContainer(rebuilt, output, s.containerOptions()); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s: %s %s -> %s\n", output, c.Type, c.Revision, rev)
	return nil
}
