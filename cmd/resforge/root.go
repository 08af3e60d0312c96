// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/bureau-foundation/resforge/cmd/resforge/cli"
	"github.com/bureau-foundation/resforge/lib/version"
)

// rootCommand builds the complete command tree.
func rootCommand(a *app) *cli.Command {
	return &cli.Command{
		Name: "resforge",
		Description: `resforge: resource and archive tooling.

Decode, inspect and rebuild serialized resources across format
revisions, and manage the FARC archives that store them.`,
		Subcommands: []*cli.Command{
			archiveCommand(a),
			resourceCommand(a),
			planCommand(a),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					_, err := fmt.Fprintf(a.stdout, "resforge %s\n", version.Full())
					return err
				},
			},
		},
	}
}
