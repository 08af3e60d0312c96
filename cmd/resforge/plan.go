// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/resforge/cmd/resforge/cli"
)

func planCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "plan",
		Summary: "Work with plans",
		Subcommands: []*cli.Command{
			planBackportCommand(a),
		},
	}
}

func planBackportCommand(a *app) *cli.Command {
	var (
		output      string
		target      string
		compression string
	)
	return &cli.Command{
		Name:    "backport",
		Summary: "Rebuild a plan and its things for an older revision",
		Usage:   "resforge plan backport <plan> -o <file> [--revision 0x272] [--compression auto|all|none]",
		Examples: []cli.Example{
			{
				Description: "Backport a plan to the 0x272 format",
				Command:     "resforge plan backport rocket.plan -o rocket-272.plan --revision 0x272",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("backport")
			flagSet.StringVarP(&output, "output", "o", "", "output file (required)")
			revisionFlags(flagSet, &target, &compression)
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 1, 1, "resforge plan backport <plan> -o <file>"); err != nil {
				return err
			}
			return a.rebuild("plan/backport", args[0], output, target, compression, true)
		},
	}
}
