// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/resforge/cmd/resforge/cli"
	"github.com/bureau-foundation/resforge/lib/archive"
	"github.com/bureau-foundation/resforge/lib/codec"
	"github.com/bureau-foundation/resforge/lib/descriptor"
)

func archiveCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "archive",
		Summary: "Work with FARC archives",
		Description: `Inspect, extend, merge and move the contents of FARC archives.

A FARC is a flat blob store: resource data followed by a table of
(SHA1, offset, size) rows. Blobs are addressed by the SHA1 of their
bytes, so adding the same data twice stores it once.`,
		Subcommands: []*cli.Command{
			archiveListCommand(a),
			archiveExtractCommand(a),
			archiveAddCommand(a),
			archiveMergeCommand(a),
			archiveExportCommand(a),
			archiveImportCommand(a),
			archiveManifestCommand(a),
		},
	}
}

type listedEntry struct {
	Hash   descriptor.SHA1 `json:"hash"`
	Offset uint32          `json:"offset"`
	Size   uint32          `json:"size"`
}

func archiveListCommand(a *app) *cli.Command {
	var outputJSON bool
	return &cli.Command{
		Name:    "list",
		Summary: "List the blobs in an archive",
		Usage:   "resforge archive list <farc> [--json]",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("list")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 1, 1, "resforge archive list <farc>"); err != nil {
				return err
			}
			s, err := a.session("archive/list")
			if err != nil {
				return err
			}
			farc, err := archive.Open(args[0], s.archiveOptions())
			if err != nil {
				return err
			}

			entries := farc.Entries()
			listed := make([]listedEntry, 0, len(entries))
			for _, entry := range entries {
				listed = append(listed, listedEntry{Hash: entry.Hash, Offset: entry.Offset, Size: entry.Size})
			}
			if outputJSON {
				return writeJSON(a.stdout, listed)
			}
			tw := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "HASH\tOFFSET\tSIZE\n")
			for _, entry := range listed {
				fmt.Fprintf(tw, "%s\t0x%x\t%d\n", entry.Hash, entry.Offset, entry.Size)
			}
			return tw.Flush()
		},
	}
}

func archiveExtractCommand(a *app) *cli.Command {
	var output string
	return &cli.Command{
		Name:    "extract",
		Summary: "Write one blob to a file or stdout",
		Usage:   "resforge archive extract <farc> <sha1> [-o file]",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("extract")
			flagSet.StringVarP(&output, "output", "o", "", "output file (default stdout)")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 2, 2, "resforge archive extract <farc> <sha1>"); err != nil {
				return err
			}
			hash, err := descriptor.ParseSHA1(args[1])
			if err != nil {
				return err
			}
			s, err := a.session("archive/extract")
			if err != nil {
				return err
			}
			farc, err := archive.Open(args[0], s.archiveOptions())
			if err != nil {
				return err
			}
			data, err := farc.Extract(hash)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = a.stdout.Write(data)
				return err
			}
			return os.WriteFile(output, data, 0o644)
		},
	}
}

func archiveAddCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "add",
		Summary: "Add files to an archive, creating it if needed",
		Usage:   "resforge archive add <farc> <file>...",
		Flags:   func() *pflag.FlagSet { return a.flagSet("add") },
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 2, -1, "resforge archive add <farc> <file>..."); err != nil {
				return err
			}
			s, err := a.session("archive/add")
			if err != nil {
				return err
			}
			farc, err := s.openArchive(args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				hash := farc.Add(data)
				fmt.Fprintf(a.stdout, "%s  %s\n", hash, path)
			}
			return farc.Save()
		},
	}
}

func archiveMergeCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "merge",
		Summary: "Copy blobs from other archives into one archive",
		Usage:   "resforge archive merge <destination> <source>...",
		Description: `Copy every blob of each source archive that the destination does not
already hold. The destination is created if it does not exist and is
saved once after all sources are merged.`,
		Flags: func() *pflag.FlagSet { return a.flagSet("merge") },
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 2, -1, "resforge archive merge <destination> <source>..."); err != nil {
				return err
			}
			s, err := a.session("archive/merge")
			if err != nil {
				return err
			}
			destination, err := s.openArchive(args[0])
			if err != nil {
				return err
			}
			total := 0
			for _, path := range args[1:] {
				source, err := archive.Open(path, s.archiveOptions())
				if err != nil {
					return err
				}
				added, err := destination.Merge(source)
				if err != nil {
					return fmt.Errorf("merging %s: %w", path, err)
				}
				fmt.Fprintf(a.stdout, "%s: %d new blobs\n", path, len(added))
				total += len(added)
			}
			if err := destination.Save(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s: %d blobs added\n", args[0], total)
			return nil
		},
	}
}

func archiveExportCommand(a *app) *cli.Command {
	var compression string
	return &cli.Command{
		Name:    "export",
		Summary: "Write every blob of an archive to a directory",
		Usage:   "resforge archive export <farc> <directory> [--compress none|lz4|zstd]",
		Description: `Write each blob to <directory>/` + archive.BlobDir + `/<sha1> and a CBOR
manifest listing every blob's size and BLAKE3 digest to
<directory>/` + archive.ManifestName + `. With --compress, blob files are
stored compressed; blobs that do not shrink are stored as-is.`,
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("export")
			flagSet.StringVar(&compression, "compress", "none", "blob file compression: none, lz4 or zstd")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 2, 2, "resforge archive export <farc> <directory>"); err != nil {
				return err
			}
			tag, err := archive.ParseCompression(compression)
			if err != nil {
				return err
			}
			s, err := a.session("archive/export")
			if err != nil {
				return err
			}
			farc, err := archive.Open(args[0], s.archiveOptions())
			if err != nil {
				return err
			}
			manifest, err := archive.ExportWith(farc, args[1], archive.ExportOptions{Compression: tag})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "exported %d blobs to %s\n", len(manifest.Entries), args[1])
			return nil
		},
	}
}

func archiveImportCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:    "import",
		Summary: "Add the blobs of an export directory to an archive",
		Usage:   "resforge archive import <directory> <farc>",
		Description: `Verify every blob of an export directory against its manifest, then
add them to the archive. Nothing is written if any blob fails
verification.`,
		Flags: func() *pflag.FlagSet { return a.flagSet("import") },
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 2, 2, "resforge archive import <directory> <farc>"); err != nil {
				return err
			}
			s, err := a.session("archive/import")
			if err != nil {
				return err
			}
			farc, err := s.openArchive(args[1])
			if err != nil {
				return err
			}
			added, err := archive.Import(args[0], farc)
			if err != nil {
				return err
			}
			if err := farc.Save(); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "imported %d new blobs into %s\n", len(added), args[1])
			return nil
		},
	}
}

func archiveManifestCommand(a *app) *cli.Command {
	var diagnostic bool
	return &cli.Command{
		Name:    "manifest",
		Summary: "Show the manifest of an export directory",
		Usage:   "resforge archive manifest <directory> [--diag]",
		Flags: func() *pflag.FlagSet {
			flagSet := a.flagSet("manifest")
			flagSet.BoolVar(&diagnostic, "diag", false, "print CBOR diagnostic notation")
			return flagSet
		},
		Run: func(args []string) error {
			if err := cli.ExpectArgs(args, 1, 1, "resforge archive manifest <directory>"); err != nil {
				return err
			}
			if diagnostic {
				data, err := os.ReadFile(filepath.Join(args[0], archive.ManifestName))
				if err != nil {
					return err
				}
				text, err := codec.Diagnose(data)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.stdout, text)
				return err
			}

			manifest, err := archive.ReadManifest(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "source: %s\n", manifest.Source)
			tw := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "HASH\tSIZE\tSTORED\tTYPE\tBLAKE3\n")
			for _, entry := range manifest.Entries {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", entry.Hash, entry.Size, entry.Compression, entry.Type, entry.Digest)
			}
			return tw.Flush()
		},
	}
}
