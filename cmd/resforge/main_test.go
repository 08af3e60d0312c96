// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/resforge/cmd/resforge/cli"
	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/plan"
	"github.com/bureau-foundation/resforge/lib/resource"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/slot"
	"github.com/bureau-foundation/resforge/lib/testutil"
	"github.com/bureau-foundation/resforge/lib/thing"
)

// harness runs commands against a config rooted in a temporary
// directory and captures stdout.
type harness struct {
	t      *testing.T
	dir    string
	config string
	stdout bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{t: t, dir: dir}
	h.config = testutil.WriteFile(t, dir, "resforge.yaml", []byte(
		"paths:\n  root: "+dir+"\n  index_cache: "+filepath.Join(dir, "index.cbor")+"\n"))
	return h
}

func (h *harness) run(args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	a := newApp(&h.stdout)
	a.logger = slog.New(slog.DiscardHandler)
	withConfig := append([]string(nil), args...)
	withConfig = append(withConfig, "--config", h.config)
	return rootCommand(a).Execute(withConfig)
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	if err := h.run(args...); err != nil {
		h.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return h.stdout.String()
}

func (h *harness) path(name string) string { return filepath.Join(h.dir, name) }

func writeResource(t *testing.T, dir, name string, r resource.Resource, rev revision.Revision) string {
	t.Helper()
	data, err := resource.Encode(r, rev, resource.CompressionFlagsFor(rev), resource.Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return testutil.WriteFile(t, dir, name, data)
}

func readResource(t *testing.T, path string) *container.Container {
	t.Helper()
	c, err := readContainer(path, container.Options{})
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return c
}

func slotList(roots ...descriptor.Descriptor) *slot.List {
	list := slot.NewList()
	for i, root := range roots {
		list.Slots = append(list.Slots, slot.Slot{
			ID:    slot.ID{Type: slot.TypeUserLocal, Number: uint32(i + 1)},
			Root:  root,
			Title: "level",
		})
	}
	return list
}

func TestCommandTreeSummaries(t *testing.T) {
	var walk func(command *cli.Command, path string)
	walk = func(command *cli.Command, path string) {
		for _, sub := range command.Subcommands {
			if sub.Summary == "" {
				t.Errorf("%s %s: missing Summary", path, sub.Name)
			}
			if sub.Run == nil && len(sub.Subcommands) == 0 {
				t.Errorf("%s %s: neither Run nor Subcommands", path, sub.Name)
			}
			walk(sub, path+" "+sub.Name)
		}
	}
	walk(rootCommand(newApp(&bytes.Buffer{})), "resforge")
}

func TestArchiveAddListExtract(t *testing.T) {
	h := newHarness(t)
	first := testutil.WriteFile(t, h.dir, "first.bin", []byte("first blob"))
	second := testutil.WriteFile(t, h.dir, "second.bin", []byte("second blob, longer"))
	farc := h.path("data.farc")

	h.mustRun("archive", "add", farc, first, second, first)

	output := h.mustRun("archive", "list", farc, "--json")
	var listed []listedEntry
	if err := json.Unmarshal([]byte(output), &listed); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, output)
	}
	if len(listed) != 2 {
		t.Fatalf("listed %d entries, want 2 (duplicates stored once)", len(listed))
	}

	hash := descriptor.Sum([]byte("second blob, longer"))
	extracted := h.path("out.bin")
	h.mustRun("archive", "extract", farc, hash.String(), "-o", extracted)
	if got := testutil.ReadFile(t, extracted); string(got) != "second blob, longer" {
		t.Errorf("extracted %q, want %q", got, "second blob, longer")
	}

	if err := h.run("archive", "extract", farc, descriptor.Sum([]byte("absent")).String()); err == nil {
		t.Error("extracting an absent hash succeeded")
	}
}

func TestArchiveMergeExportImport(t *testing.T) {
	h := newHarness(t)
	left, right, merged := h.path("left.farc"), h.path("right.farc"), h.path("merged.farc")
	h.mustRun("archive", "add", left, testutil.WriteFile(t, h.dir, "a", []byte("alpha")))
	h.mustRun("archive", "add", right,
		testutil.WriteFile(t, h.dir, "b", []byte("beta")),
		testutil.WriteFile(t, h.dir, "a2", []byte("alpha")))

	output := h.mustRun("archive", "merge", merged, left, right)
	if !strings.Contains(output, "2 blobs added") {
		t.Errorf("merge output = %q, want 2 blobs added", output)
	}

	exported := h.path("export")
	h.mustRun("archive", "export", merged, exported, "--compress", "zstd")
	output = h.mustRun("archive", "manifest", exported)
	if !strings.Contains(output, descriptor.Sum([]byte("beta")).String()) {
		t.Errorf("manifest listing missing beta:\n%s", output)
	}
	if output := h.mustRun("archive", "manifest", exported, "--diag"); !strings.HasPrefix(output, "{") {
		t.Errorf("diagnostic output = %q, want a CBOR map", output)
	}

	restored := h.path("restored.farc")
	output = h.mustRun("archive", "import", exported, restored)
	if !strings.Contains(output, "imported 2 new blobs") {
		t.Errorf("import output = %q", output)
	}
}

func TestResourceInfoAndReplaceDep(t *testing.T) {
	h := newHarness(t)
	rev := revision.New(0x272)
	path := writeResource(t, h.dir, "slots.bin", slotList(
		descriptor.NewGUID(0x12345, descriptor.TypeLevel),
		descriptor.NewGUID(0x23456, descriptor.TypeLevel),
	), rev)

	var info resourceInfo
	if err := json.Unmarshal([]byte(h.mustRun("resource", "info", path, "--json")), &info); err != nil {
		t.Fatalf("info output is not JSON: %v", err)
	}
	if info.Type != descriptor.TypeSlotList.String() || info.Revision != rev.String() {
		t.Errorf("info = %s at %s, want %s at %s", info.Type, info.Revision, descriptor.TypeSlotList, rev)
	}
	if len(info.Dependencies) != 2 {
		t.Fatalf("info lists %d dependencies, want 2", len(info.Dependencies))
	}

	replaced := h.path("replaced.bin")
	h.mustRun("resource", "replace-dep", path, "0", "g99999", "-o", replaced)
	c := readResource(t, replaced)
	if want := descriptor.NewGUID(99999, descriptor.TypeLevel); !c.Dependencies[0].Equal(want) || c.Dependencies[0].Type != descriptor.TypeLevel {
		t.Errorf("dependency 0 = %v (%s), want %v (level)", c.Dependencies[0], c.Dependencies[0].Type, want)
	}
	list, err := resource.Load[slot.List](c, resource.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !list.Slots[0].Root.Equal(descriptor.NewGUID(99999, descriptor.TypeLevel)) {
		t.Errorf("slot 0 root = %v, want g99999", list.Slots[0].Root)
	}
	if !list.Slots[1].Root.Equal(descriptor.NewGUID(0x23456, descriptor.TypeLevel)) {
		t.Errorf("slot 1 root = %v, want it unchanged", list.Slots[1].Root)
	}

	if err := h.run("resource", "replace-dep", path, "5", "g7", "-o", replaced); err == nil {
		t.Error("replacing an out-of-range dependency succeeded")
	}
}

func TestResourceDepsReportsMissing(t *testing.T) {
	h := newHarness(t)
	present := []byte("a level that is present")
	farc := h.path("levels.farc")
	h.mustRun("archive", "add", farc, testutil.WriteFile(t, h.dir, "present.bin", present))

	path := writeResource(t, h.dir, "slots.bin", slotList(
		descriptor.NewHash(descriptor.Sum(present), descriptor.TypeLevel),
		descriptor.NewHash(descriptor.Sum([]byte("absent")), descriptor.TypeLevel),
	), revision.New(0x3e2))

	err := h.run("resource", "deps", path, "--archive", farc)
	var exit *cli.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("deps error = %v, want exit code 1", err)
	}
	if output := h.stdout.String(); !strings.Contains(output, "found: 1  missing: 1") {
		t.Errorf("deps output = %q", output)
	}

	complete := writeResource(t, h.dir, "complete.bin", slotList(
		descriptor.NewHash(descriptor.Sum(present), descriptor.TypeLevel),
	), revision.New(0x3e2))
	h.mustRun("resource", "deps", complete, "--archive", farc, "--recursive")
	if _, err := os.Stat(h.path("index.cbor")); err != nil {
		t.Errorf("recursive walk did not write the index cache: %v", err)
	}
}

func TestPlanBackport(t *testing.T) {
	h := newHarness(t)
	modern := revision.New(0x3e2)
	graph := thing.NewGraph()
	handle := graph.Add(thing.New(1))
	p := &plan.Plan{InventoryData: &plan.InventoryDetails{Title: "crate"}}
	if err := p.SetThings(graph, []serial.Handle{handle}, modern, serial.CompressionAll, nil); err != nil {
		t.Fatalf("SetThings: %v", err)
	}
	input := writeResource(t, h.dir, "crate.plan", p, modern)

	output := h.path("crate-272.plan")
	h.mustRun("plan", "backport", input, "-o", output, "--revision", "0x272")
	c := readResource(t, output)
	if c.Revision != revision.New(0x272) || c.CompressionFlags != serial.CompressionNone {
		t.Errorf("backported = %s/%s, want 0x272/none", c.Revision, c.CompressionFlags)
	}
	backported, err := resource.Load[plan.Plan](c, resource.Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, roots, err := backported.Things(nil); err != nil || len(roots) != 1 {
		t.Errorf("Things = %v, %v; want one root", roots, err)
	}

	slots := writeResource(t, h.dir, "slots.bin", slotList(), modern)
	if err := h.run("plan", "backport", slots, "-o", h.path("x"), "--revision", "0x272"); !errors.Is(err, resource.ErrTypeMismatch) {
		t.Errorf("backporting a slot list: error = %v, want ErrTypeMismatch", err)
	}
	if err := h.run("plan", "backport", input, "-o", h.path("x")); err == nil {
		t.Error("backport without a target revision succeeded")
	}
}

func TestResourceRespecForcedCompression(t *testing.T) {
	h := newHarness(t)
	input := writeResource(t, h.dir, "slots.bin", slotList(descriptor.NewGUID(2, descriptor.TypeLevel)), revision.New(0x272))

	output := h.path("slots-3e2.bin")
	h.mustRun("resource", "respec", input, "-o", output, "--revision", "0x3e2", "--compression", "none")
	c := readResource(t, output)
	if c.Revision != revision.New(0x3e2) || c.CompressionFlags != serial.CompressionNone {
		t.Errorf("respecced = %s/%s, want 0x3e2/none", c.Revision, c.CompressionFlags)
	}
}

func TestResourceInfoWithConfiguredKey(t *testing.T) {
	h := newHarness(t)
	key := []byte("title-profilekey")
	cipher, err := container.NewTEA(key)
	if err != nil {
		t.Fatal(err)
	}
	profile := container.NewBinary(descriptor.TypeLocalProfile, revision.New(0x3f8), serial.CompressionNone, []byte("profile"), nil)
	profile.Compressed = false
	data, err := profile.EncodeWith(container.Options{Cipher: cipher})
	if err != nil {
		t.Fatalf("EncodeWith: %v", err)
	}
	path := testutil.WriteFile(t, h.dir, "profile.bin", data)

	if err := h.run("resource", "info", path); err == nil {
		t.Error("info decrypted a profile under the built-in key")
	}

	h.config = testutil.WriteFile(t, h.dir, "keyed.yaml", []byte(
		"paths:\n  root: "+h.dir+"\nencryption:\n  key: "+hex.EncodeToString(key)+"\n"))
	var info resourceInfo
	if err := json.Unmarshal([]byte(h.mustRun("resource", "info", path, "--json")), &info); err != nil {
		t.Fatalf("info output is not JSON: %v", err)
	}
	if info.PayloadSize != len("profile") {
		t.Errorf("payload_size = %d, want %d", info.PayloadSize, len("profile"))
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	if output := h.mustRun("version"); !strings.HasPrefix(output, "resforge ") {
		t.Errorf("version output = %q", output)
	}
}
