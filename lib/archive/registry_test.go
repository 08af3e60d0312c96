// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/resource"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/testutil"
)

func TestFileDBRoundTrip(t *testing.T) {
	db := NewFileDB(0x21c)
	db.Put(FileEntry{Path: "gamedata/levels/intro.bin", Date: 100, Size: 5, Hash: descriptor.Sum([]byte("intro")), GUID: 0x1234})
	db.Put(FileEntry{Path: "gamedata/scripts/door.ff", Date: 200, Size: 4, Hash: descriptor.Sum([]byte("door")), GUID: 0x1e1})
	db.Put(FileEntry{Path: "gamedata/levels/intro_v2.bin", Date: 300, Size: 7, Hash: descriptor.Sum([]byte("intro_2")), GUID: 0x1234})
	if db.Len() != 2 {
		t.Fatalf("Len = %d, want 2 after replacing a GUID", db.Len())
	}

	path := filepath.Join(t.TempDir(), "blurayguids.map")
	if err := db.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFileDB(path)
	if err != nil {
		t.Fatalf("LoadFileDB: %v", err)
	}
	if loaded.Revision != 0x21c || loaded.Len() != 2 {
		t.Errorf("loaded revision %#x with %d entries", loaded.Revision, loaded.Len())
	}
	entry, ok := loaded.Lookup(0x1234)
	if !ok || entry.Path != "gamedata/levels/intro_v2.bin" || entry.Date != 300 {
		t.Errorf("Lookup(0x1234) = %+v, %v", entry, ok)
	}
	if _, ok := loaded.LookupPath("GAMEDATA\\Scripts\\door.ff"); !ok {
		t.Error("LookupPath did not normalise case and separators")
	}
	if _, ok := loaded.LookupPath("gamedata/levels/intro.bin"); ok {
		t.Error("replaced path still resolves")
	}

	// A count that cannot fit in the remaining bytes is rejected before
	// any allocation.
	if _, err := DecodeFileDB([]byte{0, 0, 0, 1, 0x7f, 0xff, 0xff, 0xff}); !errors.Is(err, serial.ErrBadLength) {
		t.Errorf("DecodeFileDB error = %v, want ErrBadLength", err)
	}
}

func TestRegistryResolvesHashAndGUID(t *testing.T) {
	a := newArchive(t, "mesh bytes")
	meshHash := descriptor.Sum([]byte("mesh bytes"))
	db := NewFileDB(0)
	db.Put(FileEntry{Path: "mesh.mol", Hash: meshHash, GUID: 77})
	db.Put(FileEntry{Path: "gone.mol", Hash: descriptor.Sum([]byte("gone")), GUID: 78})

	registry := NewRegistry(Options{})
	registry.AddArchive(a)
	registry.AddFileDB(db)

	byHash := descriptor.NewHash(meshHash, descriptor.TypeMesh)
	byGUID := descriptor.NewGUID(77, descriptor.TypeMesh)
	for _, d := range []descriptor.Descriptor{byHash, byGUID} {
		if !registry.Contains(d) {
			t.Errorf("Contains(%s) = false", d)
		}
		data, err := registry.Extract(d)
		if err != nil || string(data) != "mesh bytes" {
			t.Errorf("Extract(%s) = %q, %v", d, data, err)
		}
	}
	unstored := descriptor.NewGUID(78, descriptor.TypeMesh)
	if registry.Contains(unstored) {
		t.Error("Contains = true for a GUID whose content is in no archive")
	}
	if _, err := registry.Extract(descriptor.NewGUID(99, descriptor.TypeMesh)); !errors.Is(err, ErrNotFound) {
		t.Errorf("Extract unknown GUID error = %v, want ErrNotFound", err)
	}
}

func TestRegistryTriesEveryFileDB(t *testing.T) {
	a := newArchive(t, "patched mesh")
	stale := NewFileDB(0)
	stale.Put(FileEntry{Path: "mesh.mol", Hash: descriptor.Sum([]byte("original mesh")), GUID: 77})
	patch := NewFileDB(0)
	patch.Put(FileEntry{Path: "mesh.mol", Hash: descriptor.Sum([]byte("patched mesh")), GUID: 77})

	registry := NewRegistry(Options{})
	registry.AddArchive(a)
	registry.AddFileDB(stale)
	registry.AddFileDB(patch)

	d := descriptor.NewGUID(77, descriptor.TypeMesh)
	if !registry.Contains(d) {
		t.Fatal("Contains = false though a later FileDB maps the GUID to stored content")
	}
	data, err := registry.Extract(d)
	if err != nil || string(data) != "patched mesh" {
		t.Errorf("Extract = %q, %v; want patched mesh", data, err)
	}
	if hash, ok := registry.Resolve(d); !ok || hash != descriptor.Sum([]byte("patched mesh")) {
		t.Errorf("Resolve = %s, %v; want the stored mapping", hash, ok)
	}

	registry = NewRegistry(Options{})
	registry.AddFileDB(stale)
	if hash, ok := registry.Resolve(d); !ok || hash != descriptor.Sum([]byte("original mesh")) {
		t.Errorf("Resolve without archives = %s, %v; want the first mapping", hash, ok)
	}
}

func TestRegistryDependencyWalkAndIndexCache(t *testing.T) {
	rev := revision.New(0x3e2)
	missing := descriptor.NewGUID(500, descriptor.TypeTexture)
	leaf := container.NewBinary(descriptor.TypeMaterial, rev, serial.CompressionAll, []byte{1}, []descriptor.Descriptor{missing})
	leafBytes, err := leaf.Encode()
	if err != nil {
		t.Fatalf("Encode leaf: %v", err)
	}

	a := New(filepath.Join(t.TempDir(), "walk.farc"), Options{})
	leafHash := a.Add(leafBytes)
	leafDescriptor := descriptor.NewHash(leafHash, descriptor.TypeMaterial)
	root := container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{2}, []descriptor.Descriptor{
		leafDescriptor,
		descriptor.NewGUID(501, descriptor.TypeMesh),
	})

	registry := NewRegistry(Options{})
	registry.AddArchive(a)
	report := resource.RegisterDependencies(root, registry, true, resource.Options{})
	if report.Missing != 1 || report.Found != 1 || len(report.Incomplete) != 1 {
		t.Fatalf("report = %+v", report)
	}
	annotation, ok := registry.Annotation(leafDescriptor)
	if !ok || !annotation.HasMissingDependencies || len(annotation.Dependencies) != 1 {
		t.Fatalf("annotation = %+v, %v", annotation, ok)
	}

	path := filepath.Join(t.TempDir(), "index.cbor")
	if err := registry.SaveIndex(path); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	fresh := NewRegistry(Options{})
	if err := fresh.LoadIndex(path); err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	cached, ok := fresh.Annotation(leafDescriptor)
	if !ok || !cached.HasMissingDependencies {
		t.Fatalf("cached annotation = %+v, %v", cached, ok)
	}
	if got := cached.Dependencies[0]; !got.Equal(missing) || got.Type != descriptor.TypeTexture {
		t.Errorf("cached dependency = %v (%s), want %v texture", got, got.Type, missing)
	}
}

func TestExportImport(t *testing.T) {
	source := newArchive(t, "one", "two")
	source.Add([]byte("PLNb queued"))
	dir := t.TempDir()
	manifest, err := Export(source, dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(manifest.Entries) != 3 {
		t.Fatalf("manifest entries = %d, want 3", len(manifest.Entries))
	}
	read, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	for i, entry := range read.Entries {
		if entry != manifest.Entries[i] {
			t.Errorf("manifest entry %d = %+v, want %+v", i, entry, manifest.Entries[i])
		}
	}
	planHash := descriptor.Sum([]byte("PLNb queued"))
	for _, entry := range read.Entries {
		if entry.Hash == planHash && entry.Type != "plan" {
			t.Errorf("plan blob type = %q, want plan", entry.Type)
		}
	}

	target := newArchive(t, "one")
	added, err := Import(dir, target)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(added) != 2 {
		t.Errorf("added = %d, want 2", len(added))
	}
	if err := target.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(target.Entries()) != 3 {
		t.Errorf("target entries = %d, want 3", len(target.Entries()))
	}
}

func TestImportRejectsTampering(t *testing.T) {
	source := newArchive(t, "original", "untouched")
	dir := t.TempDir()
	if _, err := Export(source, dir); err != nil {
		t.Fatalf("Export: %v", err)
	}
	blob := filepath.Join(dir, BlobDir, descriptor.Sum([]byte("original")).String())
	if err := os.WriteFile(blob, []byte("modified"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	target := New(filepath.Join(t.TempDir(), "target.farc"), Options{})
	if _, err := Import(dir, target); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("Import error = %v, want ErrIntegrity", err)
	}
	if target.QueueSize() != 0 {
		t.Error("tampered import queued blobs")
	}
}

func TestExportCompressed(t *testing.T) {
	repetitive := bytes.Repeat([]byte("thing data "), 512)
	for _, compression := range []Compression{CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			source := New(filepath.Join(t.TempDir(), "source.farc"), Options{})
			source.Add(repetitive)
			source.Add([]byte("xy"))
			dir := t.TempDir()

			manifest, err := ExportWith(source, dir, ExportOptions{Compression: compression})
			if err != nil {
				t.Fatalf("ExportWith: %v", err)
			}
			for _, entry := range manifest.Entries {
				want := compression
				if entry.Size == 2 {
					want = CompressionNone
				}
				if entry.Compression != want {
					t.Errorf("blob of %d bytes stored as %s, want %s", entry.Size, entry.Compression, want)
				}
			}
			stored := testutil.ReadFile(t, filepath.Join(dir, BlobDir, descriptor.Sum(repetitive).String()))
			if len(stored) >= len(repetitive) {
				t.Errorf("stored blob is %d bytes, want fewer than %d", len(stored), len(repetitive))
			}

			target := New(filepath.Join(t.TempDir(), "target.farc"), Options{})
			if _, err := Import(dir, target); err != nil {
				t.Fatalf("Import: %v", err)
			}
			data, err := target.Extract(descriptor.Sum(repetitive))
			if err != nil || !bytes.Equal(data, repetitive) {
				t.Errorf("imported blob does not round trip: %v", err)
			}
		})
	}
}

func TestParseCompression(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(compression.String())
		if err != nil || parsed != compression {
			t.Errorf("ParseCompression(%q) = %v, %v", compression, parsed, err)
		}
	}
	if _, err := ParseCompression("bzip2"); err == nil {
		t.Error("ParseCompression(bzip2) succeeded")
	}
}
