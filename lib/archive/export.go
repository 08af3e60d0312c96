// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/resforge/lib/codec"
	"github.com/bureau-foundation/resforge/lib/descriptor"
)

const (
	// ManifestName is the manifest file inside an export directory.
	ManifestName = "manifest.cbor"

	// BlobDir holds one file per blob, named by hex SHA1.
	BlobDir = "blobs"

	manifestVersion = 1
)

// ErrIntegrity is returned by [Import] when a blob does not match its
// manifest entry.
var ErrIntegrity = errors.New("export integrity check failed")

// Digest is a keyed BLAKE3 digest of a blob's bytes.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// exportDomainKey separates export digests from any other BLAKE3 use of
// the same bytes. ASCII "resforge.archive.export", zero padded.
var exportDomainKey = [32]byte{
	'r', 'e', 's', 'f', 'o', 'r', 'g', 'e', '.', 'a', 'r', 'c', 'h', 'i', 'v', 'e',
	'.', 'e', 'x', 'p', 'o', 'r', 't', 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// DigestOf returns the export digest of data.
func DigestOf(data []byte) Digest {
	hasher, err := blake3.NewKeyed(exportDomainKey[:])
	if err != nil {
		panic("archive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Manifest lists the blobs of an export directory.
type Manifest struct {
	Version int             `cbor:"version"`
	Source  string          `cbor:"source"`
	Entries []ManifestEntry `cbor:"entries"`
}

// ManifestEntry describes one exported blob.
type ManifestEntry struct {
	Hash   descriptor.SHA1 `cbor:"sha1"`
	Size   int64           `cbor:"size"`
	Digest Digest          `cbor:"blake3"`

	// Compression is how the blob file is stored.
	Compression Compression `cbor:"compression"`

	// Type is the resource type named by the blob's magic, empty for
	// unframed blobs. Informational only.
	Type string `cbor:"type,omitempty"`
}

// ExportOptions configures [ExportWith].
type ExportOptions struct {
	// Compression is applied to each blob file. Blobs that do not
	// shrink are stored uncompressed.
	Compression Compression
}

// Export writes every blob of a, queued blobs included, to dir as one
// file per blob plus a manifest. Entries are in ascending hash order.
func Export(a *Archive, dir string) (*Manifest, error) {
	return ExportWith(a, dir, ExportOptions{})
}

// ExportWith is [Export] with options.
func ExportWith(a *Archive, dir string, opts ExportOptions) (*Manifest, error) {
	blobs, err := a.snapshot()
	if err != nil {
		return nil, err
	}
	blobDir := filepath.Join(dir, BlobDir)
	if err := os.MkdirAll(blobDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	manifest := &Manifest{Version: manifestVersion, Source: filepath.Base(a.Path())}
	for _, hash := range slices.SortedFunc(maps.Keys(blobs), compareHash) {
		data := blobs[hash]
		stored, compression, err := compressBlob(data, opts.Compression)
		if err != nil {
			return nil, fmt.Errorf("compressing blob %s: %w", hash, err)
		}
		if err := os.WriteFile(filepath.Join(blobDir, hash.String()), stored, 0o644); err != nil {
			return nil, fmt.Errorf("writing blob %s: %w", hash, err)
		}
		manifest.Entries = append(manifest.Entries, ManifestEntry{
			Hash:        hash,
			Size:        int64(len(data)),
			Digest:      DigestOf(data),
			Compression: compression,
			Type:        blobType(data),
		})
	}

	encoded, err := codec.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, ManifestName), "manifest-*.tmp", func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(encoded))
		return err
	}); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}
	a.logger.Info("archive exported",
		"path", a.Path(),
		"dir", dir,
		"entries", len(manifest.Entries),
		"compression", opts.Compression,
	)
	return manifest, nil
}

// ReadManifest reads the manifest of an export directory.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var manifest Manifest
	if err := codec.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	if manifest.Version != manifestVersion {
		return nil, fmt.Errorf("manifest version %d is not supported", manifest.Version)
	}
	return &manifest, nil
}

// Import verifies every blob listed in dir's manifest against its size,
// BLAKE3 digest and SHA1, then queues them all into a. Nothing is
// queued unless every blob verifies. The archive is not saved; the
// returned hashes are the blobs a did not already hold.
func Import(dir string, a *Archive) ([]descriptor.SHA1, error) {
	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, err
	}

	blobs := make([][]byte, len(manifest.Entries))
	for i, entry := range manifest.Entries {
		stored, err := os.ReadFile(filepath.Join(dir, BlobDir, entry.Hash.String()))
		if err != nil {
			return nil, fmt.Errorf("reading blob %s: %w", entry.Hash, err)
		}
		data, err := decompressBlob(stored, entry.Compression, entry.Size)
		if err != nil {
			return nil, fmt.Errorf("%w: blob %s: %w", ErrIntegrity, entry.Hash, err)
		}
		switch {
		case int64(len(data)) != entry.Size:
			return nil, fmt.Errorf("%w: blob %s is %d bytes, manifest says %d", ErrIntegrity, entry.Hash, len(data), entry.Size)
		case DigestOf(data) != entry.Digest:
			return nil, fmt.Errorf("%w: blob %s digest mismatch", ErrIntegrity, entry.Hash)
		case descriptor.Sum(data) != entry.Hash:
			return nil, fmt.Errorf("%w: blob %s content hash mismatch", ErrIntegrity, entry.Hash)
		}
		blobs[i] = data
	}

	var added []descriptor.SHA1
	for _, data := range blobs {
		hash := descriptor.Sum(data)
		if a.Exists(hash) {
			continue
		}
		a.Add(data)
		added = append(added, hash)
	}
	a.logger.Info("archive imported", "path", a.Path(), "dir", dir, "added", len(added))
	return added, nil
}

func blobType(data []byte) string {
	if len(data) < 3 {
		return ""
	}
	resourceType := descriptor.TypeFromMagic(string(data[:3]))
	if resourceType == descriptor.TypeInvalid {
		return ""
	}
	return resourceType.String()
}
