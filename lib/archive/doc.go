// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive stores resources by content hash.
//
// An [Archive] is a FARC file: blob data, then a file allocation table
// of (SHA1, offset, size) rows, then the row count and the "FARC"
// magic. Blobs are keyed by the SHA1 of their bytes, so adding the same
// content twice stores it once. Added blobs wait in an in-memory queue,
// readable immediately, until [Archive.Save] appends them to the file;
// offsets are assigned only at save time.
//
// A [FileDB] maps GUIDs to file paths and content hashes. A [Registry]
// joins archives and databases into one index that resolves both hash
// and GUID descriptors, implements resource.Index for dependency
// walks, and caches walk annotations in a CBOR file.
//
// [Export] and [Import] move an archive's blobs through a directory of
// loose files with a CBOR manifest of BLAKE3 digests, verified before
// anything is imported. [ExportWith] can store the loose files LZ4 or
// zstd compressed.
package archive
