// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package container frames resource payloads: the three-character
// type magic, the serialization method byte, the revision and branch
// fields, compression flags, the optional TEA-encrypted block, the
// chunked zlib stream, and the dependency table.
//
// Binary layout (all integers big-endian):
//
//	[3] magic           e.g. "PLN"
//	[1] method          'b' binary, 'e' encrypted binary, 't' text,
//	                    ' ' texture, 's' / 'S' GXT texture
//	[4] head            revision head word
//	[4] table offset    head >= 0x109
//	[2] branch id       head >= 0x271
//	[2] branch revision head >= 0x271
//	[1] flags           head >= 0x297, or head == 0x272 on a branch
//	[1] compressed      head >= 0x189 (always compressed below)
//	[4] block size      encrypted binary only
//	[.] payload         raw, chunked zlib, or TEA block
//	[.] dependency table at the table offset:
//	    u32 count, then per entry u8 kind (1 hash, 2 guid),
//	    20 hash bytes or u32 guid, u32 type
//
// Buffers that do not start with a known magic and method are not an
// error: [Decode] returns an unframed [Container] holding the raw
// bytes, which is the normal outcome for static meshes and other
// headerless blobs.
//
// The dependency table is read by seeking to the table offset and
// restoring the cursor, so dependencies are available without
// decompressing or decoding the payload.
package container
