// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration for resforge's own files:
// the registry annotation cache and the archive export manifest. The
// game's resource formats are binary and handled by lib/serial; CBOR
// only covers metadata this tool writes for itself.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same logical value always produces the same bytes and manifests can
// be compared or hashed directly.
//
//	data, err := codec.Marshal(manifest)
//	err = codec.Unmarshal(data, &manifest)
//
// Types that implement encoding.TextMarshaler, such as
// descriptor.SHA1, are written as CBOR text strings, which keeps
// [Diagnose] output readable.
package codec
