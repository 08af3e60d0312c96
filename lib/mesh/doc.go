// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mesh implements the skinned mesh resource as far as routing
// it through containers requires: the header counts, raw vertex
// streams, skeleton, primitives and the softbody records, each gated on
// the revisions that introduced them. Vertex attribute decoding is not
// provided; the streams are carried as opaque bytes.
package mesh
