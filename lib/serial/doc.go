// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package serial implements the bidirectional binary codec that every
// resource structure is written against.
//
// A [Serializer] is one session: it is bound to a single revision,
// a single set of [CompressionFlags], and a single direction. Every
// accessor takes the caller's current value and returns the
// authoritative one. While writing, the value is appended to the
// output buffer and returned unchanged; while reading, the argument is
// ignored and the decoded value is returned. A structure therefore
// defines one method that is both its encoder and its decoder:
//
//	func (b *Bone) Serialize(s *serial.Serializer) {
//		b.Name = s.Str(b.Name, 32)
//		b.Flags = s.I32(b.Flags)
//		if s.Revision().Version() >= 0x136 {
//			b.Parent = s.I32(b.Parent)
//		}
//	}
//
// Errors are sticky. The first failure (truncated input, an impossible
// array length, an unknown enum tag, an unresolved reference) is
// recorded as a [*DecodeError] and every later accessor becomes a
// no-op returning the zero value. The session owner checks
// [Serializer.Err] once at the end and must discard the partially
// decoded structure when it is non-nil.
//
// Object graphs with shared or cyclic references are expressed with
// an [Arena] and [Handle]s rather than pointers; see [Reference].
//
// A Serializer is not safe for concurrent use. Sessions are meant to
// be short-lived values owned by one goroutine.
package serial
