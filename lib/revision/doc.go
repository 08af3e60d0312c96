// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package revision describes the format revision a resource was
// written at and the predicates that gate individual fields on it.
//
// A [Revision] packs two numbers into its 32-bit head word: the low 16
// bits are the head version (the number almost every gate compares
// against) and the high 16 bits are the sub-version, which later games
// bumped independently. Vendor branches add a branch id and a branch
// revision on top; a field gated on a branch is present only when the
// branch id matches and the branch revision is high enough.
//
// Gates are deliberately independent. Two logically related fields may
// be gated on different head versions, on a sub-version, or on any of
// several branch conditions, so every gate is spelled out as its own
// [Gate] value rather than derived from a neighbour. The named
// thresholds in revisions.go are the ones shared between packages.
package revision
