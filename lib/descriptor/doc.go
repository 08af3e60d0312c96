// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package descriptor defines how resources name each other: by content
// hash ([SHA1]) or by stable database id ([GUID]), tagged with a
// [ResourceType].
//
// A [Descriptor] carries exactly one of the two addresses. Equality and
// map keys use the canonical string form ("h" + hex hash, or "g" +
// decimal GUID), so two descriptors naming the same resource compare
// equal regardless of type tag or transient flags.
//
// This package has no dependencies on other resforge packages.
package descriptor
