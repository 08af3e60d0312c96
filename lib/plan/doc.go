// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package plan implements the plan resource: a prefab thing graph
// stored as an opaque sub-buffer, plus the inventory details shown for
// it in the game's popit menu.
//
// The thing graph is serialized separately from the plan itself, at the
// revision and compression flags recorded on the plan. [Plan.Things]
// decodes it on demand into a fresh [thing.Graph]; [Plan.SetThings]
// re-encodes a graph and records its dependencies. Backporting a plan
// to an older revision is Things, SetThings at the target revision, and
// a rebuild.
package plan
