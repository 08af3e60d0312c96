// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package revision

// Head version thresholds shared between packages. Values are the
// first head version at which the behaviour appears.
const (
	// DependencyTable is the first version whose container header
	// carries a dependency-table offset.
	DependencyTable = 0x109

	// ResourceHeader adds the "is compressed" flag to the header.
	ResourceHeader = 0x189

	// BranchHeader adds the branch id and branch revision fields.
	BranchHeader = 0x271

	// LeerdammerHead is the head version the LD branch forked from.
	LeerdammerHead = 0x272

	// CompressionFlagsHeader adds the compression flags byte.
	CompressionFlagsHeader = 0x297

	// PartsQuirk is the single head version whose parts revision is
	// offset by seven after it is read.
	PartsQuirk = 0x13c

	// LegacyPartsRemoved drops parts 0x36..0x3c from the flag scan.
	LegacyPartsRemoved = 0x13c

	// LatePartRemoved drops part 0x3d from the flag scan.
	LatePartRemoved = 0x18c

	// PlanDetails adds inventory details to plans.
	PlanDetails = 0x197

	// ThingWorldRemoved is the first version without a world reference
	// on every thing.
	ThingWorldRemoved = 0x1fd

	// ThingCreatorHistory adds created-by / changed-by to things.
	ThingCreatorHistory = 0x214

	// ResourceFlags adds the per-reference flags word to resource
	// references.
	ResourceFlags = 0x22e

	// ThingTestMarker adds the 0xAA serialisation marker to things.
	ThingTestMarker = 0x254

	// ThingPlanGUID adds the plan GUID to things.
	ThingPlanGUID = 0x254

	// ThingUIDFirst swaps the parent / uid order on things.
	ThingUIDFirst = 0x27f

	// ThingFlags replaces the stamping / hidden booleans with a flags
	// field.
	ThingFlags = 0x341

	// MeshMinMaxUV adds UV bounds to meshes.
	MeshMinMaxUV = 0x238

	// ProductionBuild adds the production-build marker to slot lists.
	ProductionBuild = 0x3b6

	// NpcJumpApex adds the flipped / command list / apex fields to NPC
	// jump data. Gated as "after", not "since".
	NpcJumpApex = 0x272

	// ScriptReflection is the first version without the reflection
	// table in instance layouts.
	ScriptReflection = 0x1ec
)

// Sub-version thresholds.
const (
	// CreatorAnimShift is the sub-version below which the creator-anim
	// part occupies flag bit 0x29 and later parts shift up one bit.
	CreatorAnimShift = 0x107

	// ThingExtraFlags adds the extra flags byte to things.
	ThingExtraFlags = 0x110

	// Fuzz adds triangle adjacency info to meshes.
	Fuzz = 0x16b

	// MeshSkeletonType adds the skeleton type to meshes.
	MeshSkeletonType = 0x191

	// ContactCacheDirty is the sub-version that dropped the
	// dirty-but-recomputed flag from contact caches.
	ContactCacheDirty = 0x46
)

// Branch revision thresholds.
const (
	// LDResources is the LD branch revision that adopted the compressed
	// resource layout (64-bit part flags, compressed encodings).
	LDResources = 0x2

	// LDTestMarker adds the thing test marker on the LD branch.
	LDTestMarker = 0x9

	// D1ThingFlags widens the thing flags field to 16 bits.
	D1ThingFlags = 0x62

	// D1VertexColors adds vertex colours to meshes.
	D1VertexColors = 0x3
)

// CompressedLayout reports whether r uses the compressed resource
// layout: compressed integer/vector/matrix encodings by default and
// the 64-bit part flags word on things.
func CompressedLayout(r Revision) bool {
	return r.Version() >= CompressionFlagsHeader || r.Has(Leerdammer, LDResources)
}

// DefaultCompression reports whether a tool targeting r should write
// compressed encodings. This differs from [CompressedLayout] in the LD
// edge case, which requires a branch revision strictly above 1 and the
// exact fork head.
func DefaultCompression(r Revision) bool {
	if r.Version() >= CompressionFlagsHeader {
		return true
	}
	return r.Version() == LeerdammerHead && r.Is(Leerdammer) && r.BranchRevision > 1
}

// HasCompressionFlagsByte reports whether the container header at r
// carries the compression flags byte. Container header thresholds
// compare the full head word, sub-version included.
func HasCompressionFlagsByte(r Revision) bool {
	return r.Head >= CompressionFlagsHeader ||
		(r.Head == LeerdammerHead && r.BranchID != 0)
}
