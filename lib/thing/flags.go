// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"github.com/bureau-foundation/resforge/lib/revision"
)

// creatorAnimBit is the flag bit of the creator-anim part below
// sub-version 0x107.
const creatorAnimBit = 0x29

// scanned reports whether the flag scan considers p at rev.
func scanned(p Part, rev revision.Revision) bool {
	version := rev.Version()
	switch {
	case p >= PartTriggerEffector && p <= PartCamera:
		return version < revision.LegacyPartsRemoved
	case p == PartParticleEmitter2:
		return version < revision.LatePartRemoved
	case p == PartCreatorAnim:
		return rev.SubVersion() < revision.CreatorAnimShift
	default:
		return true
	}
}

// FlagBit returns the presence-flag bit for p at rev. Below
// sub-version 0x107 the creator-anim part occupies bit 0x29 and every
// part after slot 0x28 moves up one bit to make room.
func FlagBit(p Part, rev revision.Revision) int {
	if rev.SubVersion() >= revision.CreatorAnimShift {
		return int(p)
	}
	switch {
	case p == PartCreatorAnim:
		return creatorAnimBit
	case p > 0x28:
		return int(p) + 1
	default:
		return int(p)
	}
}

// Flags computes the presence flags and parts revision for writing t
// at rev. The parts revision is the highest introduction version of
// any present, scanned part, or zero for a thing with no parts. The
// caller clamps it to the session maximum.
func Flags(t *Thing, rev revision.Revision) (flags uint64, partsRevision int) {
	for index, payload := range t.parts {
		part := Part(index)
		if payload == nil || !scanned(part, rev) {
			continue
		}
		flags |= 1 << FlagBit(part, rev)
		partsRevision = max(partsRevision, part.Version())
	}
	return flags, partsRevision
}

// PartsFromFlags returns the parts a thing serializes at rev, in
// serialization order, given its presence flags and parts revision.
// Old layouts carry no flags word and pass all bits set; presence is
// then decided per part by a boolean on the wire.
func PartsFromFlags(rev revision.Revision, flags uint64, partsRevision int) []Part {
	var parts []Part
	for _, part := range historyOrder {
		if part.Version() > partsRevision || !scanned(part, rev) {
			continue
		}
		if flags&(1<<FlagBit(part, rev)) == 0 {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}
