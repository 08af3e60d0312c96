// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/serial"
)

const (
	groupFlagsAdded    = 0x18e
	groupCreatorAdded  = 0x1d6
	refLifetimeMoved   = 0x1c5
	metadataDescAdded  = 0x1bf
	metadataUnlockable = 0x2a0

	// creatorIDSize is the fixed width of a network player id.
	creatorIDSize = 0x14
)

// PGroup makes a thing the head of a group emitted from a plan.
type PGroup struct {
	PlanDescriptor descriptor.Descriptor
	Creator        string
	Emitter        serial.Handle
	Lifetime       int32
	AliveFrames    int32

	// Copyright is the pre-0x18e form of the copyright bit in Flags.
	Copyright bool
	Flags     uint8
}

func (*PGroup) Part() Part { return PartGroup }

func (p *PGroup) SerializePart(s *serial.Serializer, g *Graph) {
	version := s.Revision().Version()
	p.PlanDescriptor = s.Resource(p.PlanDescriptor, descriptor.TypePlan)
	if version >= groupCreatorAdded {
		p.Creator = s.Str(p.Creator, creatorIDSize)
	}
	p.Emitter = g.Reference(s, p.Emitter)
	p.Lifetime = s.I32(p.Lifetime)
	p.AliveFrames = s.I32(p.AliveFrames)
	if version < groupFlagsAdded {
		p.Copyright = s.Bool(p.Copyright)
	} else {
		p.Flags = s.U8(p.Flags)
	}
}

// PRef instances a plan inside a level.
type PRef struct {
	Plan               descriptor.Descriptor
	OldLifetime        int32
	OldAliveFrames     int32
	ChildrenSelectable bool
	StripChildren      bool
}

func (*PRef) Part() Part { return PartRef }

func (r *PRef) SerializePart(s *serial.Serializer, _ *Graph) {
	version := s.Revision().Version()
	r.Plan = s.Resource(r.Plan, descriptor.TypePlan)
	if version < refLifetimeMoved {
		r.OldLifetime = s.I32(r.OldLifetime)
		r.OldAliveFrames = s.I32(r.OldAliveFrames)
	}
	r.ChildrenSelectable = s.Bool(r.ChildrenSelectable)
	if version >= refLifetimeMoved {
		r.StripChildren = s.Bool(r.StripChildren)
	}
}

// PMetadata is the inventory-facing description of a thing.
type PMetadata struct {
	Title       string
	Description string
	Icon        descriptor.Descriptor
	Category    uint32
	Location    uint32
	Unlockable  bool
}

func (*PMetadata) Part() Part { return PartMetadata }

func (m *PMetadata) SerializePart(s *serial.Serializer, _ *Graph) {
	version := s.Revision().Version()
	m.Title = s.WString(m.Title)
	if version >= metadataDescAdded {
		m.Description = s.WString(m.Description)
	}
	m.Icon = s.Resource(m.Icon, descriptor.TypeTexture)
	m.Category = s.U32(m.Category)
	m.Location = s.U32(m.Location)
	if version >= metadataUnlockable {
		m.Unlockable = s.Bool(m.Unlockable)
	}
}
