// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

const (
	shapeMassDepth    = 0x1f0
	shapeBrightness   = 0x22a
	shapeContactCache = 0x2ec
)

// Contact is one cached collision with another shape.
type Contact struct {
	Shape serial.Handle
	Flags uint8
}

// ContactCache is the collision cache stored with a shape.
type ContactCache struct {
	Contacts       []Contact
	ContactsSorted bool

	// CacheDirtyButRecomputed exists below sub-version 0x46.
	CacheDirtyButRecomputed bool
}

func (c *ContactCache) serialize(s *serial.Serializer, g *Graph) {
	c.Contacts = serial.ArrayFunc(s, c.Contacts, func(s *serial.Serializer, contact *Contact) {
		contact.Shape = g.Reference(s, contact.Shape)
		contact.Flags = s.U8(contact.Flags)
	})
	c.ContactsSorted = s.Bool(c.ContactsSorted)
	if s.Revision().SubVersion() < revision.ContactCacheDirty {
		c.CacheDirtyButRecomputed = s.Bool(c.CacheDirtyButRecomputed)
	}
}

// PShape is the collision outline and material of a thing.
type PShape struct {
	Material descriptor.Descriptor
	Polygon  []serial.Vector3
	Loops    []int32

	Thickness  float32
	MassDepth  float32
	Color      uint32
	Brightness float32

	InteractPlayMode uint8
	InteractEditMode uint8
	CollidableGame   bool
	CollidablePoppet bool

	ContactCache ContactCache
}

func (*PShape) Part() Part { return PartShape }

func (p *PShape) SerializePart(s *serial.Serializer, g *Graph) {
	version := s.Revision().Version()
	p.Material = s.Resource(p.Material, descriptor.TypeMaterial)
	p.Polygon = serial.ArrayFunc(s, p.Polygon, func(s *serial.Serializer, vertex *serial.Vector3) {
		*vertex = s.V3(*vertex)
	})
	p.Loops = s.IntArray(p.Loops)
	p.Thickness = s.F32(p.Thickness)
	if version >= shapeMassDepth {
		p.MassDepth = s.F32(p.MassDepth)
	}
	p.Color = s.U32F(p.Color)
	if version >= shapeBrightness {
		p.Brightness = s.F32(p.Brightness)
	}
	p.InteractPlayMode = s.U8(p.InteractPlayMode)
	p.InteractEditMode = s.U8(p.InteractEditMode)
	p.CollidableGame = s.Bool(p.CollidableGame)
	p.CollidablePoppet = s.Bool(p.CollidablePoppet)
	if version >= shapeContactCache {
		s.Scope("contact_cache", func() {
			p.ContactCache.serialize(s, g)
		})
	}
}
