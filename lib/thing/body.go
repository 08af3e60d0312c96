// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/serial"
)

const (
	bodyVelocityRemoved  = 0x147
	bodyEditingPlayer    = 0x22c
	posBoneOwner         = 0x1d0
	posAnimHash          = 0x341
	renderMeshVisibility = 0x215
	renderMeshPoppet     = 0x2ec
)

// PBody is the physics body.
type PBody struct {
	PosVel        serial.Vector3
	AngVel        float32
	Frozen        int32
	EditingPlayer serial.Handle
}

func (*PBody) Part() Part { return PartBody }

func (b *PBody) SerializePart(s *serial.Serializer, g *Graph) {
	version := s.Revision().Version()
	if version < bodyVelocityRemoved {
		b.PosVel = s.V3(b.PosVel)
		b.AngVel = s.F32(b.AngVel)
	}
	b.Frozen = s.I32(b.Frozen)
	if version >= bodyEditingPlayer {
		b.EditingPlayer = g.Reference(s, b.EditingPlayer)
	}
}

// PPos is the thing's transform.
type PPos struct {
	ThingOfWhichIAmABone serial.Handle
	AnimHash             int32
	LocalPosition        serial.Matrix44
	WorldPosition        serial.Matrix44
}

func (*PPos) Part() Part { return PartPos }

func (p *PPos) SerializePart(s *serial.Serializer, g *Graph) {
	version := s.Revision().Version()
	if version >= posBoneOwner {
		p.ThingOfWhichIAmABone = g.Reference(s, p.ThingOfWhichIAmABone)
	}
	if version >= posAnimHash {
		p.AnimHash = s.I32(p.AnimHash)
	}
	p.LocalPosition = s.M44(p.LocalPosition)
	p.WorldPosition = s.M44(p.WorldPosition)
}

// PRenderMesh binds a mesh and its skinning to the thing.
type PRenderMesh struct {
	Mesh       descriptor.Descriptor
	BoneThings []serial.Handle
	Anim       descriptor.Descriptor
	AnimPos    float32
	AnimSpeed  float32
	AnimLoop   bool
	LoopStart  float32
	LoopEnd    float32

	// VisibilityFlags replaced a single visible boolean; below head
	// 0x215 it reads as 1 or 0.
	VisibilityFlags uint8

	PoppetRenderScale float32
}

func (*PRenderMesh) Part() Part { return PartRenderMesh }

func (r *PRenderMesh) SerializePart(s *serial.Serializer, g *Graph) {
	version := s.Revision().Version()
	r.Mesh = s.Resource(r.Mesh, descriptor.TypeMesh)
	r.BoneThings = g.References(s, r.BoneThings)
	r.Anim = s.Resource(r.Anim, descriptor.TypeAnimation)
	r.AnimPos = s.F32(r.AnimPos)
	r.AnimSpeed = s.F32(r.AnimSpeed)
	r.AnimLoop = s.Bool(r.AnimLoop)
	r.LoopStart = s.F32(r.LoopStart)
	r.LoopEnd = s.F32(r.LoopEnd)
	if version >= renderMeshVisibility {
		r.VisibilityFlags = s.U8(r.VisibilityFlags)
	} else {
		visible := s.Bool(r.VisibilityFlags != 0)
		if !s.IsWriting() {
			r.VisibilityFlags = 0
			if visible {
				r.VisibilityFlags = 1
			}
		}
	}
	if version >= renderMeshPoppet {
		r.PoppetRenderScale = s.F32(r.PoppetRenderScale)
	}
}

// PScriptName names a thing for script lookups.
type PScriptName struct {
	Name string
}

func (*PScriptName) Part() Part { return PartScriptName }

func (n *PScriptName) SerializePart(s *serial.Serializer, _ *Graph) {
	n.Name = s.String(n.Name)
}
