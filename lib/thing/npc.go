// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

const npcJumpDataAdded = 0x1a0

// NpcMoveCmd is one step of a scripted NPC jump.
type NpcMoveCmd struct {
	Command int32
	Amount  float32
	Frames  int32
}

func (c *NpcMoveCmd) Serialize(s *serial.Serializer) {
	c.Command = s.I32(c.Command)
	c.Amount = s.F32(c.Amount)
	c.Frames = s.I32(c.Frames)
}

// NpcJumpData is a precomputed jump arc.
type NpcJumpData struct {
	A, B, C float32
	Min     serial.Vector3
	Max     serial.Vector3

	// Present after head version 0x272.
	Flipped     bool
	CommandList []NpcMoveCmd
	Apex        serial.Vector3
}

func (j *NpcJumpData) Serialize(s *serial.Serializer) {
	j.A = s.F32(j.A)
	j.B = s.F32(j.B)
	j.C = s.F32(j.C)
	j.Min = s.V3(j.Min)
	j.Max = s.V3(j.Max)
	if s.Revision().IsAfter(revision.NpcJumpApex) {
		j.Flipped = s.Bool(j.Flipped)
		j.CommandList = serial.Array(s, j.CommandList)
		j.Apex = s.V3(j.Apex)
	}
}

// PNpc drives a non-player character.
type PNpc struct {
	MoveType       int32
	WalkSpeed      float32
	BehaviourFlags uint32
	JumpData       []NpcJumpData
	Target         serial.Handle
}

func (*PNpc) Part() Part { return PartNpc }

func (n *PNpc) SerializePart(s *serial.Serializer, g *Graph) {
	n.MoveType = s.I32(n.MoveType)
	n.WalkSpeed = s.F32(n.WalkSpeed)
	n.BehaviourFlags = s.U32(n.BehaviourFlags)
	if s.Revision().Version() >= npcJumpDataAdded {
		n.JumpData = serial.Array(s, n.JumpData)
	}
	n.Target = g.Reference(s, n.Target)
}
