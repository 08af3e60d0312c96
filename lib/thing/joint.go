// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import "github.com/bureau-foundation/resforge/lib/serial"

const jointAnimationSpeed = 0x230

// JointType selects the joint's physical behaviour.
type JointType int32

const (
	JointLegacy JointType = iota
	JointElastic
	JointSpring
	JointChain
	JointPiston
	JointStrut
	JointBolt
	JointSprung
	JointMotorBolt
	JointWobbleBolt
	jointTypeCount
)

func validJointType(t JointType) bool { return t >= 0 && t < jointTypeCount }

// PJoint connects two things.
type PJoint struct {
	A        serial.Handle
	B        serial.Handle
	AContact serial.Vector3
	BContact serial.Vector3
	Length   float32
	Angle    float32
	Type     JointType
	Strength float32
	Stiff    bool

	AnimationSpeed float32
}

func (*PJoint) Part() Part { return PartJoint }

func (j *PJoint) SerializePart(s *serial.Serializer, g *Graph) {
	j.A = g.Reference(s, j.A)
	j.B = g.Reference(s, j.B)
	j.AContact = s.V3(j.AContact)
	j.BContact = s.V3(j.BContact)
	j.Length = s.F32(j.Length)
	j.Angle = s.F32(j.Angle)
	j.Type = serial.Enum32(s, j.Type, validJointType)
	j.Strength = s.F32(j.Strength)
	j.Stiff = s.Bool(j.Stiff)
	if s.Revision().Version() >= jointAnimationSpeed {
		j.AnimationSpeed = s.F32(j.AnimationSpeed)
	}
}
