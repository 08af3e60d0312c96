// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// Modifier bits on a script field.
const (
	ModifierStatic    uint32 = 1 << 0
	ModifierNative    uint32 = 1 << 1
	ModifierEphemeral uint32 = 1 << 2
	ModifierPublic    uint32 = 1 << 3
	ModifierDivergent uint32 = 1 << 7
)

// FieldLayoutDetails describes one member of a script instance.
type FieldLayoutDetails struct {
	Name                 string
	Modifiers            uint32
	MachineType          int32
	FishType             int32
	DimensionCount       uint8
	ArrayBaseMachineType int32
	InstanceOffset       int32
}

func (f *FieldLayoutDetails) Serialize(s *serial.Serializer) {
	f.Name = s.String(f.Name)
	f.Modifiers = s.U32(f.Modifiers)
	f.MachineType = s.I32(f.MachineType)
	f.FishType = s.I32(f.FishType)
	f.DimensionCount = s.U8(f.DimensionCount)
	f.ArrayBaseMachineType = s.I32(f.ArrayBaseMachineType)
	f.InstanceOffset = s.I32(f.InstanceOffset)
}

// Divergent reports whether the field is excluded from reflection.
func (f *FieldLayoutDetails) Divergent() bool {
	return f.Modifiers&ModifierDivergent != 0
}

// InstanceLayout is the member layout of a script instance.
type InstanceLayout struct {
	Fields       []FieldLayoutDetails
	InstanceSize int32
}

// ReflectedFields returns the indices of the fields listed in the
// reflection table.
func (l *InstanceLayout) ReflectedFields(includeDivergent bool) []int {
	var indices []int
	for index := range l.Fields {
		if includeDivergent || !l.Fields[index].Divergent() {
			indices = append(indices, index)
		}
	}
	return indices
}

func (l *InstanceLayout) Serialize(s *serial.Serializer) {
	l.Fields = serial.Array(s, l.Fields)
	if s.Revision().Version() < revision.ScriptReflection {
		l.serializeReflection(s)
	}
	l.InstanceSize = s.I32(l.InstanceSize)
}

// serializeReflection handles the name-to-index table of older
// layouts. It is derived from Fields on write and discarded on read.
func (l *InstanceLayout) serializeReflection(s *serial.Serializer) {
	var indices []int
	if s.IsWriting() {
		indices = l.ReflectedFields(false)
	}
	count := s.Count(len(indices), 2)
	for i := range count {
		var name string
		var index int32
		if s.IsWriting() {
			name = l.Fields[indices[i]].Name
			index = int32(indices[i])
		}
		s.String(name)
		s.I32(index)
		if s.Err() != nil {
			return
		}
	}
}

// PScript attaches a script instance to a thing.
type PScript struct {
	Script  descriptor.Descriptor
	Layout  *InstanceLayout
	Members []byte
}

func (*PScript) Part() Part { return PartScript }

func (p *PScript) SerializePart(s *serial.Serializer, _ *Graph) {
	p.Script = s.Resource(p.Script, descriptor.TypeScript)
	p.Layout = serial.Optional(s, p.Layout)
	p.Members = s.ByteArray(p.Members)
}
