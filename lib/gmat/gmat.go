// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gmat

import (
	"fmt"

	"github.com/bureau-foundation/resforge/lib/serial"
)

// SwizzleElements is the number of swizzle slots on a wire.
const SwizzleElements = 5

// Wire connects an output port of one box to an input port of another.
type Wire struct {
	BoxFrom  int32
	BoxTo    int32
	PortFrom int8
	PortTo   int8
	Swizzle  [SwizzleElements]int8
}

func (w *Wire) Serialize(s *serial.Serializer) {
	w.BoxFrom = s.S32(w.BoxFrom)
	w.BoxTo = s.S32(w.BoxTo)
	w.PortFrom = s.I8(w.PortFrom)
	w.PortTo = s.I8(w.PortTo)
	for i := range w.Swizzle {
		w.Swizzle[i] = s.I8(w.Swizzle[i])
	}
}

// ParameterNameSize is the width of a parameter animation name.
const ParameterNameSize = 3

// ParameterAnimation animates up to four components of a material
// parameter. Only components that differ from BaseValue in some key
// are stored, component-major.
type ParameterAnimation struct {
	BaseValue serial.Vector4
	Keys      []serial.Vector4
	Name      string

	// ComponentsAnimated is recomputed from Keys on write.
	ComponentsAnimated uint8
}

// animatedMask returns a bit per component that differs from the base
// value in at least one key.
func (a *ParameterAnimation) animatedMask() uint8 {
	var mask uint8
	for _, key := range a.Keys {
		for c := range 4 {
			if key[c] != a.BaseValue[c] {
				mask |= 1 << c
			}
		}
	}
	return mask
}

func componentCount(mask uint8) int {
	count := 0
	for c := range 4 {
		if mask&(1<<c) != 0 {
			count++
		}
	}
	return count
}

func (a *ParameterAnimation) Serialize(s *serial.Serializer) {
	a.BaseValue = s.V4(a.BaseValue)
	if s.IsWriting() {
		a.write(s)
		return
	}
	a.read(s)
}

func (a *ParameterAnimation) write(s *serial.Serializer) {
	if len(a.Name) > ParameterNameSize {
		s.Fail(fmt.Errorf("parameter name %q exceeds %d bytes: %w", a.Name, ParameterNameSize, serial.ErrBadLength))
		return
	}
	a.ComponentsAnimated = a.animatedMask()
	components := make([]float32, 0, componentCount(a.ComponentsAnimated)*len(a.Keys))
	for c := range 4 {
		if a.ComponentsAnimated&(1<<c) == 0 {
			continue
		}
		for _, key := range a.Keys {
			components = append(components, key[c])
		}
	}
	s.FloatArray(components)
	s.I32(ParameterNameSize)
	s.Str(a.Name, ParameterNameSize)
	s.U8(a.ComponentsAnimated)
}

func (a *ParameterAnimation) read(s *serial.Serializer) {
	components := s.FloatArray(nil)
	nameSize := s.Count(0, 1)
	a.Name = s.Str("", nameSize)
	a.ComponentsAnimated = s.U8(0)
	a.Keys = nil
	if s.Err() != nil || len(components) == 0 {
		return
	}

	animated := componentCount(a.ComponentsAnimated)
	if animated == 0 || len(components)%animated != 0 {
		s.Fail(fmt.Errorf("%d components for mask 0x%x: %w", len(components), a.ComponentsAnimated, serial.ErrBadLength))
		return
	}
	a.Keys = make([]serial.Vector4, len(components)/animated)
	for i := range a.Keys {
		a.Keys[i] = a.BaseValue
	}
	offset := 0
	for c := range 4 {
		if a.ComponentsAnimated&(1<<c) == 0 {
			continue
		}
		for i := range a.Keys {
			a.Keys[i][c] = components[offset]
			offset++
		}
	}
}
