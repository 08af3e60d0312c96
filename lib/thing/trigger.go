// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import "github.com/bureau-foundation/resforge/lib/serial"

const (
	triggerHysteresis = 0x19c
	triggerAllZLayers = 0x1dd
	triggerEnabled    = 0x2a0
	triggerZOffset    = 0x2ec
)

// TriggerType is the detection shape of a trigger.
type TriggerType uint8

const (
	TriggerRadius TriggerType = iota
	TriggerRect
	TriggerSwitch
	TriggerKill
	TriggerRadiusAllZ
	TriggerRadiusPlayers
	triggerTypeCount
)

func validTriggerType(t TriggerType) bool { return t < triggerTypeCount }

// PTrigger detects things entering a region.
type PTrigger struct {
	Type                 TriggerType
	InThings             []serial.Handle
	Radius               float32
	HysteresisMultiplier float32
	AllZLayers           bool
	Enabled              bool
	ZOffset              float32
	ZRange               int32
}

func (*PTrigger) Part() Part { return PartTrigger }

func (t *PTrigger) SerializePart(s *serial.Serializer, g *Graph) {
	version := s.Revision().Version()
	t.Type = serial.Enum8(s, t.Type, validTriggerType)
	t.InThings = g.References(s, t.InThings)
	t.Radius = s.F32(t.Radius)
	if version >= triggerHysteresis {
		t.HysteresisMultiplier = s.F32(t.HysteresisMultiplier)
	}
	if version >= triggerAllZLayers {
		t.AllZLayers = s.Bool(t.AllZLayers)
	}
	if version >= triggerEnabled {
		t.Enabled = s.Bool(t.Enabled)
	}
	if version >= triggerZOffset {
		t.ZOffset = s.F32(t.ZOffset)
		t.ZRange = s.S32(t.ZRange)
	}
}
