// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// testMarker precedes every thing from head version 0x254 (and LD
// branch revision 9).
const testMarker = 0xaa

// Head version thresholds local to the thing header.
const (
	oldEmitterAdded   = 0x1c7
	jointArrayAdded   = 0x1a6
	jointArrayRemoved = 0x1bc
	stampingAdded     = 0x21a // gated as "after"
	hiddenAdded       = 0x2f2
)

// Presence gates for the thing header fields.
var (
	markerGate = revision.AnyGate{
		revision.Since(revision.ThingTestMarker),
		revision.OnBranch(revision.Leerdammer, revision.LDTestMarker),
	}
	worldGate          = revision.Before(revision.ThingWorldRemoved)
	oldEmitterGate     = revision.Since(oldEmitterAdded)
	jointArrayGate     = revision.Gate{MinVersion: jointArrayAdded, MaxVersion: jointArrayRemoved}
	creatorHistoryGate = revision.Since(revision.ThingCreatorHistory)
	stampingGate       = revision.Gate{MinVersion: stampingAdded + 1, MaxVersion: revision.ThingFlags}
	planGUIDGate       = revision.Since(revision.ThingPlanGUID)
	hiddenGate         = revision.Since(hiddenAdded)
	extraFlagsGate     = revision.SinceSub(revision.ThingExtraFlags)
)

// ErrNoCodec means a flagged part has no payload codec.
var ErrNoCodec = errors.New("no codec for part")

// PartError is the failure of one part body. It is fatal to the thing
// and to the enclosing decode.
type PartError struct {
	Part Part
	UID  int32
	Err  error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("thing %d: part %s: %v", e.UID, e.Part, e.Err)
}

func (e *PartError) Unwrap() error { return e.Err }

// Thing is one game-world entity. Relations to other things are
// handles into the owning [Graph]'s arena.
type Thing struct {
	UID int32

	World      serial.Handle
	Parent     serial.Handle
	GroupHead  serial.Handle
	OldEmitter serial.Handle

	CreatedBy int16
	ChangedBy int16

	IsStamping bool
	PlanGUID   descriptor.GUID
	Hidden     bool
	Flags      int16
	ExtraFlags int8

	parts [PartCount]Payload
}

// New returns a thing with the given UID and the default creator
// history (-1, meaning none).
func New(uid int32) Thing {
	return Thing{UID: uid, CreatedBy: -1, ChangedBy: -1}
}

// Part returns the payload in slot p, or nil.
func (t *Thing) Part(p Part) Payload {
	if int(p) >= PartCount {
		return nil
	}
	return t.parts[p]
}

// Has reports whether slot p is populated.
func (t *Thing) Has(p Part) bool { return t.Part(p) != nil }

// SetPart stores payload in its slot.
func (t *Thing) SetPart(payload Payload) {
	t.parts[payload.Part()] = payload
}

// ClearPart empties slot p.
func (t *Thing) ClearPart(p Part) {
	if int(p) < PartCount {
		t.parts[p] = nil
	}
}

// Parts returns the populated slots in slot order.
func (t *Thing) Parts() []Part {
	var parts []Part
	for index, payload := range t.parts {
		if payload != nil {
			parts = append(parts, Part(index))
		}
	}
	return parts
}

// PartOf returns t's payload of type P, if that slot is populated.
func PartOf[P Payload](t *Thing) (P, bool) {
	var zero P
	payload := t.Part(zero.Part())
	typed, ok := payload.(P)
	return typed, ok
}

// Graph owns a set of things that refer to each other, and serializes
// them.
type Graph struct {
	Things *serial.Arena[Thing]
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Things: serial.NewArena[Thing]()}
}

// Add stores t and returns its handle.
func (g *Graph) Add(t Thing) serial.Handle {
	return g.Things.Add(t)
}

// Get returns the thing for h, or nil.
func (g *Graph) Get(h serial.Handle) *Thing {
	return g.Things.Get(h)
}

// Reference reads or writes a thing reference. The first reference to
// a thing in a session carries the thing inline.
func (g *Graph) Reference(s *serial.Serializer, h serial.Handle) serial.Handle {
	return serial.Reference(s, g.Things, h, g.serialize)
}

// References reads or writes a count-prefixed list of thing
// references.
func (g *Graph) References(s *serial.Serializer, handles []serial.Handle) []serial.Handle {
	return serial.ArrayFunc(s, handles, func(s *serial.Serializer, h *serial.Handle) {
		*h = g.Reference(s, *h)
	})
}

// serialize is the thing body codec.
func (g *Graph) serialize(s *serial.Serializer, t *Thing) {
	rev := s.Revision()
	version := rev.Version()

	if markerGate.Allows(rev) {
		if marker := s.U8(testMarker); marker != testMarker && s.Err() == nil {
			s.Fail(fmt.Errorf("thing marker 0x%02x: %w", marker, serial.ErrBadMarker))
			return
		}
	}

	if worldGate.Allows(rev) {
		world := t.World
		if s.IsWriting() && !s.WorldReferences() {
			world = 0
		}
		world = g.Reference(s, world)
		if !s.IsWriting() {
			t.World = world
		}
	}
	if version < revision.ThingUIDFirst {
		t.Parent = g.Reference(s, t.Parent)
		t.UID = s.I32(t.UID)
	} else {
		t.UID = s.I32(t.UID)
		t.Parent = g.Reference(s, t.Parent)
	}

	t.GroupHead = g.Reference(s, t.GroupHead)
	if oldEmitterGate.Allows(rev) {
		t.OldEmitter = g.Reference(s, t.OldEmitter)
	}

	// A short-lived joint array on the thing itself. Always written
	// empty; read and dropped.
	if jointArrayGate.Allows(rev) {
		serial.ArrayFunc(s, nil, func(s *serial.Serializer, joint *PJoint) {
			joint.SerializePart(s, g)
		})
	}

	if creatorHistoryGate.Allows(rev) {
		t.CreatedBy = s.I16(t.CreatedBy)
		t.ChangedBy = s.I16(t.ChangedBy)
	} else if !s.IsWriting() {
		t.CreatedBy, t.ChangedBy = -1, -1
	}

	if version < revision.ThingFlags {
		if stampingGate.Allows(rev) {
			t.IsStamping = s.Bool(t.IsStamping)
		}
		if planGUIDGate.Allows(rev) {
			t.PlanGUID = s.GUID(t.PlanGUID)
		}
		if hiddenGate.Allows(rev) {
			t.Hidden = s.Bool(t.Hidden)
		}
	} else {
		t.PlanGUID = s.GUID(t.PlanGUID)
		if rev.Has(revision.Double11, revision.D1ThingFlags) {
			t.Flags = s.I16(t.Flags)
		} else {
			t.Flags = int16(s.I8(int8(t.Flags)))
		}
		if extraFlagsGate.Allows(rev) {
			t.ExtraFlags = s.I8(t.ExtraFlags)
		}
	}

	compressed := revision.CompressedLayout(rev)
	flags := ^uint64(0)
	partsRevision := 0
	if s.IsWriting() {
		var present uint64
		present, partsRevision = Flags(t, rev)
		partsRevision = min(partsRevision, s.MaxPartsRevision())
		if compressed {
			flags = present
		}
	}

	partsRevision = int(s.S32(int32(partsRevision)))
	if compressed {
		flags = s.U64(flags)
	}
	if version == revision.PartsQuirk {
		partsRevision += 7
	}
	if s.Err() != nil {
		return
	}

	parts := PartsFromFlags(rev, flags, partsRevision)
	s.Logger().Debug("thing",
		"uid", t.UID,
		"parts_revision", partsRevision,
		"parts", len(parts),
	)
	for _, part := range parts {
		s.Scope(part.String(), func() {
			g.serializePart(s, t, part, compressed)
		})
		if s.Err() != nil {
			s.WrapError(func(err error) error {
				return &PartError{Part: part, UID: t.UID, Err: err}
			})
			return
		}
	}
}

// serializePart reads or writes one part body. Old layouts precede
// every admitted part with a presence boolean.
func (g *Graph) serializePart(s *serial.Serializer, t *Thing, part Part, compressed bool) {
	if !compressed {
		present := s.Bool(t.parts[part] != nil)
		if !present {
			if !s.IsWriting() {
				t.parts[part] = nil
			}
			return
		}
	}

	payload := t.parts[part]
	if !s.IsWriting() {
		payload = newPayload(part)
		if payload == nil {
			s.Fail(ErrNoCodec)
			return
		}
	}
	s.Logger().Debug("part", "part", part.String(), "uid", t.UID)
	payload.SerializePart(s, g)
	if !s.IsWriting() && s.Err() == nil {
		t.parts[part] = payload
	}
}
