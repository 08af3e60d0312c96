// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package thing

import "github.com/bureau-foundation/resforge/lib/serial"

// Payload is the body of one part slot. SerializePart is bidirectional
// in the [serial] sense; g resolves references to other things.
type Payload interface {
	Part() Part
	SerializePart(s *serial.Serializer, g *Graph)
}

// codecs allocates an empty payload for each part this package can
// decode. A flagged part without an entry fails the thing.
var codecs = map[Part]func() Payload{
	PartBody:       func() Payload { return &PBody{} },
	PartJoint:      func() Payload { return &PJoint{} },
	PartRenderMesh: func() Payload { return &PRenderMesh{} },
	PartPos:        func() Payload { return &PPos{} },
	PartTrigger:    func() Payload { return &PTrigger{} },
	PartScriptName: func() Payload { return &PScriptName{} },
	PartScript:     func() Payload { return &PScript{} },
	PartShape:      func() Payload { return &PShape{} },
	PartRef:        func() Payload { return &PRef{} },
	PartMetadata:   func() Payload { return &PMetadata{} },
	PartGroup:      func() Payload { return &PGroup{} },
	PartNpc:        func() Payload { return &PNpc{} },
}

func newPayload(p Part) Payload {
	if allocate, ok := codecs[p]; ok {
		return allocate()
	}
	return nil
}

// HasCodec reports whether parts in slot p can be decoded.
func HasCodec(p Part) bool {
	_, ok := codecs[p]
	return ok
}
