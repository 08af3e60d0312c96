// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"fmt"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
)

// Resource reference kind tags.
const (
	refNone uint8 = 0
	refHash uint8 = 1
	refGUID uint8 = 2
)

// GUID reads or writes a GUID in the [Serializer.U32] form.
func (s *Serializer) GUID(v descriptor.GUID) descriptor.GUID {
	return descriptor.GUID(s.U32(uint32(v)))
}

// SHA1 reads or writes 20 raw hash bytes.
func (s *Serializer) SHA1(v descriptor.SHA1) descriptor.SHA1 {
	if s.writing {
		s.put(v[:]...)
		return v
	}
	b := s.take(len(v))
	if b == nil {
		return descriptor.SHA1{}
	}
	copy(v[:], b)
	return v
}

// Resource reads or writes a resource reference. The wire form is a
// flags word (head version 0x22e onwards), a kind byte (0 none, 1 hash,
// 2 guid), then the GUID or the 20 hash bytes. Decoded descriptors are
// tagged with resourceType. Every non-null reference is recorded as a
// session dependency.
func (s *Serializer) Resource(d descriptor.Descriptor, resourceType descriptor.ResourceType) descriptor.Descriptor {
	hasFlags := s.config.Revision.Version() >= revision.ResourceFlags

	if s.writing {
		if hasFlags {
			s.U32(d.Flags)
		}
		switch {
		case d.IsHash():
			s.U8(refHash)
			s.SHA1(d.SHA1())
		case d.IsGUID():
			s.U8(refGUID)
			s.GUID(d.GUID())
		default:
			s.U8(refNone)
		}
		s.AddDependency(d.WithType(resourceType))
		return d
	}

	var flags uint32
	if hasFlags {
		flags = s.U32(0)
	}
	var decoded descriptor.Descriptor
	switch kind := s.U8(0); kind {
	case refNone:
		return descriptor.Descriptor{}
	case refHash:
		decoded = descriptor.NewHash(s.SHA1(descriptor.SHA1{}), resourceType)
	case refGUID:
		decoded = descriptor.NewGUID(s.GUID(0), resourceType)
	default:
		s.Fail(fmt.Errorf("resource reference kind %d: %w", kind, ErrUnknownEnum))
		return descriptor.Descriptor{}
	}
	if s.err != nil {
		return descriptor.Descriptor{}
	}
	decoded.Flags = flags
	s.AddDependency(decoded)
	return decoded
}

// EncodeResourceRef returns the wire form of a resource reference at
// the given revision and compression flags. Dependency replacement
// searches payloads for these bytes.
func EncodeResourceRef(d descriptor.Descriptor, rev revision.Revision, flags CompressionFlags) []byte {
	s := NewWriter(Config{Revision: rev, Flags: flags})
	s.Resource(d, d.Type)
	return s.Bytes()
}
