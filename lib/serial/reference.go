// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"fmt"
	"iter"
)

// Handle identifies a structure in an [Arena]. Handles start at 1; the
// zero Handle is the null reference.
type Handle uint32

// IsNull reports whether h is the null reference.
func (h Handle) IsNull() bool { return h == 0 }

// Arena owns a set of structures that refer to each other by [Handle].
// Structures are stored by pointer, so a pointer returned by Get stays
// valid as the arena grows.
type Arena[T any] struct {
	items []*T
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Add stores value and returns its handle.
func (a *Arena[T]) Add(value T) Handle {
	a.items = append(a.items, &value)
	return Handle(len(a.items))
}

// New allocates a zero structure and returns its handle and address.
func (a *Arena[T]) New() (Handle, *T) {
	value := new(T)
	a.items = append(a.items, value)
	return Handle(len(a.items)), value
}

// Get returns the structure for h, or nil for the null handle or a
// handle this arena never issued.
func (a *Arena[T]) Get(h Handle) *T {
	if h == 0 || int(h) > len(a.items) {
		return nil
	}
	return a.items[h-1]
}

// Len returns the number of structures in the arena.
func (a *Arena[T]) Len() int { return len(a.items) }

// All iterates over every handle and structure in allocation order.
func (a *Arena[T]) All() iter.Seq2[Handle, *T] {
	return func(yield func(Handle, *T) bool) {
		for i, item := range a.items {
			if !yield(Handle(i+1), item) {
				return
			}
		}
	}
}

// referenceTable is the per-session token state for [Reference].
// Tokens are session-local, start at 1 and are introduced in
// increasing order; 0 is null.
type referenceTable struct {
	next     int32
	lastRead int32

	// written maps (arena, handle) to the token assigned on first
	// write.
	written map[referenceKey]int32

	// read maps a token to the arena and handle allocated the first
	// time it was decoded.
	read map[int32]referenceKey
}

type referenceKey struct {
	arena  any
	handle Handle
}

func newReferenceTable() referenceTable {
	return referenceTable{
		written: make(map[referenceKey]int32),
		read:    make(map[int32]referenceKey),
	}
}

// Reference reads or writes a non-owning reference to a structure in
// arena.
//
// While writing, a null handle is written as token 0. The first time a
// handle is seen in the session a fresh token is written followed by
// the structure itself (via body); later sightings write the token
// alone.
//
// While reading, token 0 returns the null handle. A token seen for the
// first time must be the next token in sequence; it allocates a
// placeholder in arena, records it, and then decodes the inline
// structure into the placeholder, so a reference back to a structure
// still being decoded resolves to its placeholder.
// An out-of-sequence token, or one introduced for a different arena,
// fails with [ErrUnresolvedReference].
func Reference[T any](s *Serializer, arena *Arena[T], h Handle, body func(s *Serializer, value *T)) Handle {
	if s.err != nil {
		return 0
	}
	if s.writing {
		return writeReference(s, arena, h, body)
	}

	token := s.S32(0)
	if s.err != nil || token == 0 {
		return 0
	}
	if known, ok := s.refs.read[token]; ok {
		if known.arena != any(arena) {
			s.Fail(fmt.Errorf("token %d belongs to another arena: %w", token, ErrUnresolvedReference))
			return 0
		}
		return known.handle
	}
	if token != s.refs.lastRead+1 {
		s.Fail(fmt.Errorf("token %d was never introduced: %w", token, ErrUnresolvedReference))
		return 0
	}
	s.refs.lastRead = token

	handle, placeholder := arena.New()
	s.refs.read[token] = referenceKey{arena: arena, handle: handle}
	body(s, placeholder)
	if s.err != nil {
		return 0
	}
	return handle
}

func writeReference[T any](s *Serializer, arena *Arena[T], h Handle, body func(s *Serializer, value *T)) Handle {
	value := arena.Get(h)
	if value == nil {
		s.S32(0)
		return 0
	}
	key := referenceKey{arena: arena, handle: h}
	if token, seen := s.refs.written[key]; seen {
		s.S32(token)
		return h
	}
	s.refs.next++
	token := s.refs.next
	s.refs.written[key] = token
	s.S32(token)
	body(s, value)
	return h
}
