// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"fmt"
	"reflect"
)

// Serializable is implemented by every structure with a bidirectional
// Serialize method.
type Serializable interface {
	Serialize(s *Serializer)
}

// serializablePtr constrains PT to a pointer to T that implements
// [Serializable], so the generic helpers can allocate a T on read.
type serializablePtr[T any] interface {
	*T
	Serializable
}

// Struct reads or writes one nested structure. On read, value is
// ignored and a freshly allocated structure is returned.
func Struct[T any, PT serializablePtr[T]](s *Serializer, value PT) PT {
	if !s.writing || value == nil {
		value = PT(new(T))
	}
	s.Scope(typeName[T](), func() {
		value.Serialize(s)
	})
	return value
}

// Optional reads or writes a presence boolean followed by the
// structure when present. A nil value is written as absent.
func Optional[T any, PT serializablePtr[T]](s *Serializer, value PT) PT {
	if !s.Bool(value != nil) {
		return nil
	}
	return Struct[T, PT](s, value)
}

// Array reads or writes a count-prefixed slice of structures. The
// count is always written explicitly; on read it is validated against
// the remaining input before the slice is allocated.
func Array[T any, PT serializablePtr[T]](s *Serializer, items []T) []T {
	count := s.count(len(items), 1)
	if s.err != nil {
		return items
	}
	if !s.writing {
		items = make([]T, count)
	}
	s.Scope(typeName[T]()+"[]", func() {
		for i := range items {
			PT(&items[i]).Serialize(s)
			if s.err != nil {
				return
			}
		}
	})
	return items
}

// ArrayFunc is [Array] for element types that are serialized by a
// function rather than a method, such as types from other packages or
// elements that need session context.
func ArrayFunc[T any](s *Serializer, items []T, each func(s *Serializer, item *T)) []T {
	count := s.count(len(items), 1)
	if s.err != nil {
		return items
	}
	if !s.writing {
		items = make([]T, count)
	}
	for i := range items {
		each(s, &items[i])
		if s.err != nil {
			break
		}
	}
	return items
}

// Enum8 reads or writes a one-byte enum tag. A decoded tag rejected by
// valid fails the session with [ErrUnknownEnum].
func Enum8[E ~uint8 | ~int8](s *Serializer, value E, valid func(E) bool) E {
	decoded := E(s.U8(uint8(value)))
	if !s.writing && s.err == nil && !valid(decoded) {
		s.Fail(fmt.Errorf("%s tag %d: %w", typeName[E](), decoded, ErrUnknownEnum))
		return 0
	}
	return decoded
}

// Enum32 reads or writes an enum tag in the [Serializer.I32] form.
func Enum32[E ~int32 | ~uint32](s *Serializer, value E, valid func(E) bool) E {
	decoded := E(s.I32(int32(value)))
	if !s.writing && s.err == nil && !valid(decoded) {
		s.Fail(fmt.Errorf("%s tag %d: %w", typeName[E](), decoded, ErrUnknownEnum))
		return 0
	}
	return decoded
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().Name()
}
