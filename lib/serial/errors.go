// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by [DecodeError].
var (
	// ErrTruncated means the input ended inside a value.
	ErrTruncated = errors.New("input truncated")

	// ErrBadLength means a length or count prefix cannot be satisfied
	// by the remaining input, or a value is too long for its field.
	ErrBadLength = errors.New("bad length prefix")

	// ErrUnknownEnum means an enum tag outside the known set.
	ErrUnknownEnum = errors.New("unknown enum tag")

	// ErrUnresolvedReference means a reference token that the session
	// never introduced, or one introduced for a different arena.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrBadMarker means a fixed marker byte did not match.
	ErrBadMarker = errors.New("bad marker")
)

// DecodeError is the failure recorded by a [Serializer]. Offset is the
// cursor position (read) or buffer length (write) when the failure
// happened; Field is the dotted scope path of the structure being
// processed.
type DecodeError struct {
	Offset int
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("serial: at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("serial: %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
