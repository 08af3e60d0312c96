// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
)

// DefaultMaxPartsRevision is the highest thing parts revision a session
// writes unless [Config.MaxPartsRevision] says otherwise.
const DefaultMaxPartsRevision = 0x3f

// Config holds the parameters of one serialization session. Revision
// is required in practice; all other fields have defaults.
type Config struct {
	// Revision selects the wire layout of every gated field.
	Revision revision.Revision

	// Flags selects the compressed integer, vector and matrix
	// encodings.
	Flags CompressionFlags

	// Logger receives per-structure tracing at debug level. If nil, a
	// no-op logger is used.
	Logger *slog.Logger

	// MaxPartsRevision clamps the parts revision written on things.
	// Zero means DefaultMaxPartsRevision.
	MaxPartsRevision int

	// DisableWorldReferences writes thing world references as null.
	DisableWorldReferences bool
}

// Serializer is one encode or decode session. See the package
// documentation for the accessor contract.
type Serializer struct {
	writing bool
	config  Config
	logger  *slog.Logger

	// data is the output buffer while writing and the input while
	// reading; offset is the read cursor.
	data   []byte
	offset int

	err   error
	scope []string

	dependencies   []descriptor.Descriptor
	dependencySeen map[string]struct{}

	refs referenceTable
}

// NewWriter starts an encode session.
func NewWriter(cfg Config) *Serializer {
	s := newSerializer(cfg)
	s.writing = true
	s.data = make([]byte, 0, 256)
	return s
}

// NewReader starts a decode session over data. The slice is not
// copied and must not be modified while the session is in use.
func NewReader(data []byte, cfg Config) *Serializer {
	s := newSerializer(cfg)
	s.data = data
	return s
}

func newSerializer(cfg Config) *Serializer {
	if cfg.MaxPartsRevision == 0 {
		cfg.MaxPartsRevision = DefaultMaxPartsRevision
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Serializer{
		config:         cfg,
		logger:         logger,
		dependencySeen: make(map[string]struct{}),
		refs:           newReferenceTable(),
	}
}

// IsWriting reports the session direction.
func (s *Serializer) IsWriting() bool { return s.writing }

// Revision returns the session revision.
func (s *Serializer) Revision() revision.Revision { return s.config.Revision }

// CompressionFlags returns the session compression flags.
func (s *Serializer) CompressionFlags() CompressionFlags { return s.config.Flags }

// Logger returns the session logger.
func (s *Serializer) Logger() *slog.Logger { return s.logger }

// MaxPartsRevision returns the clamp applied to written parts revisions.
func (s *Serializer) MaxPartsRevision() int { return s.config.MaxPartsRevision }

// WorldReferences reports whether thing world references are written.
func (s *Serializer) WorldReferences() bool { return !s.config.DisableWorldReferences }

// Bytes returns the encoded output. Only meaningful while writing.
func (s *Serializer) Bytes() []byte { return s.data }

// Offset returns the read cursor, or the output length while writing.
func (s *Serializer) Offset() int {
	if s.writing {
		return len(s.data)
	}
	return s.offset
}

// Remaining returns the unread input length. Zero while writing.
func (s *Serializer) Remaining() int {
	if s.writing {
		return 0
	}
	return len(s.data) - s.offset
}

// Seek moves the read cursor. Seeking past the end fails the session.
func (s *Serializer) Seek(offset int) {
	if s.err != nil || s.writing {
		return
	}
	if offset < 0 || offset > len(s.data) {
		s.Fail(fmt.Errorf("seek to %d of %d: %w", offset, len(s.data), ErrTruncated))
		return
	}
	s.offset = offset
}

// Err returns the first failure recorded in the session, or nil. The
// failure is a [*DecodeError], possibly wrapped by [Serializer.WrapError].
func (s *Serializer) Err() error { return s.err }

// WrapError replaces a recorded failure with wrap(failure). It is a
// no-op when the session has not failed. Callers use it to add the
// context of an enclosing structure on the way out.
func (s *Serializer) WrapError(wrap func(error) error) {
	if s.err != nil {
		s.err = wrap(s.err)
	}
}

// Fail records err as the session failure unless one is already
// recorded. err is wrapped in a [*DecodeError] carrying the current
// offset and scope.
func (s *Serializer) Fail(err error) {
	if s.err != nil || err == nil {
		return
	}
	decodeErr := &DecodeError{
		Offset: s.Offset(),
		Field:  strings.Join(s.scope, "."),
		Err:    err,
	}
	s.err = decodeErr
	s.logger.Debug("serialization failed",
		"offset", decodeErr.Offset,
		"field", decodeErr.Field,
		"error", err,
	)
}

// Scope runs fn with name pushed onto the error scope path.
func (s *Serializer) Scope(name string, fn func()) {
	s.scope = append(s.scope, name)
	fn()
	s.scope = s.scope[:len(s.scope)-1]
}

// Dependencies returns every resource descriptor that passed through
// [Serializer.Resource] in this session, in first-seen order, without
// duplicates.
func (s *Serializer) Dependencies() []descriptor.Descriptor {
	return s.dependencies
}

// AddDependency records d as a dependency of the session output. Null
// descriptors are ignored.
func (s *Serializer) AddDependency(d descriptor.Descriptor) {
	if d.IsNull() {
		return
	}
	key := d.Key()
	if _, seen := s.dependencySeen[key]; seen {
		return
	}
	s.dependencySeen[key] = struct{}{}
	s.dependencies = append(s.dependencies, d)
}

// take returns the next n input bytes, or nil after recording
// ErrTruncated.
func (s *Serializer) take(n int) []byte {
	if s.err != nil {
		return nil
	}
	if n < 0 || s.offset+n > len(s.data) {
		s.Fail(fmt.Errorf("need %d bytes, have %d: %w", n, len(s.data)-s.offset, ErrTruncated))
		return nil
	}
	chunk := s.data[s.offset : s.offset+n]
	s.offset += n
	return chunk
}

func (s *Serializer) put(bytes ...byte) {
	if s.err != nil {
		return
	}
	s.data = append(s.data, bytes...)
}

// PatchU32F overwrites four bytes of the output at offset with a
// big-endian value. Used to backpatch offsets written as placeholders.
func (s *Serializer) PatchU32F(offset int, value uint32) {
	if s.err != nil || !s.writing {
		return
	}
	if offset < 0 || offset+4 > len(s.data) {
		s.Fail(fmt.Errorf("patch at %d of %d: %w", offset, len(s.data), ErrBadLength))
		return
	}
	s.data[offset] = byte(value >> 24)
	s.data[offset+1] = byte(value >> 16)
	s.data[offset+2] = byte(value >> 8)
	s.data[offset+3] = byte(value)
}
