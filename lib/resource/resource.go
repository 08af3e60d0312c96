// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/mesh"
	"github.com/bureau-foundation/resforge/lib/plan"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/slot"
)

var (
	// ErrNotBinary is returned when a structure is requested from a
	// container that is not binary or encrypted binary.
	ErrNotBinary = errors.New("container is not binary")

	// ErrTypeMismatch is returned by [Load] when the container type
	// differs from the requested structure's type.
	ErrTypeMismatch = errors.New("resource type mismatch")

	// ErrUnsupportedType is returned by [LoadBytes] and [Respec] for
	// container types without a registered structure.
	ErrUnsupportedType = errors.New("unsupported resource type")
)

// Resource is a top-level structure stored in its own container.
type Resource interface {
	serial.Serializable
	ResourceType() descriptor.ResourceType
}

// dependencyInheritor is implemented by resources whose payload holds
// references that their own Serialize does not visit, such as a plan's
// thing sub-buffer. Load hands them the container's dependency table so
// a rebuild keeps it.
type dependencyInheritor interface {
	InheritDependencies(dependencies []descriptor.Descriptor)
}

var factories = map[descriptor.ResourceType]func() Resource{
	descriptor.TypePlan:     func() Resource { return new(plan.Plan) },
	descriptor.TypeMesh:     func() Resource { return new(mesh.Mesh) },
	descriptor.TypeSlotList: func() Resource { return new(slot.List) },
}

// Supported reports whether [LoadBytes] can decode containers of t.
func Supported(t descriptor.ResourceType) bool {
	_, ok := factories[t]
	return ok
}

// Options configure loading and building.
type Options struct {
	// Logger receives serializer tracing. If nil, a no-op logger is
	// used.
	Logger *slog.Logger

	// Cipher overrides the container cipher for encrypted resources.
	Cipher container.Cipher
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) containerOptions() container.Options {
	return container.Options{Cipher: o.Cipher, Logger: o.Logger}
}

// Load decodes a T from c. The container must be binary and of T's
// resource type.
func Load[T any, PT interface {
	*T
	Resource
}](c *container.Container, opts Options) (PT, error) {
	value := PT(new(T))
	if err := decodeInto(c, value, opts); err != nil {
		return nil, err
	}
	return value, nil
}

func decodeInto(c *container.Container, value Resource, opts Options) error {
	if !c.Method.IsBinary() {
		return fmt.Errorf("loading %s: %w (method %s)", value.ResourceType(), ErrNotBinary, c.Method)
	}
	if c.Type != value.ResourceType() {
		return fmt.Errorf("loading %s from %s container: %w", value.ResourceType(), c.Type, ErrTypeMismatch)
	}
	reader := c.Serializer(serial.Config{Logger: opts.Logger})
	reader.Scope(c.Type.String(), func() {
		value.Serialize(reader)
	})
	if err := reader.Err(); err != nil {
		return fmt.Errorf("decoding %s at %s: %w", c.Type, c.Revision, err)
	}
	if inheritor, ok := value.(dependencyInheritor); ok {
		inheritor.InheritDependencies(c.Dependencies)
	}
	return nil
}

// LoadContainer decodes the structure registered for c's type.
func LoadContainer(c *container.Container, opts Options) (Resource, error) {
	factory, ok := factories[c.Type]
	if !ok {
		return nil, fmt.Errorf("loading %s: %w", c.Type, ErrUnsupportedType)
	}
	value := factory()
	if err := decodeInto(c, value, opts); err != nil {
		return nil, err
	}
	return value, nil
}

// LoadBytes decodes a framed buffer and the structure registered for
// its type. The container is returned alongside the structure so the
// caller can rebuild at the original revision.
func LoadBytes(data []byte, opts Options) (Resource, *container.Container, error) {
	c, err := container.DecodeWith(data, opts.containerOptions())
	if err != nil {
		return nil, nil, err
	}
	if !c.IsFramed() {
		return nil, c, fmt.Errorf("loading %d bytes: %w", len(data), ErrNotBinary)
	}
	value, err := LoadContainer(c, opts)
	if err != nil {
		return nil, c, err
	}
	return value, c, nil
}

// Build serializes r at rev with flags and frames the result. The
// dependency table is the set of references the write session saw.
func Build(r Resource, rev revision.Revision, flags serial.CompressionFlags, opts Options) (*container.Container, error) {
	writer := serial.NewWriter(serial.Config{
		Revision: rev,
		Flags:    flags,
		Logger:   opts.Logger,
	})
	resourceType := r.ResourceType()
	writer.Scope(resourceType.String(), func() {
		r.Serialize(writer)
	})
	if err := writer.Err(); err != nil {
		return nil, fmt.Errorf("encoding %s at %s: %w", resourceType, rev, err)
	}
	opts.logger().Debug("built resource",
		"type", resourceType,
		"revision", rev,
		"flags", flags,
		"payload_bytes", len(writer.Bytes()),
		"dependencies", len(writer.Dependencies()),
	)
	return container.NewBinary(resourceType, rev, flags, writer.Bytes(), writer.Dependencies()), nil
}

// Encode builds r and returns the framed bytes.
func Encode(r Resource, rev revision.Revision, flags serial.CompressionFlags, opts Options) ([]byte, error) {
	c, err := Build(r, rev, flags, opts)
	if err != nil {
		return nil, err
	}
	return c.EncodeWith(opts.containerOptions())
}

// CompressionFlagsFor returns the compression flags a tool writes when
// targeting rev: every compact encoding where the format can record
// them, none otherwise.
func CompressionFlagsFor(rev revision.Revision) serial.CompressionFlags {
	if revision.DefaultCompression(rev) {
		return serial.CompressionAll
	}
	return serial.CompressionNone
}

// Respec rebuilds c at rev. Plans have their thing sub-buffer
// re-encoded at rev as well. flags are derived from rev with
// [CompressionFlagsFor].
func Respec(c *container.Container, rev revision.Revision, opts Options) (*container.Container, error) {
	return RespecWith(c, rev, CompressionFlagsFor(rev), opts)
}

// RespecWith is [Respec] with explicit compression flags.
func RespecWith(c *container.Container, rev revision.Revision, flags serial.CompressionFlags, opts Options) (*container.Container, error) {
	value, err := LoadContainer(c, opts)
	if err != nil {
		return nil, err
	}
	if p, ok := value.(*plan.Plan); ok {
		if err := p.Retarget(rev, flags, opts.Logger); err != nil {
			return nil, err
		}
	}
	rebuilt, err := Build(value, rev, flags, opts)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("respecified resource",
		"type", c.Type,
		"from", c.Revision,
		"to", rev,
		"flags", flags,
	)
	return rebuilt, nil
}
