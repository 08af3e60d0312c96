// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"bytes"
	"fmt"

	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/plan"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// Index resolves dependency descriptors to stored resources.
type Index interface {
	// Contains reports whether d resolves to a stored resource.
	Contains(d descriptor.Descriptor) bool

	// Extract returns the framed bytes d resolves to.
	Extract(d descriptor.Descriptor) ([]byte, error)
}

// Annotator is implemented by indexes that record the outcome of a
// recursive dependency walk on their entries.
type Annotator interface {
	Annotate(d descriptor.Descriptor, hasMissingDependencies bool, dependencies []descriptor.Descriptor)
}

// DependencyReport is the outcome of [RegisterDependencies].
type DependencyReport struct {
	// Missing counts the container's own dependencies that the index
	// could not resolve.
	Missing int

	// MissingDescriptors lists those dependencies in table order.
	MissingDescriptors []descriptor.Descriptor

	// Found counts the dependencies the index resolved.
	Found int

	// Incomplete lists resolved dependencies whose own dependency walk
	// found something missing. Only filled by a recursive walk.
	Incomplete []descriptor.Descriptor
}

// RegisterDependencies resolves c's dependency table against index.
// Non-binary containers have no table and report nothing.
//
// With recursive set, every resolved dependency is extracted, decoded
// as a container, and walked in turn. Scripts are resolved and walked
// like any other dependency, but the walk never continues out of a
// script's own table. When index is an [Annotator], each walked entry
// is annotated with whether its walk found anything missing and with
// its dependency list.
//
// Each descriptor is walked at most once per call. A later reference
// to it reuses the recorded outcome; a reference back to a descriptor
// still being walked counts as complete, so reference cycles
// terminate.
//
// Unresolvable and unreadable dependencies never fail the walk; they
// are counted and logged at debug level.
func RegisterDependencies(c *container.Container, index Index, recursive bool, opts Options) DependencyReport {
	walker := &dependencyWalker{
		index:     index,
		recursive: recursive,
		opts:      opts,
		outcomes:  make(map[string]bool),
	}
	return walker.walk(c)
}

type dependencyWalker struct {
	index     Index
	recursive bool
	opts      Options

	// outcomes maps a walked descriptor's key to whether its walk was
	// incomplete. Entries still being walked hold false.
	outcomes map[string]bool
}

func (w *dependencyWalker) walk(c *container.Container) DependencyReport {
	var report DependencyReport
	if !c.Method.IsBinary() {
		return report
	}
	descend := w.recursive && c.Type != descriptor.TypeScript
	logger := w.opts.logger()
	for _, dependency := range c.Dependencies {
		if !w.index.Contains(dependency) {
			report.Missing++
			report.MissingDescriptors = append(report.MissingDescriptors, dependency)
			logger.Debug("missing dependency", "descriptor", dependency, "type", dependency.Type)
			continue
		}
		report.Found++
		if !descend {
			continue
		}
		incomplete, walked := w.visit(dependency)
		if walked && incomplete {
			report.Incomplete = append(report.Incomplete, dependency)
		}
	}
	return report
}

// visit walks dependency, or returns its recorded outcome when it has
// been seen before. walked is false when the dependency could not be
// extracted or decoded.
func (w *dependencyWalker) visit(dependency descriptor.Descriptor) (incomplete, walked bool) {
	key := dependency.Key()
	if outcome, seen := w.outcomes[key]; seen {
		return outcome, true
	}
	w.outcomes[key] = false

	logger := w.opts.logger()
	data, err := w.index.Extract(dependency)
	if err != nil {
		logger.Debug("extracting dependency", "descriptor", dependency, "error", err)
		return false, false
	}
	nested, err := container.DecodeWith(data, w.opts.containerOptions())
	if err != nil {
		logger.Debug("decoding dependency", "descriptor", dependency, "error", err)
		return false, false
	}
	if !nested.Method.IsBinary() {
		return false, false
	}

	sub := w.walk(nested)
	incomplete = sub.Missing != 0 || len(sub.Incomplete) != 0
	w.outcomes[key] = incomplete
	if annotator, ok := w.index.(Annotator); ok {
		annotator.Annotate(dependency, incomplete, nested.Dependencies)
	}
	return incomplete, true
}

// ReplaceDependency replaces dependency i of c with replacement. The
// serialized reference of the old descriptor is replaced byte for byte
// in the payload with that of the new one; for plans the thing
// sub-buffer is patched first and the plan payload rebuilt, so the
// sub-buffer length prefix stays correct when the two forms differ in
// size. A replacement without a type takes the old entry's type.
//
// References stored with non-zero flags do not match the table form and
// are left untouched.
func ReplaceDependency(c *container.Container, i int, replacement descriptor.Descriptor, opts Options) error {
	if i < 0 || i >= len(c.Dependencies) {
		return fmt.Errorf("dependency %d of %d: index out of range", i, len(c.Dependencies))
	}
	original := c.Dependencies[i]
	if replacement.Type == descriptor.TypeInvalid {
		replacement = replacement.WithType(original.Type)
	}
	oldRef := serial.EncodeResourceRef(original, c.Revision, c.CompressionFlags)
	newRef := serial.EncodeResourceRef(replacement, c.Revision, c.CompressionFlags)
	if bytes.Equal(oldRef, newRef) {
		return nil
	}

	if c.Type == descriptor.TypePlan {
		p, err := Load[plan.Plan](c, opts)
		if err != nil {
			return fmt.Errorf("replacing dependency %s: %w", original, err)
		}
		p.ThingData = bytes.ReplaceAll(p.ThingData, oldRef, newRef)
		writer := serial.NewWriter(serial.Config{
			Revision: c.Revision,
			Flags:    c.CompressionFlags,
			Logger:   opts.Logger,
		})
		p.Serialize(writer)
		if err := writer.Err(); err != nil {
			return fmt.Errorf("rebuilding plan after replacing %s: %w", original, err)
		}
		c.Payload = writer.Bytes()
	}

	c.Payload = bytes.ReplaceAll(c.Payload, oldRef, newRef)
	c.Dependencies[i] = replacement
	opts.logger().Debug("replaced dependency",
		"index", i,
		"old", original,
		"new", replacement,
	)
	return nil
}
