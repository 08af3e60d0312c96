// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/thing"
)

// streamingFlagAdded is the sub-version that added the streaming flag.
const streamingFlagAdded = 0xcc

// Plan is the plan resource.
type Plan struct {
	IsUsedForStreaming bool

	// Revision and CompressionFlags describe ThingData. They are taken
	// from the session that decodes the plan, and ThingData must be
	// encoded at the revision of the session that writes it.
	Revision         revision.Revision
	CompressionFlags serial.CompressionFlags

	ThingData     []byte
	InventoryData *InventoryDetails

	// dependencies are the descriptors found while encoding ThingData.
	dependencies []descriptor.Descriptor
}

// ResourceType returns the container type of a plan.
func (*Plan) ResourceType() descriptor.ResourceType { return descriptor.TypePlan }

func (p *Plan) Serialize(s *serial.Serializer) {
	rev := s.Revision()
	version := rev.Version()

	if rev.SubVersion() >= streamingFlagAdded {
		p.IsUsedForStreaming = s.Bool(p.IsUsedForStreaming)
	}
	// The head the thing data was written at. The session revision is
	// authoritative; the stored word is informational.
	s.U32(rev.Head)
	p.ThingData = s.ByteArray(p.ThingData)
	if version >= revision.PlanDetails && !p.IsUsedForStreaming {
		p.InventoryData = serial.Struct(s, p.InventoryData)
	}
	for _, dependency := range p.dependencies {
		s.AddDependency(dependency)
	}

	p.Revision = rev
	p.CompressionFlags = s.CompressionFlags()
}

// Things decodes the thing sub-buffer into a new graph and returns the
// handles of the top-level things in stored order.
func (p *Plan) Things(logger *slog.Logger) (*thing.Graph, []serial.Handle, error) {
	reader := serial.NewReader(p.ThingData, serial.Config{
		Revision: p.Revision,
		Flags:    p.CompressionFlags,
		Logger:   logger,
	})
	graph := thing.NewGraph()
	handles := graph.References(reader, nil)
	if err := reader.Err(); err != nil {
		return nil, nil, fmt.Errorf("decoding plan things at %s: %w", p.Revision, err)
	}
	return graph, handles, nil
}

// SetThings re-encodes the things named by handles at rev with flags,
// replaces ThingData, and records the things' resource references as
// dependencies of the plan.
func (p *Plan) SetThings(graph *thing.Graph, handles []serial.Handle, rev revision.Revision, flags serial.CompressionFlags, logger *slog.Logger) error {
	writer := serial.NewWriter(serial.Config{
		Revision: rev,
		Flags:    flags,
		Logger:   logger,
	})
	graph.References(writer, handles)
	if err := writer.Err(); err != nil {
		return fmt.Errorf("encoding plan things at %s: %w", rev, err)
	}
	p.ThingData = writer.Bytes()
	p.Revision = rev
	p.CompressionFlags = flags
	p.dependencies = writer.Dependencies()
	return nil
}

// Retarget moves the plan to rev: the things are decoded at the current
// revision and re-encoded at the new one.
func (p *Plan) Retarget(rev revision.Revision, flags serial.CompressionFlags, logger *slog.Logger) error {
	graph, handles, err := p.Things(logger)
	if err != nil {
		return err
	}
	return p.SetThings(graph, handles, rev, flags, logger)
}

// InheritDependencies seeds the plan's dependency list from the
// container it was loaded from, so a rebuild without [Plan.SetThings]
// keeps the thing data's references.
func (p *Plan) InheritDependencies(dependencies []descriptor.Descriptor) {
	if p.dependencies == nil {
		p.dependencies = dependencies
	}
}
