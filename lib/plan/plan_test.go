// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"testing"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/profile"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/thing"
)

var meshDescriptor = descriptor.NewGUID(0x40ee, descriptor.TypeMesh)

func prefab() (*thing.Graph, []serial.Handle) {
	graph := thing.NewGraph()
	rootHandle, root := graph.Things.New()
	*root = thing.New(1)
	root.SetPart(&thing.PPos{LocalPosition: serial.Identity, WorldPosition: serial.Identity})
	root.SetPart(&thing.PRenderMesh{Mesh: meshDescriptor})

	child := thing.New(2)
	child.Parent = rootHandle
	child.SetPart(&thing.PScriptName{Name: "door"})
	childHandle := graph.Add(child)
	return graph, []serial.Handle{rootHandle, childHandle}
}

func encodePlan(t *testing.T, p *Plan, cfg serial.Config) *serial.Serializer {
	t.Helper()
	writer := serial.NewWriter(cfg)
	serial.Struct(writer, p)
	if err := writer.Err(); err != nil {
		t.Fatalf("encode plan: %v", err)
	}
	return writer
}

func TestPlanRoundTrip(t *testing.T) {
	rev := revision.New(0x3e2)
	cfg := serial.Config{Revision: rev, Flags: serial.CompressionAll}

	graph, handles := prefab()
	p := &Plan{InventoryData: &InventoryDetails{
		Type:    0x4,
		Title:   "Door",
		Creator: "maker",
		Photo: &PhotoData{
			Users: []profile.PhotoUser{profile.NewPhotoUser("maker")},
		},
	}}
	if err := p.SetThings(graph, handles, rev, serial.CompressionAll, nil); err != nil {
		t.Fatalf("SetThings: %v", err)
	}

	writer := encodePlan(t, p, cfg)
	deps := writer.Dependencies()
	if len(deps) != 1 || !deps[0].Equal(meshDescriptor) {
		t.Errorf("Dependencies = %v, want [%v]", deps, meshDescriptor)
	}

	reader := serial.NewReader(writer.Bytes(), cfg)
	decoded := serial.Struct[Plan](reader, nil)
	if err := reader.Err(); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if decoded.InventoryData == nil || decoded.InventoryData.Title != "Door" {
		t.Fatalf("InventoryData = %+v", decoded.InventoryData)
	}
	if decoded.InventoryData.Photo == nil || len(decoded.InventoryData.Photo.Users) != 1 {
		t.Errorf("Photo = %+v", decoded.InventoryData.Photo)
	}

	things, roots, err := decoded.Things(nil)
	if err != nil {
		t.Fatalf("Things: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("roots = %v, want 2", roots)
	}
	if things.Get(roots[1]).Parent != roots[0] {
		t.Error("child parent does not resolve to root")
	}
	name, ok := thing.PartOf[*thing.PScriptName](things.Get(roots[1]))
	if !ok || name.Name != "door" {
		t.Errorf("script name = %+v", name)
	}
}

func TestRetarget(t *testing.T) {
	graph, handles := prefab()
	p := &Plan{}
	if err := p.SetThings(graph, handles, revision.New(0x3e2), serial.CompressionAll, nil); err != nil {
		t.Fatalf("SetThings: %v", err)
	}
	modern := append([]byte(nil), p.ThingData...)

	old := revision.New(0x272)
	if err := p.Retarget(old, serial.CompressionNone, nil); err != nil {
		t.Fatalf("Retarget: %v", err)
	}
	if p.Revision != old || p.CompressionFlags != serial.CompressionNone {
		t.Errorf("plan revision = %s/%s, want %s/none", p.Revision, p.CompressionFlags, old)
	}

	writer := encodePlan(t, p, serial.Config{Revision: old})
	reader := serial.NewReader(writer.Bytes(), serial.Config{Revision: old})
	decoded := serial.Struct[Plan](reader, nil)
	if err := reader.Err(); err != nil {
		t.Fatalf("decode backported plan: %v", err)
	}
	if _, roots, err := decoded.Things(nil); err != nil || len(roots) != 2 {
		t.Fatalf("backported Things = %v, %v", roots, err)
	}

	if err := decoded.Retarget(revision.New(0x3e2), serial.CompressionAll, nil); err != nil {
		t.Fatalf("Retarget forward: %v", err)
	}
	if string(decoded.ThingData) != string(modern) {
		t.Error("forward retarget did not reproduce the original thing data")
	}
}

func TestStreamingPlanHasNoDetails(t *testing.T) {
	cfg := serial.Config{Revision: revision.New(0x00d0_03f8)}
	p := &Plan{IsUsedForStreaming: true, InventoryData: &InventoryDetails{Title: "ignored"}}
	writer := encodePlan(t, p, cfg)
	reader := serial.NewReader(writer.Bytes(), cfg)
	decoded := serial.Struct[Plan](reader, nil)
	if reader.Err() != nil || !decoded.IsUsedForStreaming || decoded.InventoryData != nil {
		t.Errorf("decoded = %+v (%v)", decoded, reader.Err())
	}
}
