// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/resforge/lib/container"
	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/plan"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
	"github.com/bureau-foundation/resforge/lib/slot"
	"github.com/bureau-foundation/resforge/lib/thing"
)

// mapIndex is an in-memory Index and Annotator keyed by descriptor.
type mapIndex struct {
	blobs       map[string][]byte
	extracted   []descriptor.Descriptor
	annotations map[string]bool
}

func newMapIndex() *mapIndex {
	return &mapIndex{blobs: make(map[string][]byte), annotations: make(map[string]bool)}
}

func (m *mapIndex) put(d descriptor.Descriptor, data []byte) { m.blobs[d.Key()] = data }

func (m *mapIndex) Contains(d descriptor.Descriptor) bool {
	_, ok := m.blobs[d.Key()]
	return ok
}

func (m *mapIndex) Extract(d descriptor.Descriptor) ([]byte, error) {
	m.extracted = append(m.extracted, d)
	data, ok := m.blobs[d.Key()]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *mapIndex) Annotate(d descriptor.Descriptor, hasMissing bool, _ []descriptor.Descriptor) {
	m.annotations[d.Key()] = hasMissing
}

func level(guid descriptor.GUID) descriptor.Descriptor {
	return descriptor.NewGUID(guid, descriptor.TypeLevel)
}

func slotList(roots ...descriptor.Descriptor) *slot.List {
	list := slot.NewList()
	for i, root := range roots {
		list.Slots = append(list.Slots, slot.Slot{
			ID:    slot.ID{Type: slot.TypeUserLocal, Number: uint32(i + 1)},
			Root:  root,
			Title: "level",
		})
	}
	return list
}

func encode(t *testing.T, c *container.Container) []byte {
	t.Helper()
	data, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return data
}

func TestBuildAndLoad(t *testing.T) {
	rev := revision.New(0x3e2)
	list := slotList(level(100), level(200))
	data, err := Encode(list, rev, CompressionFlagsFor(rev), Options{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	value, c, err := LoadBytes(data, Options{})
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if c.Type != descriptor.TypeSlotList || c.Revision != rev {
		t.Errorf("container = %s at %s, want slot_list at %s", c.Type, c.Revision, rev)
	}
	if len(c.Dependencies) != 2 {
		t.Fatalf("Dependencies = %v, want 2", c.Dependencies)
	}
	decoded, ok := value.(*slot.List)
	if !ok {
		t.Fatalf("LoadBytes returned %T, want *slot.List", value)
	}
	if len(decoded.Slots) != 2 || !decoded.Slots[1].Root.Equal(level(200)) {
		t.Errorf("Slots = %+v", decoded.Slots)
	}

	typed, err := Load[slot.List](c, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !typed.FromProductionBuild {
		t.Error("FromProductionBuild = false, want true")
	}

	if _, err := Load[plan.Plan](c, Options{}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Load[plan.Plan] error = %v, want ErrTypeMismatch", err)
	}
}

func TestLoadUnsupportedAndUnframed(t *testing.T) {
	c := container.NewBinary(descriptor.TypeBevel, revision.New(0x272), serial.CompressionNone, []byte{1, 2, 3}, nil)
	if _, _, err := LoadBytes(encode(t, c), Options{}); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("bevel error = %v, want ErrUnsupportedType", err)
	}
	if _, _, err := LoadBytes([]byte("not a resource"), Options{}); !errors.Is(err, ErrNotBinary) {
		t.Errorf("raw error = %v, want ErrNotBinary", err)
	}
	if Supported(descriptor.TypeBevel) || !Supported(descriptor.TypePlan) {
		t.Error("Supported disagrees with the factory table")
	}
}

func TestCompressionFlagsFor(t *testing.T) {
	tests := []struct {
		rev  revision.Revision
		want serial.CompressionFlags
	}{
		{revision.New(0x3e2), serial.CompressionAll},
		{revision.New(0x297), serial.CompressionAll},
		{revision.New(0x272), serial.CompressionNone},
		{revision.NewBranched(0x272, uint16(revision.Leerdammer), 1), serial.CompressionNone},
		{revision.NewBranched(0x272, uint16(revision.Leerdammer), 2), serial.CompressionAll},
		{revision.New(0x1eb), serial.CompressionNone},
	}
	for _, test := range tests {
		if got := CompressionFlagsFor(test.rev); got != test.want {
			t.Errorf("CompressionFlagsFor(%s) = %s, want %s", test.rev, got, test.want)
		}
	}
}

func TestRegisterDependenciesCountsMissing(t *testing.T) {
	rev := revision.New(0x3e2)
	c, err := Build(slotList(level(1), level(2), level(3)), rev, serial.CompressionAll, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	index := newMapIndex()
	index.put(level(1), nil)
	index.put(level(3), nil)

	report := RegisterDependencies(c, index, false, Options{})
	if report.Missing != 1 || report.Found != 2 {
		t.Errorf("report = %+v, want 1 missing, 2 found", report)
	}
	if len(report.MissingDescriptors) != 1 || !report.MissingDescriptors[0].Equal(level(2)) {
		t.Errorf("MissingDescriptors = %v, want [%v]", report.MissingDescriptors, level(2))
	}
	if len(index.extracted) != 0 {
		t.Errorf("non-recursive walk extracted %v", index.extracted)
	}
}

func TestRegisterDependenciesRecursive(t *testing.T) {
	rev := revision.New(0x3e2)
	root := slotList(level(10), level(20))
	c, err := Build(root, rev, serial.CompressionAll, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Level 10 points back at level 20 and at a missing level; level 20
	// points at level 10. Levels are not a supported structure, so they
	// are framed directly with their dependency tables.
	index := newMapIndex()
	first := container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{0}, []descriptor.Descriptor{level(20), level(99)})
	second := container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{0}, []descriptor.Descriptor{level(10)})
	index.put(level(10), encode(t, first))
	index.put(level(20), encode(t, second))

	report := RegisterDependencies(c, index, true, Options{})
	if report.Missing != 0 || report.Found != 2 {
		t.Fatalf("report = %+v, want 0 missing, 2 found", report)
	}
	if len(report.Incomplete) != 1 || !report.Incomplete[0].Equal(level(10)) {
		t.Errorf("Incomplete = %v, want [%v]", report.Incomplete, level(10))
	}
	if !index.annotations[level(10).Key()] {
		t.Error("level 10 not annotated as having missing dependencies")
	}
	if missing, ok := index.annotations[level(20).Key()]; !ok || missing {
		t.Errorf("level 20 annotation = %v, %v; want false, true", missing, ok)
	}
	if len(index.extracted) != 2 {
		t.Errorf("extracted %v, want each level once", index.extracted)
	}
}

func TestRegisterDependenciesReusesOutcomes(t *testing.T) {
	rev := revision.New(0x3e2)
	c, err := Build(slotList(level(3), level(2)), rev, serial.CompressionAll, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Level 3 lacks level 99. Level 2 only reaches it through level 3,
	// which the walk has already finished by the time level 2 is read.
	index := newMapIndex()
	shared := container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{0}, []descriptor.Descriptor{level(99)})
	outer := container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{0}, []descriptor.Descriptor{level(3)})
	index.put(level(3), encode(t, shared))
	index.put(level(2), encode(t, outer))

	report := RegisterDependencies(c, index, true, Options{})
	if len(report.Incomplete) != 2 || !report.Incomplete[0].Equal(level(3)) || !report.Incomplete[1].Equal(level(2)) {
		t.Errorf("Incomplete = %v, want [%v %v]", report.Incomplete, level(3), level(2))
	}
	for _, d := range []descriptor.Descriptor{level(3), level(2)} {
		if missing, ok := index.annotations[d.Key()]; !ok || !missing {
			t.Errorf("%v annotation = %v, %v; want true, true", d, missing, ok)
		}
	}
	if len(index.extracted) != 2 {
		t.Errorf("extracted %v, want each level once", index.extracted)
	}
}

func TestRegisterDependenciesStopsAtScripts(t *testing.T) {
	rev := revision.New(0x3e2)
	script := descriptor.NewGUID(0x1e1, descriptor.TypeScript)
	index := newMapIndex()
	scriptBody := container.NewBinary(descriptor.TypeScript, rev, serial.CompressionAll, []byte{0}, []descriptor.Descriptor{level(10), level(99)})
	index.put(script, encode(t, scriptBody))
	index.put(level(10), encode(t, container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{0}, nil)))

	// A script dependency is walked and its own misses count.
	c := container.NewBinary(descriptor.TypeLevel, rev, serial.CompressionAll, []byte{0}, []descriptor.Descriptor{script})
	report := RegisterDependencies(c, index, true, Options{})
	if report.Found != 1 || len(report.Incomplete) != 1 || !report.Incomplete[0].Equal(script) {
		t.Errorf("report = %+v, want the script found and incomplete", report)
	}
	if missing, ok := index.annotations[script.Key()]; !ok || !missing {
		t.Errorf("script annotation = %v, %v; want true, true", missing, ok)
	}
	// The walk does not continue out of the script into level 10.
	if len(index.extracted) != 1 || !index.extracted[0].Equal(script) {
		t.Errorf("extracted %v, want only the script", index.extracted)
	}

	// A script at the root resolves its table without recursing.
	index.extracted = nil
	report = RegisterDependencies(scriptBody, index, true, Options{})
	if report.Found != 1 || report.Missing != 1 || len(report.Incomplete) != 0 || len(index.extracted) != 0 {
		t.Errorf("script root report = %+v, extracted = %v; want no recursion", report, index.extracted)
	}

	if report := RegisterDependencies(container.Raw([]byte("raw")), index, true, Options{}); report.Found != 0 || report.Missing != 0 {
		t.Errorf("raw container report = %+v, want empty", report)
	}
}

func TestReplaceDependencyInSlotList(t *testing.T) {
	rev := revision.New(0x272)
	c, err := Build(slotList(level(1), level(2)), rev, serial.CompressionNone, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	replacement := descriptor.NewGUID(7, descriptor.TypeInvalid)
	if err := ReplaceDependency(c, 1, replacement, Options{}); err != nil {
		t.Fatalf("ReplaceDependency: %v", err)
	}
	if !c.Dependencies[1].Equal(level(7)) || c.Dependencies[1].Type != descriptor.TypeLevel {
		t.Errorf("Dependencies[1] = %v (%s), want %v level", c.Dependencies[1], c.Dependencies[1].Type, level(7))
	}
	list, err := Load[slot.List](c, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !list.Slots[1].Root.Equal(level(7)) || !list.Slots[0].Root.Equal(level(1)) {
		t.Errorf("roots = %v, %v; want g1, g7", list.Slots[0].Root, list.Slots[1].Root)
	}

	if err := ReplaceDependency(c, 5, replacement, Options{}); err == nil {
		t.Error("ReplaceDependency out of range succeeded")
	}
}

func TestReplaceDependencyInPlan(t *testing.T) {
	rev := revision.New(0x3e2)
	oldMesh := descriptor.NewGUID(0x40ee, descriptor.TypeMesh)
	newMesh := descriptor.NewHash(descriptor.Sum([]byte("mesh")), descriptor.TypeMesh)

	graph := thing.NewGraph()
	body := thing.New(1)
	body.SetPart(&thing.PRenderMesh{Mesh: oldMesh})
	handle := graph.Add(body)
	p := &plan.Plan{InventoryData: &plan.InventoryDetails{Title: "crate"}}
	if err := p.SetThings(graph, []serial.Handle{handle}, rev, serial.CompressionAll, nil); err != nil {
		t.Fatalf("SetThings: %v", err)
	}
	c, err := Build(p, rev, serial.CompressionAll, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(c.Dependencies) != 1 || !c.Dependencies[0].Equal(oldMesh) {
		t.Fatalf("Dependencies = %v, want [%v]", c.Dependencies, oldMesh)
	}

	if err := ReplaceDependency(c, 0, newMesh, Options{}); err != nil {
		t.Fatalf("ReplaceDependency: %v", err)
	}

	// Through the full container format and back.
	decoded, err := container.Decode(encode(t, c))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.Dependencies) != 1 || !decoded.Dependencies[0].Equal(newMesh) {
		t.Errorf("decoded Dependencies = %v, want [%v]", decoded.Dependencies, newMesh)
	}
	loaded, err := Load[plan.Plan](decoded, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.InventoryData == nil || loaded.InventoryData.Title != "crate" {
		t.Errorf("InventoryData = %+v", loaded.InventoryData)
	}
	things, roots, err := loaded.Things(nil)
	if err != nil {
		t.Fatalf("Things: %v", err)
	}
	renderMesh, ok := thing.PartOf[*thing.PRenderMesh](things.Get(roots[0]))
	if !ok || !renderMesh.Mesh.Equal(newMesh) {
		t.Errorf("render mesh = %+v, want %v", renderMesh, newMesh)
	}
}

func TestRespecPlan(t *testing.T) {
	modern := revision.New(0x3e2)
	graph := thing.NewGraph()
	handle := graph.Add(thing.New(1))
	p := &plan.Plan{InventoryData: &plan.InventoryDetails{Title: "crate"}}
	if err := p.SetThings(graph, []serial.Handle{handle}, modern, serial.CompressionAll, nil); err != nil {
		t.Fatalf("SetThings: %v", err)
	}
	c, err := Build(p, modern, serial.CompressionAll, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	target := revision.New(0x272)
	respecced, err := Respec(c, target, Options{})
	if err != nil {
		t.Fatalf("Respec: %v", err)
	}
	if respecced.Revision != target || respecced.CompressionFlags != serial.CompressionNone {
		t.Errorf("respecced = %s/%s, want %s/none", respecced.Revision, respecced.CompressionFlags, target)
	}
	decoded, err := container.Decode(encode(t, respecced))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	backported, err := Load[plan.Plan](decoded, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, roots, err := backported.Things(nil); err != nil || len(roots) != 1 {
		t.Errorf("Things = %v, %v; want one root", roots, err)
	}
}
