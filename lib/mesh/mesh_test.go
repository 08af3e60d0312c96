// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

func sampleMesh() *Mesh {
	root := NewBone("root")
	root.AnimHash = 0x1234
	root.FirstChild = 1
	arm := NewBone("arm")
	arm.AnimHash = 0x5678
	arm.Parent = 0
	arm.ShapeVerts = []ShapeVertex{{LocalPos: serial.Vector4{1, 0, 0, 1}, BoneIndex: 1}}
	arm.ShapeInfos = []ShapeInfo{{NumVerts: 1, IsPointCloud: true}}

	m := &Mesh{
		NumVerts:   2,
		NumIndices: 3,
		NumTris:    1,
		MorphCount: 1,
		MinUV:      []float32{0, 0},
		MaxUV:      []float32{1, 1},
		Streams: [][]byte{
			bytes.Repeat([]byte{0xab}, 2*StreamStride),
			bytes.Repeat([]byte{0xcd}, 2*StreamStride),
		},
		Indices: []byte{0, 0, 0, 1, 0, 0},
		Primitives: []Primitive{{
			Material:   descriptor.NewGUID(0x2a, descriptor.TypeGfxMaterial),
			NumIndices: 3,
		}},
		Bones:         []Bone{root, arm},
		MirrorBones:   []int16{0, 1},
		PrimitiveType: PrimitiveTriangles,
		CullBones:     []CullBone{{InvSkinPoseMatrix: serial.Identity, BoneNameIndex: 1}},
		HairMorphs:    HairMorphHat,
		SkeletonType:  SkeletonGiant,
	}
	m.MorphNames[0] = "smile"
	return m
}

func TestMeshRoundTrip(t *testing.T) {
	revisions := []revision.Revision{
		revision.New(0x272),
		revision.New(0x3e2),
		revision.New(0x0191_03f8),
		revision.NewBranched(0x3e2, uint16(revision.Double11), revision.D1VertexColors),
	}
	for _, rev := range revisions {
		cfg := serial.Config{Revision: rev, Flags: serial.CompressionAll}
		source := sampleMesh()
		if rev.Is(revision.Double11) {
			source.VertexColors = []uint32{0xff0000ff, 0x00ff00ff}
		}

		writer := serial.NewWriter(cfg)
		serial.Struct(writer, source)
		if err := writer.Err(); err != nil {
			t.Fatalf("%s: encode: %v", rev, err)
		}

		reader := serial.NewReader(writer.Bytes(), cfg)
		decoded := serial.Struct[Mesh](reader, nil)
		if err := reader.Err(); err != nil {
			t.Fatalf("%s: decode: %v", rev, err)
		}
		if reader.Remaining() != 0 {
			t.Errorf("%s: %d bytes left over", rev, reader.Remaining())
		}
		if len(decoded.Streams) != 2 || !bytes.Equal(decoded.Streams[1], source.Streams[1]) {
			t.Errorf("%s: streams not preserved", rev)
		}
		if decoded.MorphNames[0] != "smile" || decoded.Bones[1].Parent != 0 {
			t.Errorf("%s: morphs/bones not preserved", rev)
		}
		if len(decoded.VertexColors) != 2 {
			t.Errorf("%s: %d vertex colors, want 2", rev, len(decoded.VertexColors))
		}
		if !rev.Is(revision.Double11) && decoded.VertexColors[0] != defaultVertexColor {
			t.Errorf("%s: vertex color = %#x, want opaque white", rev, decoded.VertexColors[0])
		}
		wantSkeleton := SkeletonSackboy
		if rev.SubVersion() >= revision.MeshSkeletonType {
			wantSkeleton = SkeletonGiant
		}
		if decoded.SkeletonType != wantSkeleton {
			t.Errorf("%s: SkeletonType = %d, want %d", rev, decoded.SkeletonType, wantSkeleton)
		}

		again := serial.NewWriter(cfg)
		serial.Struct(again, decoded)
		if !bytes.Equal(again.Bytes(), writer.Bytes()) {
			t.Errorf("%s: re-encode differs", rev)
		}
	}
}

func TestMassWrittenOnlyWithSoftbody(t *testing.T) {
	cfg := serial.Config{Revision: revision.New(0x3e2)}
	m := sampleMesh()
	m.Mass = []float32{1, 1}

	writer := serial.NewWriter(cfg)
	serial.Struct(writer, m)
	reader := serial.NewReader(writer.Bytes(), cfg)
	decoded := serial.Struct[Mesh](reader, nil)
	if reader.Err() != nil || len(decoded.Mass) != 0 {
		t.Errorf("Mass = %v (%v), want empty without clusters", decoded.Mass, reader.Err())
	}

	m.Softbody.Clusters = []Cluster{{Name: "body"}}
	writer = serial.NewWriter(cfg)
	serial.Struct(writer, m)
	reader = serial.NewReader(writer.Bytes(), cfg)
	decoded = serial.Struct[Mesh](reader, nil)
	if reader.Err() != nil || len(decoded.Mass) != 2 {
		t.Errorf("Mass = %v (%v), want two entries", decoded.Mass, reader.Err())
	}
}

func TestStreamSizeMismatch(t *testing.T) {
	m := sampleMesh()
	m.Streams[0] = m.Streams[0][:5]
	writer := serial.NewWriter(serial.Config{Revision: revision.New(0x3e2)})
	serial.Struct(writer, m)
	if !errors.Is(writer.Err(), serial.ErrBadLength) {
		t.Errorf("error = %v, want ErrBadLength", writer.Err())
	}
}

func TestSkeletonHelpers(t *testing.T) {
	m := sampleMesh()
	if got := Children(m.Bones, 0); len(got) != 1 || got[0] != 1 {
		t.Errorf("Children(0) = %v, want [1]", got)
	}
	if got := IndexOfHash(m.Bones, 0x5678); got != 1 {
		t.Errorf("IndexOfHash = %d, want 1", got)
	}
	if got := IndexOfHash(m.Bones, 0); got != 0 {
		t.Errorf("IndexOfHash(0) = %d, want 0", got)
	}
	if got := IndexOfHash(m.Bones, 99); got != -1 {
		t.Errorf("IndexOfHash(99) = %d, want -1", got)
	}
	long := NewBone("a_bone_name_that_is_far_too_long_for_the_field")
	if len(long.Name) != MaxBoneNameLength-1 {
		t.Errorf("truncated name length = %d, want %d", len(long.Name), MaxBoneNameLength-1)
	}
}
