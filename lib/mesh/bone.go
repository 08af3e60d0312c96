// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import "github.com/bureau-foundation/resforge/lib/serial"

// MaxBoneNameLength is the fixed width of a bone name, terminator
// included.
const MaxBoneNameLength = 32

// AnimBone links a bone into its skeleton by index. Parent, FirstChild
// and NextSibling are -1 when absent.
type AnimBone struct {
	AnimHash    int32
	Parent      int32
	FirstChild  int32
	NextSibling int32
}

func (b *AnimBone) Serialize(s *serial.Serializer) {
	b.AnimHash = s.I32(b.AnimHash)
	b.Parent = s.S32(b.Parent)
	b.FirstChild = s.S32(b.FirstChild)
	b.NextSibling = s.S32(b.NextSibling)
}

// Bone is a joint of a skinned mesh's armature.
type Bone struct {
	Name  string
	Flags int32
	AnimBone

	SkinPoseMatrix    serial.Matrix44
	InvSkinPoseMatrix serial.Matrix44

	OBBMin serial.Vector4
	OBBMax serial.Vector4

	ShapeVerts []ShapeVertex
	ShapeInfos []ShapeInfo
	ShapeMinZ  float32
	ShapeMaxZ  float32

	BoundBoxMin serial.Vector4
	BoundBoxMax serial.Vector4
	BoundSphere serial.Vector4
}

// NewBone returns a bone with identity pose matrices and no relatives.
// Names longer than the field are truncated.
func NewBone(name string) Bone {
	if len(name) >= MaxBoneNameLength {
		name = name[:MaxBoneNameLength-1]
	}
	return Bone{
		Name:              name,
		AnimBone:          AnimBone{Parent: -1, FirstChild: -1, NextSibling: -1},
		SkinPoseMatrix:    serial.Identity,
		InvSkinPoseMatrix: serial.Identity,
	}
}

func (b *Bone) Serialize(s *serial.Serializer) {
	b.Name = s.Str(b.Name, MaxBoneNameLength)
	b.Flags = s.I32(b.Flags)
	b.AnimBone.Serialize(s)

	b.SkinPoseMatrix = s.M44(b.SkinPoseMatrix)
	b.InvSkinPoseMatrix = s.M44(b.InvSkinPoseMatrix)

	b.OBBMin = s.V4(b.OBBMin)
	b.OBBMax = s.V4(b.OBBMax)

	b.ShapeVerts = serial.Array(s, b.ShapeVerts)
	b.ShapeInfos = serial.Array(s, b.ShapeInfos)

	b.ShapeMinZ = s.F32(b.ShapeMinZ)
	b.ShapeMaxZ = s.F32(b.ShapeMaxZ)

	b.BoundBoxMin = s.V4(b.BoundBoxMin)
	b.BoundBoxMax = s.V4(b.BoundBoxMax)
	b.BoundSphere = s.V4(b.BoundSphere)
}

// Children returns the indices of the bones whose parent is index.
func Children(skeleton []Bone, index int) []int {
	var children []int
	for i := range skeleton {
		if i != index && int(skeleton[i].Parent) == index {
			children = append(children, i)
		}
	}
	return children
}

// IndexOfHash returns the index of the bone with animHash. Hash zero
// names the root. It returns -1 when no bone matches.
func IndexOfHash(skeleton []Bone, animHash int32) int {
	if animHash == 0 {
		return 0
	}
	for i := range skeleton {
		if skeleton[i].AnimHash == animHash {
			return i
		}
	}
	return -1
}

// ShapeVertex is one vertex of a bone's collision shape.
type ShapeVertex struct {
	LocalPos    serial.Vector4
	LocalNormal serial.Vector4
	BoneIndex   int32
}

func (v *ShapeVertex) Serialize(s *serial.Serializer) {
	v.LocalPos = s.V4(v.LocalPos)
	v.LocalNormal = s.V4(v.LocalNormal)
	v.BoneIndex = s.I32(v.BoneIndex)
}

// ShapeInfo groups shape vertices into one hull.
type ShapeInfo struct {
	NumVerts     int32
	IsPointCloud bool
}

func (i *ShapeInfo) Serialize(s *serial.Serializer) {
	i.NumVerts = s.I32(i.NumVerts)
	i.IsPointCloud = s.IntBool(i.IsPointCloud)
}

// CullBone is the culling volume of a bone.
type CullBone struct {
	InvSkinPoseMatrix serial.Matrix44
	BoundBoxMin       serial.Vector4
	BoundBoxMax       serial.Vector4
	BoneNameIndex     int32
}

func (c *CullBone) Serialize(s *serial.Serializer) {
	c.InvSkinPoseMatrix = s.M44(c.InvSkinPoseMatrix)
	c.BoundBoxMin = s.V4(c.BoundBoxMin)
	c.BoundBoxMax = s.V4(c.BoundBoxMax)
	c.BoneNameIndex = s.I32(c.BoneNameIndex)
}
