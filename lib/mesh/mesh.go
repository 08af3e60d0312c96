// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import (
	"fmt"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

const (
	// MaxMorphs is the number of morph name slots in every mesh.
	MaxMorphs = 32

	morphNameSize = 0x10

	// StreamStride is the size of one vertex in one stream.
	StreamStride = 0x10

	hairMorphsAdded          = 0x141
	textureAlternativesAdded = 0x3b1
	defaultVertexColor       = 0xffffffff
)

// PrimitiveType is the topology of the index buffer, using the
// CellGcm primitive numbering.
type PrimitiveType uint8

const (
	PrimitivePoints PrimitiveType = iota + 1
	PrimitiveLines
	PrimitiveLineLoop
	PrimitiveLineStrip
	PrimitiveTriangles
	PrimitiveTriangleStrip
	PrimitiveTriangleFan
	PrimitiveQuads
	PrimitiveQuadStrip
	PrimitivePolygon
)

func validPrimitiveType(t PrimitiveType) bool {
	return t >= PrimitivePoints && t <= PrimitivePolygon
}

// HairMorph selects how hats deform hair.
type HairMorph int32

const (
	HairMorphNone HairMorph = iota
	HairMorphHat
	HairMorphBald
	HairMorphHelmet
)

func validHairMorph(m HairMorph) bool { return m >= HairMorphNone && m <= HairMorphHelmet }

// SkeletonType is the rig family a mesh is skinned to.
type SkeletonType uint8

const (
	SkeletonSackboy SkeletonType = iota
	SkeletonGiant
	SkeletonDwarf
	SkeletonBird
	SkeletonQuad
)

func validSkeletonType(t SkeletonType) bool { return t <= SkeletonQuad }

// Primitive is one draw call: a material over a range of the index
// buffer.
type Primitive struct {
	Material            descriptor.Descriptor
	TextureAlternatives descriptor.Descriptor
	MinVert             int32
	MaxVert             int32
	FirstIndex          int32
	NumIndices          int32
	Region              int32
}

func (p *Primitive) Serialize(s *serial.Serializer) {
	p.Material = s.Resource(p.Material, descriptor.TypeGfxMaterial)
	if s.Revision().Version() >= textureAlternativesAdded {
		p.TextureAlternatives = s.Resource(p.TextureAlternatives, descriptor.TypeTextureList)
	}
	p.MinVert = s.I32(p.MinVert)
	p.MaxVert = s.I32(p.MaxVert)
	p.FirstIndex = s.I32(p.FirstIndex)
	p.NumIndices = s.I32(p.NumIndices)
	p.Region = s.I32(p.Region)
}

// Mesh is the skinned mesh resource.
type Mesh struct {
	NumVerts       int32
	NumIndices     int32
	NumEdgeIndices int32
	NumTris        int32
	AttributeCount int32
	MorphCount     int32
	MorphNames     [MaxMorphs]string

	MinUV           []float32
	MaxUV           []float32
	AreaScaleFactor float32

	// Streams are the raw vertex streams, NumVerts*StreamStride bytes
	// each.
	Streams [][]byte

	Attributes             []byte
	Indices                []byte
	TriangleAdjacencyInfos []byte

	Primitives []Primitive
	Bones      []Bone

	MirrorBones         []int16
	MirrorBoneFlipTypes []byte
	MirrorMorphs        []int16

	PrimitiveType PrimitiveType

	Softbody                  SoftbodyClusterData
	SoftbodySprings           []Spring
	SoftbodyEquivs            []VertEquivalence
	Mass                      []float32
	ImplicitEllipsoids        []ImplicitEllipsoid
	ClusterImplicitEllipsoids []serial.Matrix44
	InsideImplicitEllipsoids  []ImplicitEllipsoid
	ImplicitPlanes            []ImplicitPlane
	SoftPhysSettings          descriptor.Descriptor

	MinSpringVert          int32
	MaxSpringVert          int32
	MinUnalignedSpringVert int32
	SpringyTriIndices      []int16
	SpringTrisStripped     bool

	SoftbodyContainingBoundBoxMin serial.Vector4
	SoftbodyContainingBoundBoxMax serial.Vector4

	CullBones       []CullBone
	RegionIDsToHide []int32

	CostumeCategoriesUsed int32
	HairMorphs            HairMorph
	BevelVertexCount      int32
	ImplicitBevelSprings  bool

	// VertexColors is stored only on the Double11 branch; elsewhere it
	// reads as opaque white for every vertex.
	VertexColors []uint32

	SkeletonType SkeletonType
}

// ResourceType returns the container type of a mesh.
func (*Mesh) ResourceType() descriptor.ResourceType { return descriptor.TypeMesh }

// HasSoftbodyData reports whether the mesh carries softbody clusters.
// Mass is written only when it does.
func (m *Mesh) HasSoftbodyData() bool {
	return len(m.Softbody.Clusters) > 0
}

func (m *Mesh) Serialize(s *serial.Serializer) {
	rev := s.Revision()
	version := rev.Version()
	subVersion := rev.SubVersion()

	m.NumVerts = s.I32(m.NumVerts)
	m.NumIndices = s.I32(m.NumIndices)
	m.NumEdgeIndices = s.I32(m.NumEdgeIndices)
	m.NumTris = s.I32(m.NumTris)
	streamCount := int(s.I32(int32(len(m.Streams))))
	m.AttributeCount = s.I32(m.AttributeCount)
	m.MorphCount = s.I32(m.MorphCount)
	for i := range m.MorphNames {
		m.MorphNames[i] = s.Str(m.MorphNames[i], morphNameSize)
	}

	if version >= revision.MeshMinMaxUV {
		m.MinUV = s.FloatArray(m.MinUV)
		m.MaxUV = s.FloatArray(m.MaxUV)
		m.AreaScaleFactor = s.F32(m.AreaScaleFactor)
	}

	s.Scope("streams", func() {
		m.serializeStreams(s, streamCount)
	})

	m.Attributes = s.ByteArray(m.Attributes)
	m.Indices = s.ByteArray(m.Indices)
	if subVersion >= revision.Fuzz {
		m.TriangleAdjacencyInfos = s.ByteArray(m.TriangleAdjacencyInfos)
	}

	m.Primitives = serial.Array(s, m.Primitives)
	m.Bones = serial.Array(s, m.Bones)

	m.MirrorBones = s.ShortArray(m.MirrorBones)
	m.MirrorBoneFlipTypes = s.ByteArray(m.MirrorBoneFlipTypes)
	m.MirrorMorphs = s.ShortArray(m.MirrorMorphs)

	m.PrimitiveType = serial.Enum8(s, m.PrimitiveType, validPrimitiveType)

	m.Softbody.Serialize(s)
	m.SoftbodySprings = serial.Array(s, m.SoftbodySprings)
	m.SoftbodyEquivs = serial.Array(s, m.SoftbodyEquivs)
	if s.IsWriting() && !m.HasSoftbodyData() {
		s.FloatArray(nil)
	} else {
		m.Mass = s.FloatArray(m.Mass)
	}

	m.ImplicitEllipsoids = serial.Array(s, m.ImplicitEllipsoids)
	m.ClusterImplicitEllipsoids = serial.ArrayFunc(s, m.ClusterImplicitEllipsoids, func(s *serial.Serializer, matrix *serial.Matrix44) {
		*matrix = s.M44(*matrix)
	})
	m.InsideImplicitEllipsoids = serial.Array(s, m.InsideImplicitEllipsoids)
	m.ImplicitPlanes = serial.Array(s, m.ImplicitPlanes)
	m.SoftPhysSettings = s.Resource(m.SoftPhysSettings, descriptor.TypeSettingsSoftPhys)
	m.MinSpringVert = s.I32(m.MinSpringVert)
	m.MaxSpringVert = s.I32(m.MaxSpringVert)
	m.MinUnalignedSpringVert = s.I32(m.MinUnalignedSpringVert)
	m.SpringyTriIndices = s.ShortArray(m.SpringyTriIndices)
	m.SpringTrisStripped = s.IntBool(m.SpringTrisStripped)
	m.SoftbodyContainingBoundBoxMin = s.V4(m.SoftbodyContainingBoundBoxMin)
	m.SoftbodyContainingBoundBoxMax = s.V4(m.SoftbodyContainingBoundBoxMax)

	m.CullBones = serial.Array(s, m.CullBones)
	m.RegionIDsToHide = s.IntArray(m.RegionIDsToHide)

	m.CostumeCategoriesUsed = s.I32(m.CostumeCategoriesUsed)
	if version >= hairMorphsAdded {
		m.HairMorphs = serial.Enum32(s, m.HairMorphs, validHairMorph)
	}
	m.BevelVertexCount = s.I32(m.BevelVertexCount)
	m.ImplicitBevelSprings = s.Bool(m.ImplicitBevelSprings)

	if rev.Has(revision.Double11, revision.D1VertexColors) {
		m.VertexColors = serial.ArrayFunc(s, m.VertexColors, func(s *serial.Serializer, color *uint32) {
			*color = s.U32F(*color)
		})
	} else if !s.IsWriting() && s.Err() == nil {
		m.VertexColors = make([]uint32, max(m.NumVerts, 0))
		for i := range m.VertexColors {
			m.VertexColors[i] = defaultVertexColor
		}
	}

	if subVersion >= revision.MeshSkeletonType {
		m.SkeletonType = serial.Enum8(s, m.SkeletonType, validSkeletonType)
	}
}

// serializeStreams handles the stream offset table and the streams
// that follow it. Offsets are derived on write and skipped on read;
// every stream is NumVerts*StreamStride bytes.
func (m *Mesh) serializeStreams(s *serial.Serializer, streamCount int) {
	size := int(m.NumVerts) * StreamStride
	if s.IsWriting() {
		offset := 0
		s.I32(0)
		for i, stream := range m.Streams {
			if len(stream) != size {
				s.Fail(fmt.Errorf("stream %d is %d bytes, want %d: %w", i, len(stream), size, serial.ErrBadLength))
				return
			}
			offset += len(stream)
			s.I32(int32(offset))
		}
		s.I32(int32(offset))
		for _, stream := range m.Streams {
			s.RawBytes(stream, size)
		}
		return
	}

	if streamCount < 0 || m.NumVerts < 0 {
		s.Fail(fmt.Errorf("%d streams of %d vertices: %w", streamCount, m.NumVerts, serial.ErrBadLength))
		return
	}
	for range streamCount + 2 {
		s.I32(0)
	}
	if s.Err() != nil {
		return
	}
	if int64(streamCount)*int64(size) > int64(s.Remaining()) {
		s.Fail(fmt.Errorf("%d streams of %d bytes with %d remaining: %w", streamCount, size, s.Remaining(), serial.ErrTruncated))
		return
	}
	m.Streams = make([][]byte, streamCount)
	for i := range m.Streams {
		m.Streams[i] = s.RawBytes(nil, size)
	}
}
