// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mesh

import "github.com/bureau-foundation/resforge/lib/serial"

// clusterNameSize is the fixed width of a softbody cluster name.
const clusterNameSize = 0x20

// Cluster is one softbody cluster in its rest pose.
type Cluster struct {
	Name          string
	RestCOM       serial.Vector4
	RestDyadicSum serial.Matrix44
	RestQuat      serial.Vector4
}

func (c *Cluster) Serialize(s *serial.Serializer) {
	c.Name = s.Str(c.Name, clusterNameSize)
	c.RestCOM = s.V4(c.RestCOM)
	c.RestDyadicSum = s.M44(c.RestDyadicSum)
	c.RestQuat = s.V4(c.RestQuat)
}

// SoftbodyClusterData holds every cluster of a softbody mesh.
type SoftbodyClusterData struct {
	Clusters []Cluster
}

func (d *SoftbodyClusterData) Serialize(s *serial.Serializer) {
	d.Clusters = serial.Array(s, d.Clusters)
}

// Spring joins two softbody vertices.
type Spring struct {
	A            int16
	B            int16
	RestLengthSq float32
}

func (sp *Spring) Serialize(s *serial.Serializer) {
	sp.A = s.I16(sp.A)
	sp.B = s.I16(sp.B)
	sp.RestLengthSq = s.F32(sp.RestLengthSq)
}

// VertEquivalence marks a run of vertices that share a position.
type VertEquivalence struct {
	First uint16
	Count uint16
}

func (e *VertEquivalence) Serialize(s *serial.Serializer) {
	e.First = s.U16(e.First)
	e.Count = s.U16(e.Count)
}

// ImplicitEllipsoid is a collision ellipsoid attached to a bone.
type ImplicitEllipsoid struct {
	Transform       serial.Matrix44
	ParentBone      int32
	AffectWorldOnly int32
}

func (e *ImplicitEllipsoid) Serialize(s *serial.Serializer) {
	e.Transform = s.M44(e.Transform)
	e.ParentBone = s.I32(e.ParentBone)
	e.AffectWorldOnly = s.I32(e.AffectWorldOnly)
}

// ImplicitPlane is a collision plane attached to a bone.
type ImplicitPlane struct {
	PlaneNormal  serial.Vector4
	PointInPlane serial.Vector4
	ParentBone   int32
}

func (p *ImplicitPlane) Serialize(s *serial.Serializer) {
	p.PlaneNormal = s.V4(p.PlaneNormal)
	p.PointInPlane = s.V4(p.PointInPlane)
	p.ParentBone = s.I32(p.ParentBone)
}
