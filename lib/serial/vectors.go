// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

// Vector2 is an (x, y) pair.
type Vector2 [2]float32

// Vector3 is an (x, y, z) triple.
type Vector3 [3]float32

// Vector4 is an (x, y, z, w) quadruple.
type Vector4 [4]float32

// Matrix44 is a 4x4 float matrix in column-major order.
type Matrix44 [16]float32

// Identity is the 4x4 identity matrix.
var Identity = Matrix44{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// V2 reads or writes two floats. Two-component vectors are never
// mask-compressed.
func (s *Serializer) V2(v Vector2) Vector2 {
	v[0] = s.F32(v[0])
	v[1] = s.F32(v[1])
	return v
}

// V3 reads or writes three floats, mask-compressed under
// [CompressedVectors].
func (s *Serializer) V3(v Vector3) Vector3 {
	s.vector(v[:])
	return v
}

// V4 reads or writes four floats, mask-compressed under
// [CompressedVectors].
func (s *Serializer) V4(v Vector4) Vector4 {
	s.vector(v[:])
	return v
}

// vector handles V3 and V4 in place. The compressed form is one mask
// byte with bit i set for each non-zero component, then those
// components in order.
func (s *Serializer) vector(components []float32) {
	if !s.config.Flags.Has(CompressedVectors) {
		for i := range components {
			components[i] = s.F32(components[i])
		}
		return
	}

	var mask uint8
	if s.writing {
		for i, c := range components {
			if c != 0 {
				mask |= 1 << i
			}
		}
	}
	mask = s.U8(mask)
	for i := range components {
		if mask&(1<<i) != 0 {
			components[i] = s.F32(components[i])
		} else if !s.writing {
			components[i] = 0
		}
	}
}

// M44 reads or writes a 4x4 matrix. Under [CompressedMatrices] a 16-bit
// mask marks the elements that differ from identity; only those are
// written and the rest read back as identity.
func (s *Serializer) M44(m Matrix44) Matrix44 {
	if !s.config.Flags.Has(CompressedMatrices) {
		for i := range m {
			m[i] = s.F32(m[i])
		}
		return m
	}

	var mask uint16
	if s.writing {
		for i := range m {
			if m[i] != Identity[i] {
				mask |= 1 << i
			}
		}
	}
	mask = s.U16(mask)
	for i := range m {
		if mask&(1<<i) != 0 {
			m[i] = s.F32(m[i])
		} else if !s.writing {
			m[i] = Identity[i]
		}
	}
	return m
}
