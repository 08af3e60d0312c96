// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import "github.com/bureau-foundation/resforge/lib/serial"

// TextureInfo is the sub-header between the method byte and the
// compressed stream of GTF (24 bytes) and GXT (0x20 bytes) textures. Plain TEX textures carry
// no sub-header. Pixel data stays in the payload; swizzling and DDS
// conversion are left to callers.
type TextureInfo struct {
	Format   uint32
	MipCount uint16
	Width    uint16
	Height   uint16

	// GTF (CellGcm texture) fields.
	Dimension uint8
	Cubemap   bool
	Remap     uint32
	Depth     uint16
	Location  uint8
	Pitch     uint32
	Offset    uint32

	// GXT fields.
	Type uint32

	// Reserved holds GXT header bytes with no decoded meaning, kept so
	// the header round-trips.
	Reserved [18]byte
}

// serialize reads or writes the sub-header for method.
func (t *TextureInfo) serialize(s *serial.Serializer, method Method) {
	if method == MethodTexture {
		t.Format = uint32(s.U8(uint8(t.Format)))
		t.MipCount = uint16(s.U8(uint8(t.MipCount)))
		t.Dimension = s.U8(t.Dimension)
		t.Cubemap = s.Bool(t.Cubemap)
		t.Remap = s.U32F(t.Remap)
		t.Width = s.U16(t.Width)
		t.Height = s.U16(t.Height)
		t.Depth = s.U16(t.Depth)
		t.Location = s.U8(t.Location)
		s.U8(0) // padding
		t.Pitch = s.U32F(t.Pitch)
		t.Offset = s.U32F(t.Offset)
		return
	}

	t.Format = s.U32F(t.Format)
	t.Type = s.U32F(t.Type)
	t.Width = s.U16(t.Width)
	t.Height = s.U16(t.Height)
	t.MipCount = s.U16(t.MipCount)
	copy(t.Reserved[:], s.RawBytes(t.Reserved[:], len(t.Reserved)))
}
