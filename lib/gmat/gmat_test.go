// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gmat

import (
	"errors"
	"slices"
	"testing"

	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

func TestWireRoundTrip(t *testing.T) {
	wire := Wire{BoxFrom: -1, BoxTo: 12, PortFrom: 2, PortTo: 0, Swizzle: [SwizzleElements]int8{0, 1, 2, 3, -1}}
	cfg := serial.Config{Revision: revision.New(0x3e2), Flags: serial.CompressionAll}
	writer := serial.NewWriter(cfg)
	serial.Struct(writer, &wire)
	// zigzag(-1) = 1, zigzag(12) = 24, then seven single bytes.
	if got := len(writer.Bytes()); got != 9 {
		t.Errorf("encoded length = %d, want 9", got)
	}
	reader := serial.NewReader(writer.Bytes(), cfg)
	decoded := serial.Struct[Wire](reader, nil)
	if reader.Err() != nil || *decoded != wire {
		t.Errorf("decoded = %+v (%v), want %+v", *decoded, reader.Err(), wire)
	}
}

func TestParameterAnimationPacksAnimatedComponents(t *testing.T) {
	animation := ParameterAnimation{
		BaseValue: serial.Vector4{1, 2, 3, 4},
		Keys: []serial.Vector4{
			{1, 5, 3, 7},
			{1, 6, 3, 8},
			{1, 2, 3, 9},
		},
		Name: "uv",
	}
	cfg := serial.Config{Revision: revision.New(0x272)}
	writer := serial.NewWriter(cfg)
	serial.Struct(writer, &animation)
	if err := writer.Err(); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if animation.ComponentsAnimated != 0b1010 {
		t.Errorf("ComponentsAnimated = %04b, want 1010", animation.ComponentsAnimated)
	}

	reader := serial.NewReader(writer.Bytes(), cfg)
	decoded := serial.Struct[ParameterAnimation](reader, nil)
	if err := reader.Err(); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Name != "uv" || decoded.ComponentsAnimated != 0b1010 {
		t.Errorf("decoded header = %q 0x%x", decoded.Name, decoded.ComponentsAnimated)
	}
	if !slices.Equal(decoded.Keys, animation.Keys) {
		t.Errorf("Keys = %v, want %v", decoded.Keys, animation.Keys)
	}
}

func TestParameterAnimationWithoutKeys(t *testing.T) {
	animation := ParameterAnimation{BaseValue: serial.Vector4{0, 0, 0, 1}, Name: "a"}
	cfg := serial.Config{Revision: revision.New(0x272)}
	writer := serial.NewWriter(cfg)
	serial.Struct(writer, &animation)
	reader := serial.NewReader(writer.Bytes(), cfg)
	decoded := serial.Struct[ParameterAnimation](reader, nil)
	if reader.Err() != nil || decoded.Keys != nil || decoded.Name != "a" {
		t.Errorf("decoded = %+v (%v)", decoded, reader.Err())
	}
	if reader.Remaining() != 0 {
		t.Errorf("%d bytes left over", reader.Remaining())
	}
}

func TestParameterAnimationRejectsOddComponentCount(t *testing.T) {
	cfg := serial.Config{Revision: revision.New(0x272)}
	writer := serial.NewWriter(cfg)
	writer.V4(serial.Vector4{})
	writer.FloatArray([]float32{1, 2, 3})
	writer.I32(ParameterNameSize)
	writer.Str("abc", ParameterNameSize)
	writer.U8(0b0011)

	reader := serial.NewReader(writer.Bytes(), cfg)
	serial.Struct[ParameterAnimation](reader, nil)
	if !errors.Is(reader.Err(), serial.ErrBadLength) {
		t.Errorf("error = %v, want ErrBadLength", reader.Err())
	}
}
