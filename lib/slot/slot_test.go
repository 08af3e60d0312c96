// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package slot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

func sampleList() *List {
	return NewList(
		Slot{
			ID:               ID{Type: TypeUserLocal, Number: 3},
			Root:             descriptor.NewHash(descriptor.Sum([]byte("level")), descriptor.TypeLevel),
			Location:         serial.Vector4{0.5, 0.25, 1, 0},
			AuthorID:         "creator",
			AuthorName:       "Creator",
			Title:            "First Steps",
			Description:      "a level",
			PrimaryLinkLevel: ID{Type: TypeDeveloper, Number: 1},
			Shareable:        true,
			BackgroundGUID:   0x1f,
		},
		Slot{ID: ID{Type: TypePod}},
	)
}

func TestListRoundTrip(t *testing.T) {
	for _, head := range []uint32{0x132, 0x272, 0x3b5, 0x3e2} {
		cfg := serial.Config{Revision: revision.New(head), Flags: serial.CompressionAll}
		writer := serial.NewWriter(cfg)
		serial.Struct(writer, sampleList())
		if err := writer.Err(); err != nil {
			t.Fatalf("head %#x: encode: %v", head, err)
		}

		reader := serial.NewReader(writer.Bytes(), cfg)
		decoded := serial.Struct[List](reader, nil)
		if err := reader.Err(); err != nil {
			t.Fatalf("head %#x: decode: %v", head, err)
		}
		if len(decoded.Slots) != 2 {
			t.Fatalf("head %#x: %d slots, want 2", head, len(decoded.Slots))
		}
		if got := decoded.Slots[0].Title; got != "First Steps" {
			t.Errorf("head %#x: Title = %q, want First Steps", head, got)
		}
		if !decoded.FromProductionBuild {
			t.Errorf("head %#x: FromProductionBuild = false, want true", head)
		}
		wantShareable := head >= shareableAdded
		if decoded.Slots[0].Shareable != wantShareable {
			t.Errorf("head %#x: Shareable = %v, want %v", head, decoded.Slots[0].Shareable, wantShareable)
		}

		again := serial.NewWriter(cfg)
		serial.Struct(again, decoded)
		if !bytes.Equal(again.Bytes(), writer.Bytes()) {
			t.Errorf("head %#x: re-encode differs", head)
		}
	}
}

func TestProductionBuildFlag(t *testing.T) {
	list := NewList()
	list.FromProductionBuild = false
	cfg := serial.Config{Revision: revision.New(0x3b6)}
	writer := serial.NewWriter(cfg)
	serial.Struct(writer, list)
	want := []byte{0, 0, 0, 0, 0}
	if !bytes.Equal(writer.Bytes(), want) {
		t.Errorf("encoded = %x, want %x", writer.Bytes(), want)
	}
}

func TestUnknownSlotType(t *testing.T) {
	cfg := serial.Config{Revision: revision.New(0x3e2)}
	reader := serial.NewReader([]byte{0, 0, 0, 99, 0, 0, 0, 1}, cfg)
	var id ID
	id.Serialize(reader)
	if !errors.Is(reader.Err(), serial.ErrUnknownEnum) {
		t.Errorf("error = %v, want ErrUnknownEnum", reader.Err())
	}
}
