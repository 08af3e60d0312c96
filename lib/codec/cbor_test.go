// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bureau-foundation/resforge/lib/descriptor"
)

type sampleEntry struct {
	Hash   descriptor.SHA1 `cbor:"sha1"`
	Size   int64           `cbor:"size"`
	Digest [4]byte         `cbor:"digest"`
	Type   string          `cbor:"type,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleEntry{
		Hash:   descriptor.Sum([]byte("level")),
		Size:   5,
		Digest: [4]byte{1, 2, 3, 4},
		Type:   "level",
	}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleEntry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestHashEncodesAsText(t *testing.T) {
	hash := descriptor.Sum([]byte("level"))
	data, err := Marshal(sampleEntry{Hash: hash})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"`+hash.String()+`"`) {
		t.Errorf("notation %q does not contain the hex hash", notation)
	}
	if strings.Contains(notation, `"type"`) {
		t.Errorf("notation %q contains an omitted empty field", notation)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var entry sampleEntry
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &entry); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}
