// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
)

// SHA1 is a 20-byte SHA-1 digest. Archives, dependency tables and
// resource references all address blobs by this hash, so the algorithm
// is fixed by the file format rather than chosen here.
type SHA1 [20]byte

// Sum returns the SHA-1 digest of data.
func Sum(data []byte) SHA1 {
	return SHA1(sha1.Sum(data))
}

// String returns the lowercase hex encoding of the digest.
func (h SHA1) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero digest, which the format
// uses as "no hash".
func (h SHA1) IsZero() bool {
	return h == SHA1{}
}

// ParseSHA1 parses a 40-character hex string, with or without a leading
// "h".
func ParseSHA1(text string) (SHA1, error) {
	var hash SHA1
	if len(text) == 41 && text[0] == 'h' {
		text = text[1:]
	}
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return hash, fmt.Errorf("parsing sha1: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("sha1 is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}

// MarshalText encodes the digest as lowercase hex, so index files
// and manifests carry readable hashes.
func (h SHA1) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses the output of [SHA1.MarshalText].
func (h *SHA1) UnmarshalText(text []byte) error {
	parsed, err := ParseSHA1(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// GUID is a stable resource id assigned by the game's file database.
// The wire form is 32 bits in every revision.
type GUID uint32

// String returns the canonical "g<decimal>" form.
func (g GUID) String() string {
	return "g" + strconv.FormatUint(uint64(g), 10)
}

// ParseGUID parses a decimal GUID with an optional leading "g". A 0x
// prefix is accepted after the "g".
func ParseGUID(text string) (GUID, error) {
	if len(text) > 1 && (text[0] == 'g' || text[0] == 'G') {
		text = text[1:]
	}
	value, err := strconv.ParseUint(text, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing guid: %w", err)
	}
	return GUID(value), nil
}
