// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"fmt"
	"strings"
)

// CompressionFlags select the compact encodings used by a session. The
// value is stored in the container header from head version 0x297.
type CompressionFlags uint8

const (
	// CompressedIntegers encodes I32/U32/U64/I64 as LEB128 and
	// S32/S64 as zigzag LEB128.
	CompressedIntegers CompressionFlags = 1 << iota

	// CompressedVectors prefixes V3/V4 values with a mask of non-zero
	// components and writes only those.
	CompressedVectors

	// CompressedMatrices prefixes M44 values with a 16-bit mask of
	// elements that differ from identity and writes only those.
	CompressedMatrices

	// CompressionNone disables every compact encoding.
	CompressionNone CompressionFlags = 0

	// CompressionAll enables every compact encoding.
	CompressionAll = CompressedIntegers | CompressedVectors | CompressedMatrices
)

// Has reports whether every bit of flag is set.
func (f CompressionFlags) Has(flag CompressionFlags) bool {
	return f&flag == flag
}

// String lists the set flags, "none" when empty.
func (f CompressionFlags) String() string {
	if f == CompressionNone {
		return "none"
	}
	var names []string
	if f.Has(CompressedIntegers) {
		names = append(names, "integers")
	}
	if f.Has(CompressedVectors) {
		names = append(names, "vectors")
	}
	if f.Has(CompressedMatrices) {
		names = append(names, "matrices")
	}
	if rest := f &^ CompressionAll; rest != 0 {
		names = append(names, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(names, "|")
}

// ParseCompressionFlags accepts "all", "none", or a "|"-separated list
// of integers / vectors / matrices.
func ParseCompressionFlags(text string) (CompressionFlags, error) {
	switch text {
	case "all":
		return CompressionAll, nil
	case "none", "":
		return CompressionNone, nil
	}
	var flags CompressionFlags
	for _, name := range strings.Split(text, "|") {
		switch strings.TrimSpace(name) {
		case "integers":
			flags |= CompressedIntegers
		case "vectors":
			flags |= CompressedVectors
		case "matrices":
			flags |= CompressedMatrices
		default:
			return 0, fmt.Errorf("unknown compression flag %q", name)
		}
	}
	return flags, nil
}
