// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import "fmt"

// Method is the serialization method byte that follows the magic.
// Values are wire constants.
type Method byte

const (
	// MethodUnknown marks an unframed container.
	MethodUnknown Method = 0

	MethodBinary          Method = 'b'
	MethodEncryptedBinary Method = 'e'
	MethodText            Method = 't'
	MethodTexture         Method = ' '
	MethodGxtSimple       Method = 's'
	MethodGxtExtended     Method = 'S'
)

func parseMethod(b byte) Method {
	switch m := Method(b); m {
	case MethodBinary, MethodEncryptedBinary, MethodText, MethodTexture, MethodGxtSimple, MethodGxtExtended:
		return m
	default:
		return MethodUnknown
	}
}

// IsBinary reports whether the method carries a revisioned binary
// header.
func (m Method) IsBinary() bool {
	return m == MethodBinary || m == MethodEncryptedBinary
}

// IsTexture reports whether the method carries texture data.
func (m Method) IsTexture() bool {
	return m == MethodTexture || m == MethodGxtSimple || m == MethodGxtExtended
}

func (m Method) String() string {
	switch m {
	case MethodUnknown:
		return "unknown"
	case MethodBinary:
		return "binary"
	case MethodEncryptedBinary:
		return "encrypted_binary"
	case MethodText:
		return "text"
	case MethodTexture:
		return "texture"
	case MethodGxtSimple:
		return "gxt_simple"
	case MethodGxtExtended:
		return "gxt_extended"
	default:
		return fmt.Sprintf("unknown(0x%02x)", byte(m))
	}
}
