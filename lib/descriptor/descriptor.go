// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package descriptor

import (
	"fmt"
	"strings"
)

// Descriptor is a typed reference to another resource, addressed by
// exactly one of a GUID or a SHA-1 hash. The zero value is the null
// descriptor.
//
// Descriptors are comparable values but callers should prefer
// [Descriptor.Equal] or [Descriptor.Key]: == also compares Type and
// Flags, which do not take part in resource identity.
type Descriptor struct {
	Type ResourceType

	// Flags are transient per-reference flags carried by resource
	// references from head version 0x22e. They are not part of
	// identity.
	Flags uint32

	guid    GUID
	sha1    SHA1
	hasGUID bool
	hasSHA1 bool
}

// NewGUID returns a descriptor addressing a resource by GUID.
func NewGUID(guid GUID, resourceType ResourceType) Descriptor {
	return Descriptor{Type: resourceType, guid: guid, hasGUID: true}
}

// NewHash returns a descriptor addressing a resource by content hash.
func NewHash(hash SHA1, resourceType ResourceType) Descriptor {
	return Descriptor{Type: resourceType, sha1: hash, hasSHA1: true}
}

// Parse parses "g<decimal>" or "h<hex>" (a bare 40-character hex hash is
// also accepted) into a descriptor of the given type.
func Parse(text string, resourceType ResourceType) (Descriptor, error) {
	text = strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(text, "g") || strings.HasPrefix(text, "G"):
		guid, err := ParseGUID(text)
		if err != nil {
			return Descriptor{}, fmt.Errorf("parsing descriptor %q: %w", text, err)
		}
		return NewGUID(guid, resourceType), nil
	case strings.HasPrefix(text, "h") || len(text) == 40:
		hash, err := ParseSHA1(text)
		if err != nil {
			return Descriptor{}, fmt.Errorf("parsing descriptor %q: %w", text, err)
		}
		return NewHash(hash, resourceType), nil
	default:
		return Descriptor{}, fmt.Errorf("descriptor %q is neither a guid nor a hash", text)
	}
}

// IsGUID reports whether d is addressed by GUID.
func (d Descriptor) IsGUID() bool { return d.hasGUID }

// IsHash reports whether d is addressed by content hash.
func (d Descriptor) IsHash() bool { return d.hasSHA1 }

// IsNull reports whether d addresses nothing.
func (d Descriptor) IsNull() bool { return !d.hasGUID && !d.hasSHA1 }

// GUID returns the GUID address. Only meaningful when IsGUID is true.
func (d Descriptor) GUID() GUID { return d.guid }

// SHA1 returns the hash address. Only meaningful when IsHash is true.
func (d Descriptor) SHA1() SHA1 { return d.sha1 }

// WithType returns a copy of d tagged with another type.
func (d Descriptor) WithType(resourceType ResourceType) Descriptor {
	d.Type = resourceType
	return d
}

// String returns the canonical form: "h<hex>", "g<decimal>", or "null".
func (d Descriptor) String() string {
	switch {
	case d.hasSHA1:
		return "h" + d.sha1.String()
	case d.hasGUID:
		return d.guid.String()
	default:
		return "null"
	}
}

// Key is the identity of d, suitable as a map key.
func (d Descriptor) Key() string { return d.String() }

// Equal reports whether d and other address the same resource.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.String() == other.String()
}
