// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package thing implements the game-world entity ("thing") and its
// sparse set of versioned parts.
//
// A [Thing] has 63 part slots ([Part]). Only populated slots are
// serialized, in the order the parts were introduced to the format.
// Which parts follow a thing header is described by two values
// written before the bodies: a parts revision (the newest part
// version present) and, on compressed layouts, a 64-bit presence
// flags word. Older layouts have no flags word and instead write a
// presence boolean before every part the parts revision admits.
//
// Things refer to each other (parent, world, group head, joints,
// contacts) through [serial.Handle]s into the [Graph]'s arena; the
// references are non-owning and may form cycles.
//
// Two historical quirks are reproduced exactly: below sub-version
// 0x107 the creator-anim part sits at flag bit 0x29 and later parts
// shift up one bit ([FlagBit]), and at head version 0x13c the parts
// revision is increased by seven after it is read or written.
package thing
