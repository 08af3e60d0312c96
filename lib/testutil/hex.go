// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/hex"
	"strings"
)

// Hex decodes a hex listing. Whitespace separates nothing and is
// ignored, and a '#' starts a comment that runs to the end of the line.
func Hex(t TB, listing string) []byte {
	t.Helper()
	var digits strings.Builder
	for line := range strings.Lines(listing) {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		for _, field := range strings.Fields(line) {
			digits.WriteString(field)
		}
	}
	data, err := hex.DecodeString(digits.String())
	if err != nil {
		t.Fatalf("decoding hex fixture: %v", err)
	}
	return data
}
