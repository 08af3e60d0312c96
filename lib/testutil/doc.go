// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for resforge packages.
//
// [WriteFile] and [ReadFile] move fixture bytes through a test's temp
// directory. [Hex] turns a spaced, commented hex listing into bytes, so
// binary fixtures in tests can be laid out field by field:
//
//	data := testutil.Hex(t, `
//		50 4c 4e 62   # "PLNb"
//		00 00 03 e2   # head
//	`)
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no resforge-internal dependencies.
package testutil
