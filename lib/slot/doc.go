// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package slot implements level slots: the identifiers the game uses to
// place a level on a planet or in a list, and the slot list resource
// that stores them.
package slot
