// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile holds the structures shared by player profile
// resources: per-level viewing history and the players tagged in
// photos.
package profile
