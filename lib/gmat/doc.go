// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gmat holds pieces of the shader-graph material resource: the
// wires between graph boxes and animated material parameters.
package gmat
