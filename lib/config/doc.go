// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for resforge.
//
// Configuration is loaded from a single file specified by either the
// RESFORGE_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no discovery and no automatic file
// search. Commands that run without a config file use [Default].
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${RESFORGE_ROOT}, and ${VAR:-default} patterns are
// expanded. No environment variable overrides a config value.
//
// This package depends on no other resforge packages; the output
// revision and compression strings are parsed by their consumers.
package config
