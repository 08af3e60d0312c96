// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Resforge inspects and rebuilds serialized game resources and the FARC
// archives that hold them.
//
// Usage:
//
//	resforge archive list|extract|add|merge|export|import|manifest ...
//	resforge resource info|deps|replace-dep|respec ...
//	resforge plan backport ...
//	resforge version
//
// Every command accepts --config to name a YAML configuration file
// (otherwise RESFORGE_CONFIG, otherwise built-in defaults) and
// -v/--verbose for debug logging.
package main
