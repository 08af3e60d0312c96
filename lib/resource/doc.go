// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resource is the load and build API over framed containers.
//
// [Load] decodes a typed structure from a binary container, and
// [LoadBytes] decodes a buffer and dispatches on the container type
// through a factory table. [Build] runs a structure through a write
// session and frames the result, collecting the session's resource
// references as the dependency table.
//
// [RegisterDependencies] resolves a container's dependency table
// against an [Index]. Missing dependencies are counted, never returned
// as errors. [ReplaceDependency] patches the serialized form of one
// dependency in place, including inside a plan's thing sub-buffer.
package resource
