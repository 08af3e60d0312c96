// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/bureau-foundation/resforge/lib/codec"
	"github.com/bureau-foundation/resforge/lib/descriptor"
)

// indexVersion is the schema version of the index cache file.
const indexVersion = 1

// Annotation records the outcome of a recursive dependency walk for
// one resource.
type Annotation struct {
	HasMissingDependencies bool
	Dependencies           []descriptor.Descriptor
}

// Registry resolves descriptors against a set of archives and file
// databases. Hash descriptors resolve directly to archive blobs; GUID
// descriptors resolve through the first database that maps the GUID,
// then to the archive holding that hash. Archives and databases are
// searched in the order they were added.
//
// Registry implements resource.Index and resource.Annotator.
type Registry struct {
	mu          sync.Mutex
	archives    []*Archive
	databases   []*FileDB
	annotations map[string]Annotation
	logger      *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		annotations: make(map[string]Annotation),
		logger:      opts.logger(),
	}
}

// AddArchive appends a to the search order.
func (r *Registry) AddArchive(a *Archive) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.archives = append(r.archives, a)
}

// AddFileDB appends db to the search order.
func (r *Registry) AddFileDB(db *FileDB) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.databases = append(r.databases, db)
}

// Archives returns the registered archives in search order.
func (r *Registry) Archives() []*Archive {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.archives)
}

// Resolve returns the content hash d refers to. A GUID mapped by
// several FileDBs resolves to the first mapping whose content is in a
// registered archive, or to the first mapping when none is.
func (r *Registry) Resolve(d descriptor.Descriptor) (descriptor.SHA1, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, hash := r.locate(d); a != nil {
		return hash, true
	}
	candidates := r.candidates(d)
	if len(candidates) == 0 {
		return descriptor.SHA1{}, false
	}
	return candidates[0], true
}

// candidates lists the hashes d may refer to: its own hash, or every
// FileDB mapping of its GUID in registration order.
func (r *Registry) candidates(d descriptor.Descriptor) []descriptor.SHA1 {
	switch {
	case d.IsHash():
		return []descriptor.SHA1{d.SHA1()}
	case d.IsGUID():
		var hashes []descriptor.SHA1
		for _, db := range r.databases {
			if entry, ok := db.Lookup(d.GUID()); ok {
				hashes = append(hashes, entry.Hash)
			}
		}
		return hashes
	}
	return nil
}

// Contains reports whether d resolves to a blob in a registered
// archive.
func (r *Registry) Contains(d descriptor.Descriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(d) != nil
}

func (r *Registry) find(d descriptor.Descriptor) *Archive {
	a, _ := r.locate(d)
	return a
}

// locate finds the first archive holding any candidate hash of d.
func (r *Registry) locate(d descriptor.Descriptor) (*Archive, descriptor.SHA1) {
	for _, hash := range r.candidates(d) {
		for _, a := range r.archives {
			if a.Exists(hash) {
				return a, hash
			}
		}
	}
	return nil, descriptor.SHA1{}
}

// Extract returns the blob d resolves to.
func (r *Registry) Extract(d descriptor.Descriptor) ([]byte, error) {
	r.mu.Lock()
	a, hash := r.locate(d)
	r.mu.Unlock()
	if a == nil {
		return nil, fmt.Errorf("%s: %w", d, ErrNotFound)
	}
	return a.Extract(hash)
}

// Annotate records the result of a dependency walk over d.
func (r *Registry) Annotate(d descriptor.Descriptor, hasMissingDependencies bool, dependencies []descriptor.Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.annotations[d.Key()] = Annotation{
		HasMissingDependencies: hasMissingDependencies,
		Dependencies:           slices.Clone(dependencies),
	}
	if hasMissingDependencies {
		r.logger.Debug("resource has missing dependencies", "descriptor", d)
	}
}

// Annotation returns the walk result recorded for d.
func (r *Registry) Annotation(d descriptor.Descriptor) (Annotation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	annotation, ok := r.annotations[d.Key()]
	return annotation, ok
}

// indexFile is the CBOR form of the annotation cache.
type indexFile struct {
	Version int                   `cbor:"version"`
	Entries map[string]indexEntry `cbor:"entries"`
}

type indexEntry struct {
	HasMissingDependencies bool              `cbor:"missing,omitempty"`
	Dependencies           []indexDependency `cbor:"dependencies,omitempty"`
}

type indexDependency struct {
	Ref  string `cbor:"ref"`
	Type int32  `cbor:"type"`
}

// SaveIndex writes the annotations to path as CBOR.
func (r *Registry) SaveIndex(path string) error {
	r.mu.Lock()
	file := indexFile{Version: indexVersion, Entries: make(map[string]indexEntry, len(r.annotations))}
	for key, annotation := range r.annotations {
		entry := indexEntry{HasMissingDependencies: annotation.HasMissingDependencies}
		for _, dependency := range annotation.Dependencies {
			entry.Dependencies = append(entry.Dependencies, indexDependency{
				Ref:  dependency.String(),
				Type: dependency.Type.Value(),
			})
		}
		file.Entries[key] = entry
	}
	r.mu.Unlock()

	data, err := codec.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	if err := writeAtomic(path, "index-*.tmp", func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	}); err != nil {
		return fmt.Errorf("saving index %s: %w", path, err)
	}
	r.logger.Info("index saved", "path", path, "entries", len(file.Entries))
	return nil
}

// LoadIndex merges the annotations stored at path into the registry,
// replacing annotations for the same descriptors.
func (r *Registry) LoadIndex(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	var file indexFile
	if err := codec.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decoding index %s: %w", path, err)
	}
	if file.Version != indexVersion {
		return fmt.Errorf("index %s: unsupported version %d", path, file.Version)
	}

	loaded := make(map[string]Annotation, len(file.Entries))
	for _, key := range slices.Sorted(maps.Keys(file.Entries)) {
		entry := file.Entries[key]
		annotation := Annotation{HasMissingDependencies: entry.HasMissingDependencies}
		for _, dependency := range entry.Dependencies {
			d, err := descriptor.Parse(dependency.Ref, descriptor.TypeFromValue(dependency.Type))
			if err != nil {
				return fmt.Errorf("index %s entry %s: %w", path, key, err)
			}
			annotation.Dependencies = append(annotation.Dependencies, d)
		}
		loaded[key] = annotation
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.annotations, loaded)
	r.logger.Debug("index loaded", "path", path, "entries", len(loaded))
	return nil
}
