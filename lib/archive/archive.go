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
	"time"

	"github.com/bureau-foundation/resforge/lib/descriptor"
)

// Options configure [Open] and [New].
type Options struct {
	// Logger receives flush and refresh events. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Archive is a FARC file plus a queue of blobs not yet written to it.
// All methods are safe for concurrent use; callers are serialized by
// an internal mutex.
type Archive struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger

	// entries is the table as last read or written, sorted by hash.
	entries []Entry
	lookup  map[descriptor.SHA1]Entry

	// dataEnd is the offset of the first table row: where saved blobs
	// end and queued blobs will begin.
	dataEnd int64

	queue map[descriptor.SHA1][]byte

	// modTime is the file modification time seen at the last read or
	// write. The zero time means the file did not exist.
	modTime time.Time
}

// New returns an empty archive that will be created at path on the
// first [Archive.Save]. An existing file at path is replaced by that
// save.
func New(path string, opts Options) *Archive {
	return &Archive{
		path:   path,
		logger: opts.logger(),
		lookup: make(map[descriptor.SHA1]Entry),
		queue:  make(map[descriptor.SHA1][]byte),
	}
}

// Open reads the table of the FARC file at path. Blob data is read on
// demand by [Archive.Extract].
func Open(path string, opts Options) (*Archive, error) {
	a := New(path, opts)
	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

// Path returns the backing file path.
func (a *Archive) Path() string { return a.path }

// load replaces the table with the one on disk. Callers hold mu, or
// own a not-yet-shared archive.
func (a *Archive) load() error {
	file, err := os.Open(a.path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stating archive %s: %w", a.path, err)
	}
	if info.Size() < trailerSize {
		return fmt.Errorf("archive %s: %w: %d bytes", a.path, ErrCorrupt, info.Size())
	}

	trailer := make([]byte, trailerSize)
	if _, err := file.ReadAt(trailer, info.Size()-trailerSize); err != nil {
		return fmt.Errorf("reading archive trailer %s: %w", a.path, err)
	}
	count, tableOffset, err := parseTrailer(trailer, info.Size())
	if err != nil {
		return fmt.Errorf("archive %s: %w", a.path, err)
	}
	table := make([]byte, count*RowSize)
	if _, err := file.ReadAt(table, tableOffset); err != nil {
		return fmt.Errorf("reading archive table %s: %w", a.path, err)
	}
	entries, err := decodeTable(table, count, tableOffset)
	if err != nil {
		return fmt.Errorf("archive %s: %w", a.path, err)
	}

	sortEntries(entries)
	a.entries = entries
	a.lookup = make(map[descriptor.SHA1]Entry, len(entries))
	for _, entry := range entries {
		a.lookup[entry.Hash] = entry
	}
	a.dataEnd = tableOffset
	a.modTime = info.ModTime()
	a.logger.Debug("archive table loaded", "path", a.path, "entries", len(entries))
	return nil
}

// Extract returns the blob stored under hash, from the queue if it was
// added since the last save, otherwise from the file. The returned
// slice is owned by the caller.
func (a *Archive) Extract(hash descriptor.SHA1) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.extract(hash)
}

func (a *Archive) extract(hash descriptor.SHA1) ([]byte, error) {
	if data, ok := a.queue[hash]; ok {
		return bytes.Clone(data), nil
	}
	entry, ok := a.lookup[hash]
	if !ok {
		return nil, fmt.Errorf("%s: %w", hash, ErrNotFound)
	}
	file, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()
	data := make([]byte, entry.Size)
	if _, err := file.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", hash, a.path, err)
	}
	return data, nil
}

// Exists reports whether hash is queued or in the table.
func (a *Archive) Exists(hash descriptor.SHA1) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.exists(hash)
}

func (a *Archive) exists(hash descriptor.SHA1) bool {
	if _, ok := a.queue[hash]; ok {
		return true
	}
	_, ok := a.lookup[hash]
	return ok
}

// Add queues data and returns its hash. Content already in the archive
// is not queued again.
func (a *Archive) Add(data []byte) descriptor.SHA1 {
	hash := descriptor.Sum(data)
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.exists(hash) {
		a.queue[hash] = bytes.Clone(data)
	}
	return hash
}

// Merge queues every blob of other that this archive lacks and
// returns their hashes in ascending order. Blobs are copied under the
// hashes other records for them, without rehashing.
func (a *Archive) Merge(other *Archive) ([]descriptor.SHA1, error) {
	if other == a {
		return nil, nil
	}
	blobs, err := other.snapshot()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	var added []descriptor.SHA1
	for _, hash := range slices.SortedFunc(maps.Keys(blobs), compareHash) {
		if a.exists(hash) {
			continue
		}
		a.queue[hash] = blobs[hash]
		added = append(added, hash)
	}
	a.logger.Debug("archive merged", "source", other.path, "added", len(added))
	return added, nil
}

// snapshot reads every blob in the archive, queued ones included.
func (a *Archive) snapshot() (map[descriptor.SHA1][]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	blobs := make(map[descriptor.SHA1][]byte, len(a.entries)+len(a.queue))
	if len(a.entries) > 0 {
		file, err := os.Open(a.path)
		if err != nil {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		defer file.Close()
		for _, entry := range a.entries {
			data := make([]byte, entry.Size)
			if _, err := file.ReadAt(data, int64(entry.Offset)); err != nil {
				return nil, fmt.Errorf("reading %s from %s: %w", entry.Hash, a.path, err)
			}
			blobs[entry.Hash] = data
		}
	}
	for hash, data := range a.queue {
		blobs[hash] = bytes.Clone(data)
	}
	return blobs, nil
}

// Save appends the queued blobs to the file in ascending hash order,
// rewrites the table, and clears the queue. The new file is written
// beside the old one and renamed over it, so a failed save leaves the
// previous file and the queue intact. Saving an archive that exists on
// disk with an empty queue does nothing.
func (a *Archive) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.queue) == 0 && !a.modTime.IsZero() {
		return nil
	}

	queued := slices.SortedFunc(maps.Keys(a.queue), compareHash)
	entries := slices.Clone(a.entries)
	end := uint64(a.dataEnd)
	for _, hash := range queued {
		size := uint64(len(a.queue[hash]))
		if err := checkOffset(end + size); err != nil {
			return fmt.Errorf("saving %s: %w", a.path, err)
		}
		entries = append(entries, Entry{Hash: hash, Offset: uint32(end), Size: uint32(size)})
		end += size
	}
	sortEntries(entries)

	var written int64
	err := writeAtomic(a.path, "farc-*.tmp", func(w io.Writer) error {
		if a.dataEnd > 0 {
			source, err := os.Open(a.path)
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}
			defer source.Close()
			n, err := io.Copy(w, io.NewSectionReader(source, 0, a.dataEnd))
			written += n
			if err != nil {
				return fmt.Errorf("copying existing data: %w", err)
			}
		}
		for _, hash := range queued {
			n, err := w.Write(a.queue[hash])
			written += int64(n)
			if err != nil {
				return fmt.Errorf("writing %s: %w", hash, err)
			}
		}
		n, err := w.Write(encodeTable(entries))
		written += int64(n)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", a.path, err)
	}

	info, err := os.Stat(a.path)
	if err != nil {
		return fmt.Errorf("stating saved archive %s: %w", a.path, err)
	}
	a.entries = entries
	a.lookup = make(map[descriptor.SHA1]Entry, len(entries))
	for _, entry := range entries {
		a.lookup[entry.Hash] = entry
	}
	a.dataEnd = int64(end)
	a.queue = make(map[descriptor.SHA1][]byte)
	a.modTime = info.ModTime()
	a.logger.Info("archive saved",
		"path", a.path,
		"entries", len(entries),
		"flushed", len(queued),
		"bytes", written,
	)
	return nil
}

// Entries returns the saved table, sorted by hash. Queued blobs are not
// included.
func (a *Archive) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.entries)
}

// Queued returns the hashes waiting for [Archive.Save], sorted.
func (a *Archive) Queued() []descriptor.SHA1 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.SortedFunc(maps.Keys(a.queue), compareHash)
}

// QueueSize is the total byte size of the queued blobs.
func (a *Archive) QueueSize() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var size int64
	for _, data := range a.queue {
		size += int64(len(data))
	}
	return size
}

// WasModified reports whether the file changed since this archive last
// read or wrote it. A missing file counts as modified.
func (a *Archive) WasModified() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	info, err := os.Stat(a.path)
	if err != nil {
		return true
	}
	return !info.ModTime().Equal(a.modTime)
}

// Refresh rereads the table from disk. The queue is kept, minus blobs
// the file now holds.
func (a *Archive) Refresh() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.load(); err != nil {
		return fmt.Errorf("refreshing %s: %w", a.path, err)
	}
	for hash := range a.queue {
		if _, ok := a.lookup[hash]; ok {
			delete(a.queue, hash)
		}
	}
	return nil
}

func compareHash(a, b descriptor.SHA1) int {
	return bytes.Compare(a[:], b[:])
}
