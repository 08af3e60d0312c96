// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// minFileEntrySize is the encoded size of a file entry with an empty
// path.
const minFileEntrySize = 2 + 4 + 4 + 20 + 4

// FileEntry maps one GUID to a game path and the content stored there.
type FileEntry struct {
	Path string
	Date uint32
	Size uint32
	Hash descriptor.SHA1
	GUID descriptor.GUID
}

func (e *FileEntry) Serialize(s *serial.Serializer) {
	length := int(s.U16(uint16(len(e.Path))))
	e.Path = string(s.RawBytes([]byte(e.Path), length))
	e.Date = s.U32F(e.Date)
	e.Size = s.U32F(e.Size)
	e.Hash = s.SHA1(e.Hash)
	e.GUID = descriptor.GUID(s.U32F(uint32(e.GUID)))
}

// FileDB is a GUID map file: a revision word, an entry count, and the
// entries. Lookups by GUID and by path are constant time. A FileDB is
// not safe for concurrent mutation.
type FileDB struct {
	Revision uint32

	entries []FileEntry
	byGUID  map[descriptor.GUID]int
	byPath  map[string]int
}

// NewFileDB returns an empty database.
func NewFileDB(revision uint32) *FileDB {
	return &FileDB{
		Revision: revision,
		byGUID:   make(map[descriptor.GUID]int),
		byPath:   make(map[string]int),
	}
}

// LoadFileDB reads the map file at path.
func LoadFileDB(path string) (*FileDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file database: %w", err)
	}
	db, err := DecodeFileDB(data)
	if err != nil {
		return nil, fmt.Errorf("file database %s: %w", path, err)
	}
	return db, nil
}

// DecodeFileDB parses a map file image.
func DecodeFileDB(data []byte) (*FileDB, error) {
	s := serial.NewReader(data, serial.Config{})
	db := NewFileDB(s.U32F(0))
	count := s.Count(0, minFileEntrySize)
	for i := 0; i < count && s.Err() == nil; i++ {
		var entry FileEntry
		s.Scope(fmt.Sprintf("entries[%d]", i), func() {
			entry.Serialize(s)
		})
		db.Put(entry)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

// Encode returns the map file image. Entries are written in insertion
// order.
func (db *FileDB) Encode() []byte {
	s := serial.NewWriter(serial.Config{})
	s.U32F(db.Revision)
	s.Count(len(db.entries), minFileEntrySize)
	for i := range db.entries {
		db.entries[i].Serialize(s)
	}
	return s.Bytes()
}

// Save writes the database to path atomically.
func (db *FileDB) Save(path string) error {
	image := db.Encode()
	err := writeAtomic(path, "filedb-*.tmp", func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(image))
		return err
	})
	if err != nil {
		return fmt.Errorf("saving file database %s: %w", path, err)
	}
	return nil
}

// Put adds entry, replacing any entry with the same GUID. The path
// index follows the most recent entry for each path.
func (db *FileDB) Put(entry FileEntry) {
	if i, ok := db.byGUID[entry.GUID]; ok {
		previous := db.entries[i].Path
		if db.byPath[normalizePath(previous)] == i {
			delete(db.byPath, normalizePath(previous))
		}
		db.entries[i] = entry
		db.byPath[normalizePath(entry.Path)] = i
		return
	}
	i := len(db.entries)
	db.entries = append(db.entries, entry)
	db.byGUID[entry.GUID] = i
	db.byPath[normalizePath(entry.Path)] = i
}

// Lookup returns the entry for guid.
func (db *FileDB) Lookup(guid descriptor.GUID) (FileEntry, bool) {
	i, ok := db.byGUID[guid]
	if !ok {
		return FileEntry{}, false
	}
	return db.entries[i], true
}

// LookupPath returns the entry for a game path. Paths compare case
// insensitively with either slash direction.
func (db *FileDB) LookupPath(path string) (FileEntry, bool) {
	i, ok := db.byPath[normalizePath(path)]
	if !ok {
		return FileEntry{}, false
	}
	return db.entries[i], true
}

// Entries returns a copy of the entries in insertion order.
func (db *FileDB) Entries() []FileEntry { return slices.Clone(db.entries) }

// Len returns the number of entries.
func (db *FileDB) Len() int { return len(db.entries) }

func normalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
}
