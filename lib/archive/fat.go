// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/serial"
)

const (
	// Magic ends every FARC file.
	Magic = "FARC"

	// RowSize is the size of one file allocation table row.
	RowSize = 0x1c

	// trailerSize is the row count plus the magic.
	trailerSize = 8
)

var (
	// ErrNotFound is returned when a hash or GUID is in neither the
	// queue nor the table.
	ErrNotFound = errors.New("not found in archive")

	// ErrCorrupt is returned when a FARC trailer or table does not
	// describe the file it was read from.
	ErrCorrupt = errors.New("corrupt archive")

	// ErrTooLarge is returned by Save when the data would pass the
	// 32-bit offset limit of the table.
	ErrTooLarge = errors.New("archive exceeds 4 GiB offset limit")
)

// Entry is one file allocation table row.
type Entry struct {
	Hash   descriptor.SHA1
	Offset uint32
	Size   uint32
}

func (e *Entry) Serialize(s *serial.Serializer) {
	e.Hash = s.SHA1(e.Hash)
	e.Offset = s.U32F(e.Offset)
	e.Size = s.U32F(e.Size)
}

func (e Entry) end() uint64 { return uint64(e.Offset) + uint64(e.Size) }

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Compare(string(a.Hash[:]), string(b.Hash[:]))
	})
}

// encodeTable returns the table rows followed by the trailer.
func encodeTable(entries []Entry) []byte {
	s := serial.NewWriter(serial.Config{})
	for i := range entries {
		entries[i].Serialize(s)
	}
	s.U32F(uint32(len(entries)))
	s.RawBytes([]byte(Magic), len(Magic))
	return s.Bytes()
}

// parseTrailer validates the last eight bytes of a file of fileSize
// bytes and returns the row count and the offset of the first row.
func parseTrailer(trailer []byte, fileSize int64) (count int, tableOffset int64, err error) {
	if len(trailer) != trailerSize || string(trailer[4:]) != Magic {
		return 0, 0, fmt.Errorf("%w: missing %s trailer", ErrCorrupt, Magic)
	}
	s := serial.NewReader(trailer, serial.Config{})
	count = int(s.U32F(0))
	tableOffset = fileSize - trailerSize - int64(count)*RowSize
	if tableOffset < 0 {
		return 0, 0, fmt.Errorf("%w: %d rows do not fit in %d bytes", ErrCorrupt, count, fileSize)
	}
	return count, tableOffset, nil
}

// decodeTable reads count rows and checks each lies within the data
// region that ends at dataEnd.
func decodeTable(table []byte, count int, dataEnd int64) ([]Entry, error) {
	s := serial.NewReader(table, serial.Config{})
	entries := make([]Entry, count)
	for i := range entries {
		entries[i].Serialize(s)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	for _, entry := range entries {
		if entry.end() > uint64(dataEnd) {
			return nil, fmt.Errorf("%w: entry %s [%d, %d) past data end %d",
				ErrCorrupt, entry.Hash, entry.Offset, entry.end(), dataEnd)
		}
	}
	return entries, nil
}

func checkOffset(end uint64) error {
	if end > math.MaxUint32 {
		return fmt.Errorf("%w: data would end at %d", ErrTooLarge, end)
	}
	return nil
}
