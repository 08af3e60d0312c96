// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ChunkSize is the decompressed size of every chunk but the last in a
// compressed stream.
const ChunkSize = 0x8000

// streamVersion is the leading u16 of every compressed stream.
const streamVersion = 1

// ErrCorruptStream is returned when a compressed stream's header or
// chunk table does not match its data.
var ErrCorruptStream = errors.New("corrupt compressed stream")

// Compress encodes data as a chunked zlib stream:
//
//	u16 1
//	u16 chunk count
//	per chunk: u16 compressed size, u16 decompressed size
//	chunk data
//
// Each chunk covers up to [ChunkSize] bytes of input. A chunk that does
// not shrink under zlib is stored raw, marked by equal sizes.
func Compress(data []byte) ([]byte, error) {
	chunkCount := (len(data) + ChunkSize - 1) / ChunkSize
	if chunkCount > 0xffff {
		return nil, fmt.Errorf("compressing %d bytes: more than 65535 chunks", len(data))
	}

	chunks := make([][]byte, chunkCount)
	table := make([]byte, 0, 4+4*chunkCount)
	table = binary.BigEndian.AppendUint16(table, streamVersion)
	table = binary.BigEndian.AppendUint16(table, uint16(chunkCount))

	var buffer bytes.Buffer
	for i := range chunks {
		chunk := data[i*ChunkSize : min((i+1)*ChunkSize, len(data))]

		buffer.Reset()
		writer, err := zlib.NewWriterLevel(&buffer, zlib.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("creating zlib writer: %w", err)
		}
		if _, err := writer.Write(chunk); err != nil {
			return nil, fmt.Errorf("compressing chunk %d: %w", i, err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("compressing chunk %d: %w", i, err)
		}

		if buffer.Len() < len(chunk) {
			chunks[i] = bytes.Clone(buffer.Bytes())
		} else {
			chunks[i] = chunk
		}
		table = binary.BigEndian.AppendUint16(table, uint16(len(chunks[i])))
		table = binary.BigEndian.AppendUint16(table, uint16(len(chunk)))
	}

	for _, chunk := range chunks {
		table = append(table, chunk...)
	}
	return table, nil
}

// Decompress decodes the chunked zlib stream at the start of data. It
// returns the decompressed payload and the number of input bytes the
// stream occupied; bytes after the stream are ignored.
func Decompress(data []byte) ([]byte, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("stream header: %w", ErrCorruptStream)
	}
	if version := binary.BigEndian.Uint16(data); version != streamVersion {
		return nil, 0, fmt.Errorf("stream version %d: %w", version, ErrCorruptStream)
	}
	chunkCount := int(binary.BigEndian.Uint16(data[2:]))
	offset := 4 + 4*chunkCount
	if offset > len(data) {
		return nil, 0, fmt.Errorf("chunk table for %d chunks: %w", chunkCount, ErrCorruptStream)
	}

	var output bytes.Buffer
	for i := range chunkCount {
		entry := data[4+4*i:]
		compressedSize := int(binary.BigEndian.Uint16(entry))
		decompressedSize := int(binary.BigEndian.Uint16(entry[2:]))
		if offset+compressedSize > len(data) {
			return nil, 0, fmt.Errorf("chunk %d needs %d bytes at %d of %d: %w",
				i, compressedSize, offset, len(data), ErrCorruptStream)
		}
		chunk := data[offset : offset+compressedSize]
		offset += compressedSize

		if compressedSize == decompressedSize {
			output.Write(chunk)
			continue
		}
		reader, err := zlib.NewReader(bytes.NewReader(chunk))
		if err != nil {
			return nil, 0, fmt.Errorf("chunk %d: %w", i, err)
		}
		written, err := io.Copy(&output, io.LimitReader(reader, int64(decompressedSize)+1))
		reader.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("chunk %d: %w", i, err)
		}
		if int(written) != decompressedSize {
			return nil, 0, fmt.Errorf("chunk %d inflated to %d bytes, table says %d: %w",
				i, written, decompressedSize, ErrCorruptStream)
		}
	}
	return output.Bytes(), offset, nil
}
