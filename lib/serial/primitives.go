// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serial

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// maxVarintLen is the longest LEB128 encoding of a 64-bit value.
const maxVarintLen = 10

// U8 reads or writes one byte.
func (s *Serializer) U8(v uint8) uint8 {
	if s.writing {
		s.put(v)
		return v
	}
	b := s.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// I8 reads or writes one signed byte.
func (s *Serializer) I8(v int8) int8 {
	return int8(s.U8(uint8(v)))
}

// Bool reads or writes a one-byte boolean. Any non-zero byte reads as
// true.
func (s *Serializer) Bool(v bool) bool {
	var b uint8
	if v {
		b = 1
	}
	return s.U8(b) != 0
}

// U16 reads or writes a fixed big-endian 16-bit value.
func (s *Serializer) U16(v uint16) uint16 {
	if s.writing {
		s.put(byte(v>>8), byte(v))
		return v
	}
	b := s.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// I16 reads or writes a fixed big-endian signed 16-bit value.
func (s *Serializer) I16(v int16) int16 {
	return int16(s.U16(uint16(v)))
}

// U32F reads or writes a fixed big-endian 32-bit value regardless of
// the session compression flags.
func (s *Serializer) U32F(v uint32) uint32 {
	if s.writing {
		s.put(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		return v
	}
	b := s.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// I32F is the signed form of [Serializer.U32F].
func (s *Serializer) I32F(v int32) int32 {
	return int32(s.U32F(uint32(v)))
}

// U64F reads or writes a fixed big-endian 64-bit value.
func (s *Serializer) U64F(v uint64) uint64 {
	if s.writing {
		s.put(binary.BigEndian.AppendUint64(nil, v)...)
		return v
	}
	b := s.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

// U32 reads or writes a 32-bit value: unsigned LEB128 when the session
// compresses integers, fixed big-endian otherwise.
func (s *Serializer) U32(v uint32) uint32 {
	if !s.config.Flags.Has(CompressedIntegers) {
		return s.U32F(v)
	}
	return uint32(s.varint(uint64(v)))
}

// I32 is the signed form of [Serializer.U32]. A negative value is
// encoded as its 32-bit two's complement, five bytes when compressed.
func (s *Serializer) I32(v int32) int32 {
	return int32(s.U32(uint32(v)))
}

// S32 reads or writes a signed 32-bit value: zigzag LEB128 when the
// session compresses integers, fixed big-endian otherwise.
func (s *Serializer) S32(v int32) int32 {
	if !s.config.Flags.Has(CompressedIntegers) {
		return s.I32F(v)
	}
	zigzag := uint32(v<<1) ^ uint32(v>>31)
	decoded := uint32(s.varint(uint64(zigzag)))
	return int32(decoded>>1) ^ -int32(decoded&1)
}

// U64 reads or writes a 64-bit value, LEB128 when compressed.
func (s *Serializer) U64(v uint64) uint64 {
	if !s.config.Flags.Has(CompressedIntegers) {
		return s.U64F(v)
	}
	return s.varint(v)
}

// I64 is the signed form of [Serializer.U64].
func (s *Serializer) I64(v int64) int64 {
	return int64(s.U64(uint64(v)))
}

// S64 reads or writes a signed 64-bit value, zigzag LEB128 when
// compressed.
func (s *Serializer) S64(v int64) int64 {
	if !s.config.Flags.Has(CompressedIntegers) {
		return int64(s.U64F(uint64(v)))
	}
	zigzag := uint64(v<<1) ^ uint64(v>>63)
	decoded := s.varint(zigzag)
	return int64(decoded>>1) ^ -int64(decoded&1)
}

// varint reads or writes an unsigned LEB128 value.
func (s *Serializer) varint(v uint64) uint64 {
	if s.writing {
		s.put(binary.AppendUvarint(nil, v)...)
		return v
	}
	if s.err != nil {
		return 0
	}
	var result uint64
	for i := 0; i < maxVarintLen; i++ {
		b := s.take(1)
		if b == nil {
			return 0
		}
		result |= uint64(b[0]&0x7f) << (7 * i)
		if b[0]&0x80 == 0 {
			return result
		}
	}
	s.Fail(fmt.Errorf("varint longer than %d bytes: %w", maxVarintLen, ErrBadLength))
	return 0
}

// F32 reads or writes a big-endian IEEE-754 float.
func (s *Serializer) F32(v float32) float32 {
	return math.Float32frombits(s.U32F(math.Float32bits(v)))
}

// RawBytes reads or writes exactly n raw bytes. While writing, v is padded
// with zeros or truncated to n.
func (s *Serializer) RawBytes(v []byte, n int) []byte {
	if s.writing {
		if n < 0 {
			s.Fail(fmt.Errorf("raw length %d: %w", n, ErrBadLength))
			return v
		}
		padded := make([]byte, n)
		copy(padded, v)
		s.put(padded...)
		return v
	}
	b := s.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// ByteArray reads or writes a count-prefixed byte slice.
func (s *Serializer) ByteArray(v []byte) []byte {
	count := s.count(len(v), 1)
	if s.writing {
		s.put(v...)
		return v
	}
	return s.RawBytes(nil, count)
}

// Str reads or writes a fixed-size, zero-padded ASCII string. On read,
// the string ends at the first zero byte.
func (s *Serializer) Str(v string, size int) string {
	if s.writing {
		if len(v) > size {
			s.Fail(fmt.Errorf("string %q exceeds %d bytes: %w", v, size, ErrBadLength))
			return v
		}
		s.RawBytes([]byte(v), size)
		return v
	}
	b := s.take(size)
	if b == nil {
		return ""
	}
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// String reads or writes a count-prefixed byte string.
func (s *Serializer) String(v string) string {
	count := s.count(len(v), 1)
	if s.writing {
		s.put([]byte(v)...)
		return v
	}
	b := s.take(count)
	if b == nil {
		return ""
	}
	return string(b)
}

// WString reads or writes a count-prefixed UTF-16 string. The count is
// in code units.
func (s *Serializer) WString(v string) string {
	units := utf16.Encode([]rune(v))
	count := s.count(len(units), 2)
	if s.writing {
		for _, unit := range units {
			s.U16(unit)
		}
		return v
	}
	if s.err != nil {
		return ""
	}
	units = make([]uint16, count)
	for i := range units {
		units[i] = s.U16(0)
	}
	return string(utf16.Decode(units))
}

// IntBool reads or writes a boolean stored as a 32-bit integer.
func (s *Serializer) IntBool(v bool) bool {
	var i int32
	if v {
		i = 1
	}
	return s.I32(i) != 0
}

// FloatArray reads or writes a count-prefixed float slice.
func (s *Serializer) FloatArray(v []float32) []float32 {
	count := s.count(len(v), 4)
	if !s.writing {
		v = make([]float32, count)
	}
	for i := range v {
		v[i] = s.F32(v[i])
	}
	return v
}

// ShortArray reads or writes a count-prefixed int16 slice.
func (s *Serializer) ShortArray(v []int16) []int16 {
	count := s.count(len(v), 2)
	if !s.writing {
		v = make([]int16, count)
	}
	for i := range v {
		v[i] = s.I16(v[i])
	}
	return v
}

// IntArray reads or writes a count-prefixed int32 slice. Elements use
// the [Serializer.I32] form.
func (s *Serializer) IntArray(v []int32) []int32 {
	count := s.count(len(v), 1)
	if !s.writing {
		v = make([]int32, count)
	}
	for i := range v {
		v[i] = s.I32(v[i])
	}
	return v
}

// count reads or writes an element count in the I32 form. On read the
// count is checked against the remaining input, assuming each element
// takes at least minElementSize bytes, before the caller allocates.
func (s *Serializer) count(n, minElementSize int) int {
	if s.writing {
		if n > math.MaxInt32 {
			s.Fail(fmt.Errorf("count %d: %w", n, ErrBadLength))
			return n
		}
		s.I32(int32(n))
		return n
	}
	count := s.I32(0)
	if s.err != nil {
		return 0
	}
	if count < 0 || int64(count)*int64(minElementSize) > int64(s.Remaining()) {
		s.Fail(fmt.Errorf("count %d with %d bytes remaining: %w", count, s.Remaining(), ErrBadLength))
		return 0
	}
	return int(count)
}

// Count reads or writes an explicit element count for a caller-driven
// loop. minElementSize is the smallest possible encoded element.
func (s *Serializer) Count(n, minElementSize int) int {
	return s.count(n, minElementSize)
}
