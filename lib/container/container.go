// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/resforge/lib/descriptor"
	"github.com/bureau-foundation/resforge/lib/revision"
	"github.com/bureau-foundation/resforge/lib/serial"
)

// minFramedSize is the shortest buffer that can hold a framed header.
const minFramedSize = 0xb

// Dependency table entry kinds.
const (
	dependencyHash uint8 = 1
	dependencyGUID uint8 = 2
)

// Boundary names the rule that ended a decoded payload.
type Boundary uint8

const (
	// BoundaryUnframed: the container is raw bytes.
	BoundaryUnframed Boundary = iota

	// BoundaryCompressedStream: the chunked zlib stream ended the
	// payload.
	BoundaryCompressedStream

	// BoundaryDependencyTable: an uncompressed payload ran up to the
	// dependency-table offset.
	BoundaryDependencyTable

	// BoundaryEndOfBuffer: the payload ran to the end of the buffer.
	BoundaryEndOfBuffer

	// BoundaryEncryptedBlock: an uncompressed payload filled the
	// decrypted block.
	BoundaryEncryptedBlock
)

func (b Boundary) String() string {
	switch b {
	case BoundaryUnframed:
		return "unframed"
	case BoundaryCompressedStream:
		return "compressed_stream"
	case BoundaryDependencyTable:
		return "dependency_table"
	case BoundaryEndOfBuffer:
		return "end_of_buffer"
	case BoundaryEncryptedBlock:
		return "encrypted_block"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(b))
	}
}

// Options configure [DecodeWith] and [Container.EncodeWith].
type Options struct {
	// Cipher encrypts and decrypts encrypted-binary blocks. If nil, a
	// TEA cipher under [DefaultKey] is used.
	Cipher Cipher

	// Logger receives header tracing at debug level. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

func (o Options) cipher() Cipher {
	if o.Cipher != nil {
		return o.Cipher
	}
	return defaultCipher()
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Container is a framed resource. Decode one with [Decode], or build
// one from a serializer's output and call [Container.Encode].
type Container struct {
	Type     descriptor.ResourceType
	Method   Method
	Revision revision.Revision

	// CompressionFlags are the serializer flags the payload was
	// written with.
	CompressionFlags serial.CompressionFlags

	// Compressed selects the chunked zlib stream. Below head 0x189
	// binary payloads are always compressed and this field is
	// ignored on encode.
	Compressed bool

	// Payload is the decompressed, decrypted body (or the raw bytes of
	// an unframed container).
	Payload []byte

	Dependencies []descriptor.Descriptor

	// Texture is the GTF / GXT sub-header, nil for other methods.
	Texture *TextureInfo

	boundary Boundary
	slack    int
}

// NewBinary returns a binary container for a payload produced by a
// serializer session. Local profiles are framed as encrypted binary.
// Compression is on from head 0x189, the first head that can say
// otherwise.
func NewBinary(resourceType descriptor.ResourceType, rev revision.Revision, flags serial.CompressionFlags, payload []byte, dependencies []descriptor.Descriptor) *Container {
	method := MethodBinary
	if resourceType == descriptor.TypeLocalProfile {
		method = MethodEncryptedBinary
	}
	return &Container{
		Type:             resourceType,
		Method:           method,
		Revision:         rev,
		CompressionFlags: flags,
		Compressed:       true,
		Payload:          payload,
		Dependencies:     dependencies,
	}
}

// Raw returns an unframed container around data.
func Raw(data []byte) *Container {
	return &Container{
		Type:     descriptor.TypeInvalid,
		Method:   MethodUnknown,
		Payload:  data,
		boundary: BoundaryUnframed,
	}
}

// IsFramed reports whether the container had a recognised header.
func (c *Container) IsFramed() bool { return c.Method != MethodUnknown }

// Encrypted reports whether the payload is stored in a TEA block.
func (c *Container) Encrypted() bool { return c.Method == MethodEncryptedBinary }

// PayloadBoundary reports which rule ended the payload during decode.
func (c *Container) PayloadBoundary() Boundary { return c.boundary }

// Slack is the number of bytes between the end of a compressed stream
// and the dependency table. A well-formed container has none; a
// non-zero value marks a container where the two payload-end rules
// disagree.
func (c *Container) Slack() int { return c.slack }

// Serializer returns a read session over the payload, bound to the
// container's revision and compression flags.
func (c *Container) Serializer(cfg serial.Config) *serial.Serializer {
	cfg.Revision = c.Revision
	cfg.Flags = c.CompressionFlags
	return serial.NewReader(c.Payload, cfg)
}

// Decode parses a framed resource with default options.
func Decode(data []byte) (*Container, error) {
	return DecodeWith(data, Options{})
}

// DecodeWith parses a framed resource. Buffers shorter than the
// smallest header, buffers without a known magic, static meshes, and
// unknown method bytes are returned unframed with a nil error. A
// header or payload that is framed but malformed is an error.
func DecodeWith(data []byte, opts Options) (*Container, error) {
	if len(data) < minFramedSize {
		return Raw(data), nil
	}
	resourceType := descriptor.TypeFromMagic(string(data[:3]))
	if resourceType == descriptor.TypeInvalid || resourceType == descriptor.TypeStaticMesh {
		raw := Raw(data)
		raw.Type = resourceType
		return raw, nil
	}
	method := parseMethod(data[3])
	if method == MethodUnknown {
		raw := Raw(data)
		raw.Type = resourceType
		return raw, nil
	}

	c := &Container{Type: resourceType, Method: method}
	var err error
	switch {
	case method.IsBinary():
		err = c.decodeBinary(data, opts)
	case method == MethodText:
		c.Payload = bytes.TrimPrefix(data[4:], []byte{'\n'})
		c.boundary = BoundaryEndOfBuffer
	case method.IsTexture():
		err = c.decodeTexture(data)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s container: %w", resourceType, err)
	}

	opts.logger().Debug("decoded container",
		"type", c.Type.String(),
		"method", c.Method.String(),
		"revision", c.Revision.String(),
		"dependencies", len(c.Dependencies),
		"payload_bytes", len(c.Payload),
		"boundary", c.boundary.String(),
	)
	return c, nil
}

func (c *Container) decodeBinary(data []byte, opts Options) error {
	s := serial.NewReader(data, serial.Config{})
	s.Seek(4)
	rev := revision.New(s.U32F(0))

	tableOffset := -1
	compressed := true
	if rev.Head >= revision.DependencyTable {
		tableOffset = int(s.U32F(0))
		resume := s.Offset()
		s.Seek(tableOffset)
		s.Scope("dependencies", func() {
			c.Dependencies = readDependencyTable(s)
		})
		s.Seek(resume)

		if rev.Head >= revision.ResourceHeader {
			if rev.Head >= revision.BranchHeader {
				rev.BranchID = s.U16(0)
				rev.BranchRevision = s.U16(0)
			}
			if revision.HasCompressionFlagsByte(rev) {
				c.CompressionFlags = serial.CompressionFlags(s.U8(0))
			}
			compressed = s.Bool(false)
		}
	}

	var block []byte
	if c.Method == MethodEncryptedBinary {
		size := s.U32F(0)
		block = s.RawBytes(nil, int(size))
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	c.Revision = rev
	c.Compressed = compressed
	bodyOffset := s.Offset()

	if c.Method == MethodEncryptedBinary {
		plaintext, err := opts.cipher().Decrypt(block)
		if err != nil {
			return fmt.Errorf("decrypting payload: %w", err)
		}
		if !compressed {
			c.Payload = plaintext
			c.boundary = BoundaryEncryptedBlock
			return nil
		}
		payload, _, err := Decompress(plaintext)
		if err != nil {
			return fmt.Errorf("decompressing payload: %w", err)
		}
		c.Payload = payload
		c.boundary = BoundaryCompressedStream
		return nil
	}

	switch {
	case compressed:
		payload, consumed, err := Decompress(data[bodyOffset:])
		if err != nil {
			return fmt.Errorf("decompressing payload: %w", err)
		}
		c.Payload = payload
		c.boundary = BoundaryCompressedStream
		if tableOffset >= 0 {
			c.slack = tableOffset - (bodyOffset + consumed)
		}
	case tableOffset >= 0:
		if tableOffset < bodyOffset {
			return fmt.Errorf("dependency table at %d overlaps header ending at %d: %w",
				tableOffset, bodyOffset, serial.ErrBadLength)
		}
		c.Payload = data[bodyOffset:tableOffset]
		c.boundary = BoundaryDependencyTable
	default:
		c.Payload = data[bodyOffset:]
		c.boundary = BoundaryEndOfBuffer
	}
	return nil
}

func (c *Container) decodeTexture(data []byte) error {
	s := serial.NewReader(data, serial.Config{})
	s.Seek(4)
	if c.Type != descriptor.TypeTexture {
		c.Texture = &TextureInfo{}
		c.Texture.serialize(s, c.Method)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("reading texture info: %w", err)
	}
	payload, _, err := Decompress(data[s.Offset():])
	if err != nil {
		return fmt.Errorf("decompressing texture: %w", err)
	}
	c.Payload = payload
	c.Compressed = true
	c.boundary = BoundaryCompressedStream
	return nil
}

// readDependencyTable reads the table at the cursor.
func readDependencyTable(s *serial.Serializer) []descriptor.Descriptor {
	// Smallest entry: kind byte, u32 guid, u32 type.
	count := s.U32F(0)
	if int64(count)*9 > int64(s.Remaining()) {
		s.Fail(fmt.Errorf("%d entries with %d bytes remaining: %w", count, s.Remaining(), serial.ErrBadLength))
		return nil
	}
	dependencies := make([]descriptor.Descriptor, 0, count)
	for range count {
		var d descriptor.Descriptor
		switch kind := s.U8(0); kind {
		case dependencyHash:
			d = descriptor.NewHash(s.SHA1(descriptor.SHA1{}), descriptor.TypeInvalid)
		case dependencyGUID:
			d = descriptor.NewGUID(descriptor.GUID(s.U32F(0)), descriptor.TypeInvalid)
		default:
			s.Fail(fmt.Errorf("dependency kind %d: %w", kind, serial.ErrUnknownEnum))
			return nil
		}
		d.Type = descriptor.TypeFromValue(s.I32F(0))
		if s.Err() != nil {
			return nil
		}
		dependencies = append(dependencies, d)
	}
	return dependencies
}

// writeDependencyTable writes the table at the end of the output. A
// descriptor carrying both addresses is written by GUID; null
// descriptors are dropped.
func writeDependencyTable(s *serial.Serializer, dependencies []descriptor.Descriptor) {
	var count uint32
	for _, d := range dependencies {
		if !d.IsNull() {
			count++
		}
	}
	s.U32F(count)
	for _, d := range dependencies {
		switch {
		case d.IsGUID():
			s.U8(dependencyGUID)
			s.U32F(uint32(d.GUID()))
		case d.IsHash():
			s.U8(dependencyHash)
			s.SHA1(d.SHA1())
		default:
			continue
		}
		s.I32F(d.Type.Value())
	}
}

// Encode frames the container with default options.
func (c *Container) Encode() ([]byte, error) {
	return c.EncodeWith(Options{})
}

// EncodeWith frames the container. Unframed containers and static
// meshes encode to their payload unchanged.
func (c *Container) EncodeWith(opts Options) ([]byte, error) {
	if !c.IsFramed() || c.Type == descriptor.TypeStaticMesh {
		return c.Payload, nil
	}
	magic := c.Type.Magic()
	if len(magic) != 3 {
		return nil, fmt.Errorf("encoding container: %s has no magic", c.Type)
	}

	s := serial.NewWriter(serial.Config{})
	s.RawBytes([]byte(magic), 3)
	s.U8(byte(c.Method))

	switch {
	case c.Method == MethodText:
		s.U8('\n')
		s.RawBytes(c.Payload, len(c.Payload))
	case c.Method.IsTexture():
		if c.Type != descriptor.TypeTexture {
			info := c.Texture
			if info == nil {
				info = &TextureInfo{}
			}
			info.serialize(s, c.Method)
		}
		stream, err := Compress(c.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s container: %w", c.Type, err)
		}
		s.RawBytes(stream, len(stream))
	case c.Method.IsBinary():
		if err := c.encodeBinary(s, opts); err != nil {
			return nil, fmt.Errorf("encoding %s container: %w", c.Type, err)
		}
	default:
		return nil, fmt.Errorf("encoding %s container: method %s", c.Type, c.Method)
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("encoding %s container: %w", c.Type, err)
	}
	return s.Bytes(), nil
}

func (c *Container) encodeBinary(s *serial.Serializer, opts Options) error {
	rev := c.Revision
	s.U32F(rev.Head)

	compressed := c.Compressed || rev.Head < revision.ResourceHeader
	tableOffsetAt := -1
	if rev.Head >= revision.DependencyTable {
		tableOffsetAt = s.Offset()
		s.U32F(0)
		if rev.Head >= revision.ResourceHeader {
			if rev.Head >= revision.BranchHeader {
				s.U16(rev.BranchID)
				s.U16(rev.BranchRevision)
			}
			if revision.HasCompressionFlagsByte(rev) {
				s.U8(uint8(c.CompressionFlags))
			}
			s.Bool(compressed)
		}
	}

	body := c.Payload
	if compressed {
		stream, err := Compress(body)
		if err != nil {
			return err
		}
		body = stream
	}
	if c.Method == MethodEncryptedBinary {
		block, err := opts.cipher().Encrypt(body)
		if err != nil {
			return fmt.Errorf("encrypting payload: %w", err)
		}
		body = block
		s.U32F(uint32(len(body)))
	}
	s.RawBytes(body, len(body))

	if tableOffsetAt >= 0 {
		s.PatchU32F(tableOffsetAt, uint32(s.Offset()))
		writeDependencyTable(s, c.Dependencies)
	}
	return nil
}
