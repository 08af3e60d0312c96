// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/tea"
)

// Cipher encrypts and decrypts the block of an encrypted-binary
// container.
type Cipher interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// DefaultKey is the TEA key used when [Options] carries no cipher.
// Titles that encrypt local profiles each ship their own key; the
// resforge command reads it from encryption.key in its configuration.
var DefaultKey = []byte("resforge-profile")

// ErrBadCiphertext is returned when a block does not decrypt to a
// well-formed plaintext.
var ErrBadCiphertext = errors.New("bad ciphertext")

// TEACipher is TEA in ECB mode over a length-prefixed, zero-padded
// plaintext:
//
//	u32 plaintext length || plaintext || zero padding to 8 bytes
type TEACipher struct {
	block cipher.Block
}

// NewTEA returns a cipher for a 16-byte key.
func NewTEA(key []byte) (*TEACipher, error) {
	block, err := tea.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating tea cipher: %w", err)
	}
	return &TEACipher{block: block}, nil
}

func defaultCipher() Cipher {
	c, err := NewTEA(DefaultKey)
	if err != nil {
		panic(fmt.Sprintf("container: default key: %v", err))
	}
	return c
}

// Encrypt pads and encrypts plaintext.
func (c *TEACipher) Encrypt(plaintext []byte) ([]byte, error) {
	size := 4 + len(plaintext)
	size += (tea.BlockSize - size%tea.BlockSize) % tea.BlockSize

	buffer := make([]byte, size)
	binary.BigEndian.PutUint32(buffer, uint32(len(plaintext)))
	copy(buffer[4:], plaintext)
	for offset := 0; offset < size; offset += tea.BlockSize {
		c.block.Encrypt(buffer[offset:], buffer[offset:])
	}
	return buffer, nil
}

// Decrypt decrypts ciphertext and strips the length prefix and padding.
func (c *TEACipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < tea.BlockSize || len(ciphertext)%tea.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext of %d bytes is not whole blocks: %w", len(ciphertext), ErrBadCiphertext)
	}
	buffer := make([]byte, len(ciphertext))
	for offset := 0; offset < len(buffer); offset += tea.BlockSize {
		c.block.Decrypt(buffer[offset:], ciphertext[offset:])
	}
	length := binary.BigEndian.Uint32(buffer)
	if int64(length) > int64(len(buffer)-4) {
		return nil, fmt.Errorf("plaintext length %d exceeds block of %d: %w", length, len(buffer), ErrBadCiphertext)
	}
	return buffer[4 : 4+length], nil
}
