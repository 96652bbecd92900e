// Package crypto seals personal fields of stored status pages.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrMissingKey         = errors.New("encryption key is required")
	ErrInvalidKey         = errors.New("encryption key must be 32 bytes for AES-256")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// sealedPrefix marks values written by FieldSealer so rows stored before a key
// was configured can still be read.
const sealedPrefix = "enc:v1:"

// Sealer encrypts a field bound to the id of the record that owns it.
type Sealer interface {
	Seal(plaintext, recordID string) (string, error)
	Open(value, recordID string) (string, error)
}

// FieldSealer is an AES-256-GCM Sealer. The record id is authenticated as
// associated data, so a value copied onto another record fails to open.
type FieldSealer struct {
	aead cipher.AEAD
}

// NewFieldSealer creates a sealer from a 32-byte key.
func NewFieldSealer(key string) (*FieldSealer, error) {
	if key == "" {
		return nil, ErrMissingKey
	}

	keyBytes := []byte(key)
	if len(keyBytes) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &FieldSealer{aead: aead}, nil
}

// Seal encrypts plaintext. Empty values stay empty.
func (s *FieldSealer) Seal(plaintext, recordID string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(recordID))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix are
// returned unchanged.
func (s *FieldSealer) Open(value, recordID string) (string, error) {
	encoded, ok := strings.CutPrefix(value, sealedPrefix)
	if !ok {
		return value, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(recordID))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// PlainSealer stores values as-is. It is used when no key is configured and
// refuses to open values that were sealed with a key.
type PlainSealer struct{}

func (PlainSealer) Seal(plaintext, _ string) (string, error) {
	return plaintext, nil
}

func (PlainSealer) Open(value, _ string) (string, error) {
	if IsSealed(value) {
		return "", fmt.Errorf("cannot open sealed value: %w", ErrMissingKey)
	}
	return value, nil
}

// IsSealed reports whether value was produced by a FieldSealer.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

// NewSealer returns a FieldSealer for a non-empty key and a PlainSealer
// otherwise.
func NewSealer(key string) (Sealer, error) {
	if key == "" {
		return PlainSealer{}, nil
	}
	return NewFieldSealer(key)
}
