// Package vault encrypts third-party API keys at rest with AES-256-GCM.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidKey indicates the configured vault key is not 32 bytes.
var ErrInvalidKey = errors.New("vault key must be 32 bytes of hex")

// ErrDecryptFailed indicates the ciphertext could not be authenticated.
var ErrDecryptFailed = errors.New("decryption failed")

// Vault seals and opens API key material with a process-wide key.
type Vault struct {
	aead cipher.AEAD
}

// New derives a vault from a hex-encoded 256-bit key.
func New(hexKey string) (*Vault, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil || len(key) != 32 {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals the plaintext secret. The returned blob carries the nonce
// as a prefix and is safe to persist.
func (v *Vault) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return v.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a blob produced by Encrypt.
func (v *Vault) Decrypt(blob []byte) (string, error) {
	if len(blob) < v.aead.NonceSize() {
		return "", ErrDecryptFailed
	}

	nonce, ciphertext := blob[:v.aead.NonceSize()], blob[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// Mask returns the displayable prefix and suffix of a secret, at most four
// characters each. Short secrets mask to empty strings rather than leaking
// a large fraction of the material.
func Mask(secret string) (prefix, suffix string) {
	if len(secret) < 12 {
		return "", ""
	}
	return secret[:4], secret[len(secret)-4:]
}
