// Package cipher seals serialized templates for storage.
package cipher

import (
	stdcipher "crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"biogate/internal/biometric/models"
)

// keyPad fills short secrets up to the key size.
const keyPad = "0"

// Cipher encrypts with XChaCha20-Poly1305. It is safe for concurrent use.
type Cipher struct {
	aead stdcipher.AEAD
}

// DeriveKey right-pads secret with '0' or truncates it to 32 bytes.
func DeriveKey(secret string) []byte {
	key := []byte(secret)
	if len(key) < chacha20poly1305.KeySize {
		key = append(key, strings.Repeat(keyPad, chacha20poly1305.KeySize-len(key))...)
	}
	return key[:chacha20poly1305.KeySize]
}

func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is empty")
	}
	aead, err := chacha20poly1305.NewX(DeriveKey(secret))
	if err != nil {
		return nil, fmt.Errorf("initializing aead: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt returns base64(nonce || sealed) with a fresh random nonce.
func (c *Cipher) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any malformed or tampered input yields
// models.ErrDecryptionFailed.
func (c *Cipher) Decrypt(ciphertext string) ([]byte, error) {
	// Strict rejects non-zero padding bits, so every character of the
	// stored string is covered by authentication.
	raw, err := base64.StdEncoding.Strict().DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDecryptionFailed, err)
	}
	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", models.ErrDecryptionFailed)
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
