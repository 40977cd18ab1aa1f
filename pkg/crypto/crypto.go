// Package crypto encrypts the persisted session storage at rest. Setting a
// key is optional; without one the storage file is written in the clear.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

var (
	encryptionKey []byte
	ErrKeyNotSet  = errors.New("encryption key not set")
)

// SetEncryptionKey derives the AES key for the process. The raw secret is
// never used directly; its SHA-256 digest is.
func SetEncryptionKey(secret string) error {
	if secret == "" {
		return errors.New("encryption key cannot be empty")
	}
	if len(secret) < 32 {
		return errors.New("encryption key must be at least 32 characters")
	}
	sum := sha256.Sum256([]byte(secret))
	encryptionKey = sum[:]
	return nil
}

func IsKeySet() bool {
	return encryptionKey != nil
}

// Encrypt seals the plaintext with AES-GCM and a random nonce, returning a
// base64 blob that Decrypt accepts.
func Encrypt(plaintext string) (string, error) {
	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func Decrypt(ciphertext string) (string, error) {
	gcm, err := newGCM()
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	if len(data) < gcm.NonceSize() {
		return "", errors.New("ciphertext too short")
	}

	nonce, sealed := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func newGCM() (cipher.AEAD, error) {
	if encryptionKey == nil {
		return nil, ErrKeyNotSet
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
