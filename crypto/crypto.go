// Package crypto wraps the AES-256-GCM primitives used by the aes256 cipher
// variant. Keys are derived from an operator-supplied password with scrypt;
// the derivation salt and the GCM nonce travel inside the sealed envelope so
// a secret file is self-contained.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	saltSize = 16
	keySize  = 32

	// scrypt cost parameters. Interactive-use profile; every fetch during an
	// audit sweep re-derives the key.
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

// ErrAuthenticationFailed indicates the GCM tag did not verify, which for a
// password-derived key means the password does not match the ciphertext.
var ErrAuthenticationFailed = errors.New("ciphertext authentication failed")

// DeriveKey derives a 32 byte key from the provided password and salt.
// If salt is nil, a random salt is generated and returned with the key.
func DeriveKey(password, salt []byte) ([]byte, []byte, error) {
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("error reading random bytes: %w", err)
		}
	}

	key, err := scrypt.Key(password, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, nil, err
	}

	return key, salt, nil
}

// Seal encrypts plaintext with a key derived from password and returns
// salt || nonce || ciphertext.
func Seal(password, plaintext []byte) ([]byte, error) {
	key, salt, err := DeriveKey(password, nil)
	if err != nil {
		return nil, fmt.Errorf("error deriving key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("error creating new cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("error creating GCM: %w", err)
	}

	if len(plaintext) > 64*1024*1024 {
		return nil, fmt.Errorf("plaintext too long to encrypt")
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("error reading random bytes: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts an envelope produced by Seal. A password mismatch surfaces
// as ErrAuthenticationFailed rather than garbage plaintext.
func Open(password, envelope []byte) ([]byte, error) {
	if len(envelope) < saltSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	salt, rest := envelope[:saltSize], envelope[saltSize:]

	key, _, err := DeriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("error deriving key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("error creating new cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("error creating GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := rest[:nonceSize], rest[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	return plaintext, nil
}
