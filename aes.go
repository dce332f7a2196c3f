package quill

import (
	"errors"
	"fmt"

	"github.com/quillsec/quill/crypto"
)

// AES256Cipher seals secrets with AES-256-GCM under a scrypt-derived key.
// The derivation salt and nonce are carried inside the ciphertext envelope,
// so no sidecar metadata is written next to the secret file.
type AES256Cipher struct{}

func (AES256Cipher) Name() string {
	return "aes256"
}

func (AES256Cipher) Encrypt(plaintext, password []byte) ([]byte, error) {
	out, err := crypto.Seal(password, plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt value: %w", err)
	}
	return out, nil
}

func (AES256Cipher) Decrypt(ciphertext, password []byte) ([]byte, error) {
	out, err := crypto.Open(password, ciphertext)
	if err != nil {
		if errors.Is(err, crypto.ErrAuthenticationFailed) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEncryptionKey, err)
		}
		return nil, fmt.Errorf("failed to decrypt value: %w", err)
	}
	return out, nil
}

func (AES256Cipher) Plaintext() bool {
	return false
}

func init() {
	RegisterCipher(AES256Cipher{})
}
