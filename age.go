package quill

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"
)

// ageWorkFactor is the scrypt work factor (log2 N) for passphrase
// recipients. age's default targets long-lived archives; secrets here are
// re-opened on every fetch, so a lighter interactive profile is used.
const ageWorkFactor = 15

// AgeCipher seals secrets with age passphrase encryption
// (scrypt recipient/identity).
type AgeCipher struct{}

func (AgeCipher) Name() string {
	return "age"
}

func (AgeCipher) Encrypt(plaintext, password []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(string(password))
	if err != nil {
		return nil, fmt.Errorf("failed to create scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(ageWorkFactor)

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to create age encryptor: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("failed to encrypt value: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize encryption: %w", err)
	}

	return buf.Bytes(), nil
}

func (AgeCipher) Decrypt(ciphertext, password []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(string(password))
	if err != nil {
		return nil, fmt.Errorf("failed to create scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEncryptionKey, err)
		}
		return nil, fmt.Errorf("failed to decrypt value: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEncryptionKey, err)
	}
	return plaintext, nil
}

func (AgeCipher) Plaintext() bool {
	return false
}

func init() {
	RegisterCipher(AgeCipher{})
}
