package quill

import (
	"fmt"
	"sort"
	"sync"
)

// Cipher is the capability a vault configuration selects to protect secrets
// at rest. Implementations must authenticate their ciphertext so a decrypt
// with the wrong password fails with ErrInvalidEncryptionKey instead of
// returning garbage.
type Cipher interface {
	// Name returns the identifier the configuration uses to select this cipher.
	Name() string

	// Encrypt seals plaintext under password. The output must not leak the
	// password.
	Encrypt(plaintext, password []byte) ([]byte, error)

	// Decrypt opens ciphertext with password.
	Decrypt(ciphertext, password []byte) ([]byte, error)

	// Plaintext reports whether this cipher stores data unencrypted. The
	// audit engine flags configurations where this is true.
	Plaintext() bool
}

var (
	cipherMu  sync.RWMutex
	ciphers   = map[string]Cipher{}
	cipherIDs []string
)

// RegisterCipher makes a cipher selectable by name. New variants register
// here without touching the store or the audit engine.
func RegisterCipher(c Cipher) {
	cipherMu.Lock()
	defer cipherMu.Unlock()

	if _, exists := ciphers[c.Name()]; !exists {
		cipherIDs = append(cipherIDs, c.Name())
		sort.Strings(cipherIDs)
	}
	ciphers[c.Name()] = c
}

// CipherNamed returns the registered cipher for name.
func CipherNamed(name string) (Cipher, error) {
	cipherMu.RLock()
	defer cipherMu.RUnlock()

	c, exists := ciphers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipher, name)
	}
	return c, nil
}

// CipherNames returns the registered cipher names, sorted.
func CipherNames() []string {
	cipherMu.RLock()
	defer cipherMu.RUnlock()

	names := make([]string, len(cipherIDs))
	copy(names, cipherIDs)
	return names
}

// PlaintextCipher stores data as-is. It exists for development setups and is
// always flagged by the audit engine's plaintext check.
type PlaintextCipher struct{}

func (PlaintextCipher) Name() string {
	return "plaintext"
}

func (PlaintextCipher) Encrypt(plaintext, _ []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	copy(out, plaintext)
	return out, nil
}

func (PlaintextCipher) Decrypt(ciphertext, _ []byte) ([]byte, error) {
	out := make([]byte, len(ciphertext))
	copy(out, ciphertext)
	return out, nil
}

func (PlaintextCipher) Plaintext() bool {
	return true
}

func init() {
	RegisterCipher(PlaintextCipher{})
}
