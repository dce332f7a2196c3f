package quill

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Store is the only component that touches the secret files on disk. It is
// bound to one resolved configuration; the environment is supplied per
// operation. Layout: storage_root/<environment>/<prefix>/<name>, one file
// per secret, no sidecar metadata.
type Store struct {
	mu  sync.RWMutex
	cfg ResolvedConfig
}

func NewStore(cfg ResolvedConfig) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) Config() ResolvedConfig {
	return s.cfg
}

// SecretPath resolves the file path a secret lives at. Read-only; exposed
// for diagnostics and display.
func (s *Store) SecretPath(environment, name string) (string, error) {
	return SecretPath(s.cfg, environment, name)
}

// RelativeSecretPath resolves a secret's path relative to the storage root
// for display purposes.
func (s *Store) RelativeSecretPath(environment, name string) (string, error) {
	return RelativeSecretPath(s.cfg, environment, name)
}

// Fetch reads and decrypts one secret. A missing environment directory and a
// missing secret file are reported distinctly, and a password mismatch
// surfaces as ErrInvalidEncryptionKey rather than either of them.
func (s *Store) Fetch(environment, name string) (Secret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := SecretPath(s.cfg, environment, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			envDir, dirErr := environmentDir(s.cfg, environment)
			if dirErr == nil {
				if _, statErr := os.Stat(envDir); errors.Is(statErr, os.ErrNotExist) {
					return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, environment)
				}
			}
			return nil, fmt.Errorf("%w: %s/%s/%s", ErrSecretNotFound, environment, s.cfg.Prefix, name)
		}
		return nil, fmt.Errorf("failed to read secret file: %w", err)
	}

	plaintext, err := s.cfg.cipher.Decrypt(data, s.cfg.password)
	if err != nil {
		return nil, err
	}

	return NewSecretValue(plaintext), nil
}

// Put encrypts data and writes it under name, creating parent directories as
// needed and overwriting any existing secret. The write is atomic: a crash
// mid-write never leaves a half-written file visible under its final name.
func (s *Store) Put(environment, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(environment, name, data)
}

// Insert behaves like Put but rejects names that already hold a secret with
// ErrSecretAlreadyExists. Callers that intend an edit use Put.
func (s *Store) Insert(environment, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := SecretPath(s.cfg, environment, name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s/%s/%s", ErrSecretAlreadyExists, environment, s.cfg.Prefix, name)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat secret file: %w", err)
	}

	return s.write(environment, name, data)
}

func (s *Store) write(environment, name string, data []byte) error {
	path, err := SecretPath(s.cfg, environment, name)
	if err != nil {
		return err
	}

	ciphertext, err := s.cfg.cipher.Encrypt(data, s.cfg.password)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create secret directory: %w", err)
	}

	// write to the file atomically
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, ciphertext, 0600); err != nil {
		return fmt.Errorf("failed to write temp secret file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to move secret file: %w", err)
	}

	return nil
}

// List enumerates the names stored under the config's prefix for an
// environment, sorted for deterministic output.
func (s *Store) List(environment string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.list(environment)
}

func (s *Store) list(environment string) ([]string, error) {
	dir, err := prefixDir(s.cfg, environment)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			envDir, dirErr := environmentDir(s.cfg, environment)
			if dirErr == nil {
				if _, statErr := os.Stat(envDir); errors.Is(statErr, os.ErrNotExist) {
					return nil, fmt.Errorf("%w: %q", ErrUnknownEnvironment, environment)
				}
			}
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPrefix, environment, s.cfg.Prefix)
		}
		return nil, fmt.Errorf("failed to read secret directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// FetchAll reads and decrypts every secret stored under the config's prefix
// for an environment. Returns ErrUnknownPrefix when the prefix directory
// does not exist; multi-environment sweeps treat that as "no secrets here".
func (s *Store) FetchAll(environment string) ([]NamedSecret, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.list(environment)
	if err != nil {
		return nil, err
	}

	secrets := make([]NamedSecret, 0, len(names))
	for _, name := range names {
		path, err := SecretPath(s.cfg, environment, name)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read secret file %s: %w", path, err)
		}
		plaintext, err := s.cfg.cipher.Decrypt(data, s.cfg.password)
		if err != nil {
			return nil, fmt.Errorf("secret %s/%s/%s: %w", environment, s.cfg.Prefix, name, err)
		}
		secrets = append(secrets, NamedSecret{Name: name, Value: NewSecretValue(plaintext)})
	}

	return secrets, nil
}
