package quill

import (
	"fmt"
	"path/filepath"
)

// SecretPath maps (config, environment, name) to the canonical file path of
// a secret: storage_root/environment/prefix/name. It is deterministic and
// injective over the (prefix, environment, name) triple, and fails closed on
// any path element that could resolve outside the storage root.
func SecretPath(cfg ResolvedConfig, environment, name string) (string, error) {
	if err := ValidateEnvironment(environment); err != nil {
		return "", err
	}
	if err := ValidateSecretName(name); err != nil {
		return "", err
	}
	// the prefix becomes a directory name too; reject crafted config values
	if err := ValidateSecretName(cfg.Prefix); err != nil {
		return "", fmt.Errorf("prefix %q: %w", cfg.Prefix, err)
	}

	return filepath.Join(cfg.StorageRoot, environment, cfg.Prefix, name), nil
}

// RelativeSecretPath returns the secret's path relative to the storage root,
// for display purposes only.
func RelativeSecretPath(cfg ResolvedConfig, environment, name string) (string, error) {
	full, err := SecretPath(cfg, environment, name)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(cfg.StorageRoot, full)
	if err != nil {
		return "", fmt.Errorf("failed to relativize secret path: %w", err)
	}
	return rel, nil
}

// environmentDir returns the directory holding all prefixes for an
// environment.
func environmentDir(cfg ResolvedConfig, environment string) (string, error) {
	if err := ValidateEnvironment(environment); err != nil {
		return "", err
	}
	return filepath.Join(cfg.StorageRoot, environment), nil
}

// prefixDir returns the directory holding the config's secrets for an
// environment.
func prefixDir(cfg ResolvedConfig, environment string) (string, error) {
	dir, err := environmentDir(cfg, environment)
	if err != nil {
		return "", err
	}
	if err := ValidateSecretName(cfg.Prefix); err != nil {
		return "", fmt.Errorf("prefix %q: %w", cfg.Prefix, err)
	}
	return filepath.Join(dir, cfg.Prefix), nil
}
