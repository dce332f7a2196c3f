package quill

import (
	"errors"
	"fmt"
)

// Configuration resolution errors.
var (
	ErrNoVaultsConfigured       = errors.New("application declares no vaults")
	ErrNoConfigurationForPrefix = errors.New("no configuration for prefix")
	ErrNoPrefixProvided         = errors.New("multiple vaults configured but no prefix provided")
	ErrUnknownPasswordSource    = errors.New("unknown password source")
)

// Storage errors.
var (
	ErrSecretNotFound      = errors.New("secret not found")
	ErrSecretAlreadyExists = errors.New("secret already exists")
	ErrUnknownEnvironment  = errors.New("unknown environment")
	ErrUnknownPrefix       = errors.New("unknown prefix")
	ErrInvalidSecretName   = errors.New("invalid secret name")
	ErrInvalidEnvironment  = errors.New("invalid environment")
)

// Cryptographic errors.
var (
	ErrInvalidEncryptionKey = errors.New("invalid encryption key")
	ErrUnknownCipher        = errors.New("unknown cipher")
)

// Editor errors.
var (
	ErrExecutableNotFound = errors.New("editor executable not found")
	ErrNonZeroExit        = errors.New("editor exited with a non-zero status")
)

// ExitCodeError reports an editor process that ran but exited non-zero,
// carrying whatever the process wrote to stderr.
type ExitCodeError struct {
	Code   int
	Stderr string
}

func (e *ExitCodeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%v (exit code %d): %s", ErrNonZeroExit, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%v (exit code %d)", ErrNonZeroExit, e.Code)
}

func (e *ExitCodeError) Unwrap() error {
	return ErrNonZeroExit
}
