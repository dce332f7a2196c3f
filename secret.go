package quill

import (
	"errors"
	"fmt"
	"regexp"
)

type Secret interface {
	// PlainTextString returns the decrypted value as a string
	PlainTextString() string

	// String returns a masked representation for display
	String() string

	// Bytes returns the raw byte representation of the secret
	Bytes() []byte
}

type SecretValue struct {
	value []byte
}

func NewSecretValue(value []byte) *SecretValue {
	return &SecretValue{value: value}
}

func (s *SecretValue) PlainTextString() string {
	return string(s.value)
}

func (s *SecretValue) String() string {
	return "********"
}

func (s *SecretValue) Bytes() []byte {
	return s.value
}

// NamedSecret pairs a secret with the name it is stored under.
type NamedSecret struct {
	Name  string
	Value Secret
}

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9-_.]+$`)

// ValidateSecretName rejects names that could escape the storage tree.
// Validation happens before any filesystem access.
func ValidateSecretName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidSecretName)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf(
			"%w: %q must only contain alphanumeric characters, dashes, underscores, and/or dots",
			ErrInvalidSecretName, name,
		)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q is a reserved path element", ErrInvalidSecretName, name)
	}
	return nil
}

// ValidateEnvironment applies the same rules to environment labels; they
// become directory names under the storage root.
func ValidateEnvironment(environment string) error {
	if err := ValidateSecretName(environment); err != nil {
		if errors.Is(err, ErrInvalidSecretName) {
			return fmt.Errorf("%w: %q", ErrInvalidEnvironment, environment)
		}
		return err
	}
	return nil
}
