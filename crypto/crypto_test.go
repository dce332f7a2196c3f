package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/quillsec/quill/crypto"
)

func TestSealOpenRoundTrip(t *testing.T) {
	password := []byte("correct horse battery staple")
	plaintext := []byte("super-secret-value")

	envelope, err := crypto.Seal(password, plaintext)
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}
	if bytes.Contains(envelope, plaintext) {
		t.Error("Envelope should not contain the plaintext")
	}
	if bytes.Contains(envelope, password) {
		t.Error("Envelope should not contain the password")
	}

	opened, err := crypto.Open(password, envelope)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Expected %q, got %q", plaintext, opened)
	}
}

func TestOpenWithWrongPassword(t *testing.T) {
	envelope, err := crypto.Seal([]byte("password-one"), []byte("payload"))
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}

	_, err = crypto.Open([]byte("password-two"), envelope)
	if err == nil {
		t.Fatal("Open with the wrong password should fail")
	}
	if !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Errorf("Expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestOpenTamperedEnvelope(t *testing.T) {
	password := []byte("password")
	envelope, err := crypto.Seal(password, []byte("payload"))
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}

	tampered := make([]byte, len(envelope))
	copy(tampered, envelope)
	tampered[len(tampered)-1] ^= 0x01

	if _, err := crypto.Open(password, tampered); !errors.Is(err, crypto.ErrAuthenticationFailed) {
		t.Errorf("Expected ErrAuthenticationFailed for tampered envelope, got %v", err)
	}
}

func TestOpenTruncatedEnvelope(t *testing.T) {
	if _, err := crypto.Open([]byte("password"), []byte("short")); err == nil {
		t.Error("Open on a truncated envelope should fail")
	}
}

func TestSealOutputIsNondeterministic(t *testing.T) {
	password := []byte("password")
	plaintext := []byte("payload")

	first, err := crypto.Seal(password, plaintext)
	if err != nil {
		t.Fatalf("Failed to seal: %v", err)
	}
	second, err := crypto.Seal(password, plaintext)
	if err != nil {
		t.Fatalf("Failed to seal again: %v", err)
	}

	if bytes.Equal(first, second) {
		t.Error("Sealing twice should produce distinct envelopes")
	}
}

func TestDeriveKeyIsDeterministicPerSalt(t *testing.T) {
	password := []byte("password")

	key1, salt, err := crypto.DeriveKey(password, nil)
	if err != nil {
		t.Fatalf("Failed to derive key: %v", err)
	}
	key2, _, err := crypto.DeriveKey(password, salt)
	if err != nil {
		t.Fatalf("Failed to re-derive key: %v", err)
	}

	if !bytes.Equal(key1, key2) {
		t.Error("Same password and salt should derive the same key")
	}

	key3, _, err := crypto.DeriveKey([]byte("other password"), salt)
	if err != nil {
		t.Fatalf("Failed to derive key for other password: %v", err)
	}
	if bytes.Equal(key1, key3) {
		t.Error("Different passwords should derive different keys")
	}
}
