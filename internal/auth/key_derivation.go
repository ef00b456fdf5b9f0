package auth

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// DerivedKeyLength is the length of derived keys in bytes (256 bits for HMAC-SHA256).
	DerivedKeyLength = 32

	purposeSession = "plataforma-session-v1"
	purposeCSRF    = "plataforma-csrf-v1"
)

// ErrInvalidMasterSecret is returned when the master secret is empty.
var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

// DeriveKey derives a key from the master secret using HKDF-SHA256
// (RFC 5869). Distinct purpose strings yield cryptographically independent
// keys, so the session and CSRF keys never share material.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}

	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(purpose))
	derived := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, err
	}
	return derived, nil
}

// DeriveSessionKey derives the HMAC key for signing session tokens.
func DeriveSessionKey(masterSecret []byte) ([]byte, error) {
	return DeriveKey(masterSecret, purposeSession)
}

// DeriveCSRFKey derives the auth key for the CSRF double-submit cookie.
func DeriveCSRFKey(masterSecret []byte) ([]byte, error) {
	return DeriveKey(masterSecret, purposeCSRF)
}
