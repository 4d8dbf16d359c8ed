package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned by a verifier when the supplied secret does
// not match the stored credential material.
var ErrBadCredentials = errors.New("auth: invalid credentials")

// CredentialVerifier abstracts how secrets are stored and compared.
//
// Verification strength is a pluggable boundary of the system: the product
// default stores secrets as-is and compares byte-for-byte, matching the
// shipped behavior. BcryptVerifier is the opt-in hardened implementation.
// Records written under one verifier are only readable under the same one.
type CredentialVerifier interface {
	// Store transforms a plaintext secret into its persisted form.
	Store(secret string) (string, error)
	// Verify compares a supplied plaintext secret against the persisted form.
	// Returns ErrBadCredentials on mismatch.
	Verify(stored, supplied string) error
}

// PlainVerifier stores secrets in the clear and compares them directly.
// The comparison is constant-time so response timing reveals nothing about
// how much of the secret was right.
type PlainVerifier struct{}

func (PlainVerifier) Store(secret string) (string, error) {
	return secret, nil
}

func (PlainVerifier) Verify(stored, supplied string) error {
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return ErrBadCredentials
	}
	return nil
}

// defaultCost is the bcrypt work factor, roughly 250ms per hash on current
// server hardware.
const defaultCost = 12

// BcryptVerifier stores secrets as bcrypt hashes. The salt and cost are
// embedded in the hash output, so no extra columns are needed.
type BcryptVerifier struct {
	cost int
}

// NewBcryptVerifier returns a BcryptVerifier with the default cost (12).
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{cost: defaultCost}
}

// NewBcryptVerifierForTest returns a BcryptVerifier with the given cost.
// Tests use bcrypt.MinCost to avoid the ~250ms per-operation overhead.
// Do not use in production.
func NewBcryptVerifierForTest(cost int) *BcryptVerifier {
	return &BcryptVerifier{cost: cost}
}

func (v *BcryptVerifier) Store(secret string) (string, error) {
	if len(secret) > 72 {
		// bcrypt silently truncates input beyond 72 bytes; reject explicitly
		// so callers aren't surprised.
		return "", fmt.Errorf("auth: secret must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing secret: %w", err)
	}
	return string(hashed), nil
}

func (v *BcryptVerifier) Verify(stored, supplied string) error {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrBadCredentials
		}
		return fmt.Errorf("auth: comparing secret hash: %w", err)
	}
	return nil
}
