package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPlainVerifier_RoundTrip(t *testing.T) {
	v := PlainVerifier{}

	stored, err := v.Store("hunter2")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if stored != "hunter2" {
		t.Errorf("Store() = %q, want the secret unchanged", stored)
	}

	if err := v.Verify(stored, "hunter2"); err != nil {
		t.Errorf("Verify() error = %v for matching secret", err)
	}
	if err := v.Verify(stored, "hunter3"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Verify() = %v, want ErrBadCredentials", err)
	}
}

func TestBcryptVerifier_RoundTrip(t *testing.T) {
	v := NewBcryptVerifierForTest(bcrypt.MinCost)

	stored, err := v.Store("hunter2")
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !strings.HasPrefix(stored, "$2") {
		t.Errorf("Store() output does not look like a bcrypt hash: %q", stored)
	}

	if err := v.Verify(stored, "hunter2"); err != nil {
		t.Errorf("Verify() error = %v for matching secret", err)
	}
	if err := v.Verify(stored, "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Verify() = %v, want ErrBadCredentials", err)
	}
}

func TestBcryptVerifier_SaltsAreRandom(t *testing.T) {
	v := NewBcryptVerifierForTest(bcrypt.MinCost)

	h1, _ := v.Store("same-secret")
	h2, _ := v.Store("same-secret")
	if h1 == h2 {
		t.Error("Store() produced identical hashes for the same secret")
	}
}

func TestBcryptVerifier_RejectsLongSecret(t *testing.T) {
	v := NewBcryptVerifierForTest(bcrypt.MinCost)

	if _, err := v.Store(strings.Repeat("x", 73)); err == nil {
		t.Error("Store() should reject secrets longer than 72 bytes")
	}
}
