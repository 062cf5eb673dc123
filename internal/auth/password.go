package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyPassword is returned when hashing an empty plaintext
	ErrEmptyPassword = errors.New("password must not be empty")

	// ErrPasswordTooLong is returned when the plaintext exceeds the bcrypt input limit
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

	// ErrCorruptCredential is returned when a stored hash cannot be parsed.
	// It never indicates a successful verification.
	ErrCorruptCredential = errors.New("corrupt credential hash")
)

// MaxPasswordBytes is the longest plaintext bcrypt accepts
const MaxPasswordBytes = 72

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// BcryptHasher implements PasswordHasher with a fixed bcrypt cost.
// Every Hash call draws a fresh random salt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the bcrypt work factor in use
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of plaintext
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify compares plaintext with hash in constant time.
// A mismatch returns (false, nil); an unreadable hash returns ErrCorruptCredential.
func (h *BcryptHasher) Verify(plaintext, hash string) (bool, error) {
	if len(plaintext) > MaxPasswordBytes {
		// No stored hash can match a plaintext Hash would have refused
		return false, nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptCredential, err)
	}
}
