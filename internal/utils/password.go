package utils

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a password into its stored form and checks a
// candidate against it.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// PlainPasswords stores passwords as given. It keeps data files readable by
// tools that expect clear-text credentials.
type PlainPasswords struct{}

func (PlainPasswords) Hash(plain string) (string, error) { return plain, nil }

func (PlainPasswords) Verify(stored, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// BcryptPasswords stores bcrypt hashes at the given cost.
type BcryptPasswords struct {
	Cost int
}

// Hash returns the bcrypt hash of plain.
func (b BcryptPasswords) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify safely compares bcrypt hash and plain password.
func (BcryptPasswords) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// NewPasswordHasher returns bcrypt for cost > 0 and clear text otherwise.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost > 0 {
		return BcryptPasswords{Cost: cost}
	}
	return PlainPasswords{}
}
