package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme encodes passwords for storage and checks attempts against
// stored values.
type PasswordScheme interface {
	Encode(password string) (string, error)
	Matches(stored, attempt string) bool
}

// PlainPasswords stores passwords as typed. This is the historical format of
// the users collection.
type PlainPasswords struct{}

func (PlainPasswords) Encode(password string) (string, error) { return password, nil }

func (PlainPasswords) Matches(stored, attempt string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(attempt)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(attempt)) == 1
}

// BcryptPasswords hashes new passwords. Plaintext records written before the
// switch still match.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Encode(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptPasswords) Matches(stored, attempt string) bool {
	return PlainPasswords{}.Matches(stored, attempt)
}

// SchemeByName returns the scheme for a config value, defaulting to plain.
func SchemeByName(name string) PasswordScheme {
	if name == "bcrypt" {
		return BcryptPasswords{}
	}
	return PlainPasswords{}
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
