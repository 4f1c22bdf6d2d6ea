package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PhoneLength is the only accepted length for an all-digit login identifier.
const PhoneLength = 11

// ErrInvalidPhone an all-digit identifier of the wrong length
var ErrInvalidPhone = errors.New("invalid phone number, it must be 11 digits")

// HashPassword bcrypt hash for storage
func HashPassword(raw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether raw matches the stored hash
func CheckPassword(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// CheckIdentifier rejects phone-shaped identifiers (digits only) that are not
// PhoneLength long. Anything else may be a username or an email.
func CheckIdentifier(identifier string) error {
	if identifier == "" || !isDigits(identifier) {
		return nil
	}
	if len(identifier) != PhoneLength {
		return ErrInvalidPhone
	}
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
