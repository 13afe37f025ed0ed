package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 8

// bcrypt ignores input past 72 bytes, so passwords are pre-hashed to a fixed
// 64-character hex digest first.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	dst := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(dst, sum[:])
	return dst
}

// HashPassword returns the bcrypt hash of the pre-hashed password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), prehash(password))
	return err == nil
}

// ErrWeakPassword is returned for passwords shorter than MinPasswordLength.
var ErrWeakPassword = errors.New("password too short")

// ValidatePassword applies the registration rules.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
