package model

import "github.com/google/uuid"

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// CheckID rejects identifiers that are not UUID-shaped, before any store access.
func CheckID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return InvalidArgument("malformed " + kind + " id")
	}
	return nil
}
