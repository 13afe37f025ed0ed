package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer. Callers match them with errors.Is;
// the HTTP layer maps each kind to a status code and a fixed message.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrQuorumViolation    = errors.New("workspace must keep at least one admin")
	ErrMemberAddRejected  = errors.New("member could not be added")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// InvalidArgument wraps ErrInvalidArgument with a detail for logs.
func InvalidArgument(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, detail)
}

// StorageError marks err as a backing-store failure for operation op.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrStorageUnavailable, err))
}
