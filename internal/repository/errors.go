package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("profile not found")
	ErrAlreadyExists      = errors.New("profile already exists")
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// unavailable wraps an infrastructure error so callers can match ErrBackendUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
}
