package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrBusinessRule marks a domain rule violation, as opposed to a field
	// level validation failure.
	ErrBusinessRule = errors.New("business rule violation")

	ErrUsernameTaken = fmt.Errorf("%w: username already exists", ErrBusinessRule)
)
