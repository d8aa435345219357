package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound covers both a missing task id and a task owned by someone
	// else. The two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("task not found")

	// ErrEmailTaken is returned when registering an already-known email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with an unknown email or a
	// wrong password, without telling which.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when a request carries no token or a
	// token that fails verification.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError carries every field violation found in a payload, in the
// order the fields were checked.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}
