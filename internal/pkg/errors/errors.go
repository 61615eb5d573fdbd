package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources, including rows owned by another user.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict signals a uniqueness or state conflict (e.g. email already registered).
	ErrConflict = errors.New("conflict")
)
