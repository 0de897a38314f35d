package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by stores when a unique constraint is violated.
	ErrConflict = errors.New("conflict")
	// ErrValidationUnavailable is returned by a taxonomy oracle that could not be reached.
	ErrValidationUnavailable = errors.New("taxonomy validation unavailable")
)
