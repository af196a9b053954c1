package db

import "errors"

var (
	// ErrNotFound is returned by update and delete operations when the
	// target row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConstraintUnique is returned when an insert violates a unique
	// constraint, e.g. a duplicate user email.
	ErrConstraintUnique = errors.New("unique constraint violation")

	// ErrMissingFields is returned when a record lacks required fields.
	ErrMissingFields = errors.New("missing required fields")
)
