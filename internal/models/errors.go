package models

import "errors"

// Storage errors shared by every persistence implementation
var (
	// ErrNotFound indicates that the requested list or recipe does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates that a record with the same id already exists
	ErrConflict = errors.New("already exists")
)
