package reconcile

import "errors"

var (
	// ErrInitialization is returned when a list cannot be created or loaded
	// on first open. The driver performs no further work.
	ErrInitialization = errors.New("list initialization failed")

	// ErrClosed is returned by operations on a closed driver
	ErrClosed = errors.New("driver closed")

	// ErrNotOpen is returned by operations that need a prior Open
	ErrNotOpen = errors.New("driver not open")

	// ErrAlreadyOpen is returned when Open is called twice
	ErrAlreadyOpen = errors.New("driver already open")
)
