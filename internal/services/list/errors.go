package list

import (
	"errors"
	"fmt"
)

// List-related errors
var (
	// Validation errors
	ErrInvalidListID  = errors.New("invalid list ID")
	ErrInvalidStore   = errors.New("unknown store")
	ErrEmptyText      = errors.New("item text cannot be empty")
	ErrInvalidItemRef = errors.New("invalid item reference")

	// Business logic errors
	ErrListNotFound    = errors.New("list not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrAmbiguousItem   = errors.New("item reference matches more than one item")
	ErrDuplicateItem   = errors.New("item already on the list")
	ErrNotApplied      = errors.New("change was rejected")
)

// DuplicateError reports the item that already carries the same text.
type DuplicateError struct {
	ItemID string
	Text   string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %q (%s)", ErrDuplicateItem, e.Text, e.ItemID)
}

// Is makes errors.Is(err, ErrDuplicateItem) hold.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateItem
}
