// Package board holds the in-memory shopping list model: sections (store
// aisles) that own ordered lists of item ids, and a flat map of items.
//
// Every exported operation is copy-on-write. It takes a Board value, never
// mutates it, and returns a Board that satisfies the invariants checked by
// Validate. Operations that receive unusable input (blank text, unknown ids)
// return their input unchanged instead of failing.
package board

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrInvariant is wrapped by every error returned from Validate.
var ErrInvariant = errors.New("board invariant violated")

// Item is a single line on the shopping list.
type Item struct {
	ID      string
	Text    string
	Checked bool
}

// Section is a named bucket of items. ItemIDs is the display and shopping order.
type Section struct {
	ID      string
	Title   string
	ItemIDs []string
}

// Board is the full list state: items, sections and section order.
type Board struct {
	Items       map[string]Item
	Columns     map[string]Section
	ColumnOrder []string
}

// Clone returns a deep copy of the board. Nil maps and slices stay nil.
func (b Board) Clone() Board {
	out := Board{
		Items:       maps.Clone(b.Items),
		ColumnOrder: slices.Clone(b.ColumnOrder),
	}
	if b.Columns != nil {
		out.Columns = make(map[string]Section, len(b.Columns))
		for id, sec := range b.Columns {
			sec.ItemIDs = slices.Clone(sec.ItemIDs)
			out.Columns[id] = sec
		}
	}
	return out
}

// IsZero reports whether the board has no sections at all.
func (b Board) IsZero() bool {
	return len(b.Columns) == 0 && len(b.ColumnOrder) == 0 && len(b.Items) == 0
}

// HasSection reports whether id is a section of the board.
func (b Board) HasSection(id string) bool {
	_, ok := b.Columns[id]
	return ok
}

// Sections returns the sections in display order.
func (b Board) Sections() []Section {
	out := make([]Section, 0, len(b.ColumnOrder))
	for _, id := range b.ColumnOrder {
		if sec, ok := b.Columns[id]; ok {
			out = append(out, sec)
		}
	}
	return out
}

// FindSection resolves id to a section id. If id names a section it is
// returned as is; otherwise the section that lists id as an item is returned.
// The lookup is a linear scan over ColumnOrder.
func FindSection(b Board, id string) (string, bool) {
	if _, ok := b.Columns[id]; ok {
		return id, true
	}
	return owningSection(b, id)
}

// owningSection finds the section listing itemID, ignoring section ids.
func owningSection(b Board, itemID string) (string, bool) {
	for _, colID := range b.ColumnOrder {
		if slices.Contains(b.Columns[colID].ItemIDs, itemID) {
			return colID, true
		}
	}
	return "", false
}

// Validate checks the board invariants:
//   - ColumnOrder lists exactly the keys of Columns, without duplicates
//   - every section is stored under its own id
//   - every listed item id exists in Items and is listed exactly once
//   - every item in Items is listed by some section
func Validate(b Board) error {
	if len(b.ColumnOrder) != len(b.Columns) {
		return fmt.Errorf("%w: column order has %d entries for %d columns",
			ErrInvariant, len(b.ColumnOrder), len(b.Columns))
	}

	seenCols := make(map[string]struct{}, len(b.ColumnOrder))
	owner := make(map[string]string, len(b.Items))

	for _, colID := range b.ColumnOrder {
		if _, dup := seenCols[colID]; dup {
			return fmt.Errorf("%w: column %q appears twice in order", ErrInvariant, colID)
		}
		seenCols[colID] = struct{}{}

		sec, ok := b.Columns[colID]
		if !ok {
			return fmt.Errorf("%w: column %q in order but not in columns", ErrInvariant, colID)
		}
		if sec.ID != colID {
			return fmt.Errorf("%w: column stored under %q has id %q", ErrInvariant, colID, sec.ID)
		}

		for _, itemID := range sec.ItemIDs {
			if _, ok := b.Items[itemID]; !ok {
				return fmt.Errorf("%w: column %q lists unknown item %q", ErrInvariant, colID, itemID)
			}
			if prev, dup := owner[itemID]; dup {
				return fmt.Errorf("%w: item %q listed by %q and %q", ErrInvariant, itemID, prev, colID)
			}
			owner[itemID] = colID
		}
	}

	for id, item := range b.Items {
		if item.ID != id {
			return fmt.Errorf("%w: item stored under %q has id %q", ErrInvariant, id, item.ID)
		}
		if _, ok := owner[id]; !ok {
			return fmt.Errorf("%w: item %q is not listed by any column", ErrInvariant, id)
		}
	}

	return nil
}
