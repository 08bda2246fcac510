package models

import "time"

// ItemRecord is the persisted form of a shopping list item.
// SortOrder is the item's index inside its section and is always
// recomputed from the board on save.
type ItemRecord struct {
	ID        string    `json:"id"`
	ListID    string    `json:"list_id"`
	SectionID string    `json:"section_id"`
	Text      string    `json:"text"`
	Checked   bool      `json:"checked"`
	SortOrder int       `json:"sort_order"`
	UpdatedAt time.Time `json:"updated_at"`
}
