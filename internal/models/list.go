package models

import "time"

// List represents a shared shopping list.
// The ID is chosen by the client (it is part of the share link).
type List struct {
	ID        string    `json:"id"`
	Store     string    `json:"store"` // Store template key the sections were seeded from
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
