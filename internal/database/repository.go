package database

import (
	"database/sql"

	"github.com/thenoetrevino/handla/internal/events"
)

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*ListRepo
	*SectionRepo
	*ItemRepo
	*RecipeRepo
}

// NewRepository wraps the given database connection. Every successful write
// announces a list change through pub; a nil pub disables notifications.
func NewRepository(db *sql.DB, pub events.EventPublisher) *Repository {
	return &Repository{
		ListRepo:    &ListRepo{db: db, pub: pub},
		SectionRepo: &SectionRepo{db: db, pub: pub},
		ItemRepo:    &ItemRepo{db: db, pub: pub},
		RecipeRepo:  &RecipeRepo{db: db, pub: pub},
	}
}
