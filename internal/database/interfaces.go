package database

import (
	"context"
	"time"

	"github.com/thenoetrevino/handla/internal/models"
)

// ListReader defines read operations for lists.
type ListReader interface {
	GetList(ctx context.Context, id string) (*models.List, error)
	GetAllLists(ctx context.Context) ([]*models.List, error)
}

// ListWriter defines write operations for lists.
type ListWriter interface {
	CreateList(ctx context.Context, id, store string, sections []models.SectionRecord) error
	SetListStore(ctx context.Context, id, store string) error
	DeleteListsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// SectionRepository combines all section-related operations.
type SectionRepository interface {
	ListSections(ctx context.Context, listID string) ([]models.SectionRecord, error)
	UpsertSections(ctx context.Context, listID string, sections []models.SectionRecord) error
	DeleteSections(ctx context.Context, listID string, ids []string) error
}

// ItemRepository combines all item-related operations.
type ItemRepository interface {
	ListItems(ctx context.Context, listID string) ([]models.ItemRecord, error)
	UpsertItems(ctx context.Context, listID string, items []models.ItemRecord) error
	DeleteItems(ctx context.Context, listID string, ids []string) error
	DeleteAllItems(ctx context.Context, listID string) error
}

// RecipeRepository combines all recipe-related operations.
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, rec *models.Recipe) error
	ListRecipes(ctx context.Context, listID string) ([]*models.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, rec *models.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
}

// DataStore is the unified interface for all data operations. It is
// composed of the smaller interfaces above so consumers can depend on just
// what they use.
type DataStore interface {
	ListReader
	ListWriter
	SectionRepository
	ItemRepository
	RecipeRepository
}

var _ DataStore = (*Repository)(nil)
