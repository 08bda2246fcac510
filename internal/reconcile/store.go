package reconcile

import (
	"context"

	"github.com/thenoetrevino/handla/internal/models"
)

// Store is the persistence the driver reads from and writes to.
// Implementations report a missing list with models.ErrNotFound and an
// existing one on create with models.ErrConflict.
type Store interface {
	GetList(ctx context.Context, id string) (*models.List, error)
	CreateList(ctx context.Context, id, store string, sections []models.SectionRecord) error
	SetListStore(ctx context.Context, id, store string) error

	ListSections(ctx context.Context, listID string) ([]models.SectionRecord, error)
	UpsertSections(ctx context.Context, listID string, sections []models.SectionRecord) error
	DeleteSections(ctx context.Context, listID string, ids []string) error

	ListItems(ctx context.Context, listID string) ([]models.ItemRecord, error)
	UpsertItems(ctx context.Context, listID string, items []models.ItemRecord) error
	DeleteItems(ctx context.Context, listID string, ids []string) error
	DeleteAllItems(ctx context.Context, listID string) error
}

// ChangeFeed announces that a list changed somewhere else. Callbacks carry
// no payload and must not block.
type ChangeFeed interface {
	Subscribe(listID string, onChange func()) (unsubscribe func())
}
