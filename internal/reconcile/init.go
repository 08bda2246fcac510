package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/models"
)

// EnsureList makes sure listID exists. A missing list is created with the
// sections of key's template; someone else creating it first counts as
// success. An existing list keeps its own store and gets any template
// sections it lacks appended after its current ones. The returned key is
// the store the list actually follows.
func EnsureList(ctx context.Context, store Store, listID string, key board.StoreKey) (board.StoreKey, error) {
	key = board.CoerceStoreKey(string(key))

	list, err := store.GetList(ctx, listID)
	if errors.Is(err, models.ErrNotFound) {
		err = store.CreateList(ctx, listID, string(key), TemplateSections(listID, key))
		switch {
		case err == nil:
			slog.Info("created list", "list_id", listID, "store", key)
			return key, nil
		case errors.Is(err, models.ErrConflict):
			list, err = store.GetList(ctx, listID)
		default:
			return "", fmt.Errorf("%w: creating list %s: %v", ErrInitialization, listID, err)
		}
	}
	if err != nil {
		return "", fmt.Errorf("%w: loading list %s: %v", ErrInitialization, listID, err)
	}

	key = board.CoerceStoreKey(list.Store)
	if err := addMissingSections(ctx, store, listID, key); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInitialization, err)
	}
	return key, nil
}

func addMissingSections(ctx context.Context, store Store, listID string, key board.StoreKey) error {
	existing, err := store.ListSections(ctx, listID)
	if err != nil {
		return fmt.Errorf("listing sections of %s: %w", listID, err)
	}

	have := make(map[string]struct{}, len(existing))
	next := 0
	for _, s := range existing {
		have[s.ID] = struct{}{}
		next = max(next, s.SortOrder+1)
	}

	var missing []models.SectionRecord
	for _, def := range board.TemplateFor(key).Sections {
		if _, ok := have[def.ID]; ok {
			continue
		}
		missing = append(missing, models.SectionRecord{ID: def.ID, ListID: listID, Title: def.Title, SortOrder: next})
		next++
	}
	if len(missing) == 0 {
		return nil
	}

	slog.Info("adding missing sections", "list_id", listID, "count", len(missing))
	if err := store.UpsertSections(ctx, listID, missing); err != nil {
		return fmt.Errorf("adding sections to %s: %w", listID, err)
	}
	return nil
}
