package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/handla/internal/events"
	"github.com/thenoetrevino/handla/internal/models"
)

// ItemRepo handles all item-related database operations.
type ItemRepo struct {
	db  *sql.DB
	pub events.EventPublisher
}

// ListItems returns the items of a list ordered by section, sort order, then id.
func (r *ItemRepo) ListItems(ctx context.Context, listID string) ([]models.ItemRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, list_id, section_id, text, checked, sort_order, updated_at FROM items
		 WHERE list_id = ? ORDER BY section_id, sort_order, id`, listID)
	if err != nil {
		return nil, fmt.Errorf("querying items for list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []models.ItemRecord
	for rows.Next() {
		var it models.ItemRecord
		if err := rows.Scan(&it.ID, &it.ListID, &it.SectionID, &it.Text, &it.Checked, &it.SortOrder, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertItems inserts the items or overwrites section, text, checked state
// and sort order of existing ones. Every record must belong to listID.
func (r *ItemRepo) UpsertItems(ctx context.Context, listID string, items []models.ItemRecord) error {
	if len(items) == 0 {
		return nil
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO items (id, list_id, section_id, text, checked, sort_order) VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				section_id = excluded.section_id,
				text = excluded.text,
				checked = excluded.checked,
				sort_order = excluded.sort_order,
				updated_at = CURRENT_TIMESTAMP
			 WHERE items.list_id = excluded.list_id`)
		if err != nil {
			return fmt.Errorf("preparing item upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, it := range items {
			if it.ListID != "" && it.ListID != listID {
				return fmt.Errorf("item %s belongs to list %s, not %s", it.ID, it.ListID, listID)
			}
			if _, err := stmt.ExecContext(ctx, it.ID, listID, it.SectionID, it.Text, it.Checked, it.SortOrder); err != nil {
				return fmt.Errorf("upserting item %s: %w", it.ID, err)
			}
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}

// DeleteItems removes the given items of a list. Unknown ids are ignored.
func (r *ItemRepo) DeleteItems(ctx context.Context, listID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM items WHERE list_id = ? AND id IN (`+placeholders(len(ids))+`)`,
			stringArgs([]any{listID}, ids)...)
		if err != nil {
			return fmt.Errorf("deleting items: %w", err)
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}

// DeleteAllItems empties a list. Sections are kept.
func (r *ItemRepo) DeleteAllItems(ctx context.Context, listID string) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE list_id = ?`, listID); err != nil {
			return fmt.Errorf("deleting items: %w", err)
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}
