package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/thenoetrevino/handla/internal/events"
	"github.com/thenoetrevino/handla/internal/models"
)

// ListRepo handles all list-related database operations.
type ListRepo struct {
	db  *sql.DB
	pub events.EventPublisher
}

// GetList returns the list with the given id, or models.ErrNotFound.
func (r *ListRepo) GetList(ctx context.Context, id string) (*models.List, error) {
	list := &models.List{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, store, created_at, updated_at FROM lists WHERE id = ?`, id,
	).Scan(&list.ID, &list.Store, &list.CreatedAt, &list.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting list %s: %w", id, err)
	}
	return list, nil
}

// GetAllLists returns every list, most recently updated first.
func (r *ListRepo) GetAllLists(ctx context.Context) ([]*models.List, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, store, created_at, updated_at FROM lists ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lists []*models.List
	for rows.Next() {
		list := &models.List{}
		if err := rows.Scan(&list.ID, &list.Store, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning list: %w", err)
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

// CreateList inserts the list together with its initial sections. It fails
// with models.ErrConflict when a list with the same id already exists.
func (r *ListRepo) CreateList(ctx context.Context, id, store string, sections []models.SectionRecord) error {
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO lists (id, store) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`, id, store)
		if err != nil {
			return fmt.Errorf("inserting list %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("list %s: %w", id, models.ErrConflict)
		}
		return upsertSections(ctx, tx, id, sections)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, id)
	return nil
}

// SetListStore records which store template the list follows.
func (r *ListRepo) SetListStore(ctx context.Context, id, store string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE lists SET store = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, store, id)
	if err != nil {
		return fmt.Errorf("updating store of list %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("list %s: %w", id, models.ErrNotFound)
	}
	sendEvent(r.pub, id)
	return nil
}

// DeleteListsOlderThan removes lists not updated since cutoff, along with
// their sections, items and recipes. It returns the removed list ids.
func (r *ListRepo) DeleteListsOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id FROM lists WHERE updated_at < ? ORDER BY id`, formatTime(cutoff))
		if err != nil {
			return fmt.Errorf("querying old lists: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				_ = rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM lists WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(nil, ids)...)
		if err != nil {
			return fmt.Errorf("deleting old lists: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		sendEvent(r.pub, id)
	}
	return ids, nil
}
