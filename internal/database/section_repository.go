package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/thenoetrevino/handla/internal/events"
	"github.com/thenoetrevino/handla/internal/models"
)

// SectionRepo handles all section-related database operations.
type SectionRepo struct {
	db  *sql.DB
	pub events.EventPublisher
}

// ListSections returns the sections of a list ordered by sort order, then id.
func (r *SectionRepo) ListSections(ctx context.Context, listID string) ([]models.SectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, list_id, title, sort_order FROM sections
		 WHERE list_id = ? ORDER BY sort_order, id`, listID)
	if err != nil {
		return nil, fmt.Errorf("querying sections for list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sections []models.SectionRecord
	for rows.Next() {
		var s models.SectionRecord
		if err := rows.Scan(&s.ID, &s.ListID, &s.Title, &s.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// UpsertSections inserts the sections or updates their title and sort order.
func (r *SectionRepo) UpsertSections(ctx context.Context, listID string, sections []models.SectionRecord) error {
	if len(sections) == 0 {
		return nil
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := upsertSections(ctx, tx, listID, sections); err != nil {
			return err
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}

// DeleteSections removes the given sections of a list. Items are not
// touched; callers move them first.
func (r *SectionRepo) DeleteSections(ctx context.Context, listID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM sections WHERE list_id = ? AND id IN (`+placeholders(len(ids))+`)`,
			stringArgs([]any{listID}, ids)...)
		if err != nil {
			return fmt.Errorf("deleting sections: %w", err)
		}
		return touchList(ctx, tx, listID)
	})
	if err != nil {
		return err
	}
	sendEvent(r.pub, listID)
	return nil
}

func upsertSections(ctx context.Context, tx *sql.Tx, listID string, sections []models.SectionRecord) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (list_id, id, title, sort_order) VALUES (?, ?, ?, ?)
		 ON CONFLICT(list_id, id) DO UPDATE SET title = excluded.title, sort_order = excluded.sort_order`)
	if err != nil {
		return fmt.Errorf("preparing section upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range sections {
		if _, err := stmt.ExecContext(ctx, listID, s.ID, s.Title, s.SortOrder); err != nil {
			return fmt.Errorf("upserting section %s: %w", s.ID, err)
		}
	}
	return nil
}
