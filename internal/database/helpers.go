package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thenoetrevino/handla/internal/events"
)

// timeLayout matches what CURRENT_TIMESTAMP stores.
const timeLayout = "2006-01-02 15:04:05"

// publishRetries bounds how often a change notification is retried.
const publishRetries = 3

// withTx executes a function within a database transaction.
// It automatically handles begin, rollback on error, and commit on success.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// sendEvent announces a change to listID if a publisher is available.
// Errors are logged but not returned (fire-and-forget pattern).
func sendEvent(pub events.EventPublisher, listID string) {
	if pub == nil {
		return
	}
	if err := events.PublishWithRetry(pub, events.ListChanged(listID), publishRetries); err != nil {
		slog.Warn("failed to send change event", "list_id", listID, "error", err)
	}
}

// touchList bumps the list's updated_at inside an open transaction.
func touchList(ctx context.Context, tx *sql.Tx, listID string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE lists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, listID); err != nil {
		return fmt.Errorf("touching list %s: %w", listID, err)
	}
	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// stringArgs prepends head to ids as query arguments.
func stringArgs(head []any, ids []string) []any {
	args := make([]any, 0, len(head)+len(ids))
	args = append(args, head...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

// formatTime renders t the way CURRENT_TIMESTAMP does, for comparisons.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
