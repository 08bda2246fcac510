// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/database"
	"github.com/thenoetrevino/handla/internal/events"
	listservice "github.com/thenoetrevino/handla/internal/services/list"
)

// CaptureOutput captures stdout during function execution
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	// Save original stdout
	oldStdout := os.Stdout

	// Create pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}

	// Replace stdout with pipe writer
	os.Stdout = w

	// Channel to collect output
	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// Execute function
	fn()

	// Close writer and restore stdout
	_ = w.Close()
	os.Stdout = oldStdout

	// Get captured output
	return <-outC
}

// SetupTestDB creates an in-memory database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// SetupTestRepo returns a repository over a fresh database that publishes
// to an in-process hub.
func SetupTestRepo(t *testing.T) (*database.Repository, *events.Hub) {
	t.Helper()
	db := SetupTestDB(t)
	hub := events.NewHub()
	t.Cleanup(func() { _ = hub.Close() })
	return database.NewRepository(db, hub), hub
}

// CreateTestList creates a list with the sections of store and returns its id.
func CreateTestList(t *testing.T, svc listservice.Service, id, store string) string {
	t.Helper()
	l, err := svc.CreateList(context.Background(), listservice.CreateListRequest{ID: id, Store: board.StoreKey(store)})
	if err != nil {
		t.Fatalf("Failed to create test list: %v", err)
	}
	return l.ID
}

// CreateTestItem adds text to the list, classifying it unless sectionID is set.
func CreateTestItem(t *testing.T, svc listservice.Service, listID, sectionID, text string) string {
	t.Helper()
	res, err := svc.AddItem(context.Background(), listID, listservice.AddItemRequest{
		SectionID:      sectionID,
		Text:           text,
		AllowDuplicate: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}
	return res.ItemID
}

// SetupCobraCommand sets up a cobra command with args for testing
func SetupCobraCommand(cmd *cobra.Command, args []string) {
	cmd.SetArgs(args)
	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
}
