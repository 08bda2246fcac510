package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/thenoetrevino/handla/internal/events"
	"github.com/thenoetrevino/handla/internal/models"
	_ "modernc.org/sqlite"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database and runs migrations
// This is the unified test database setup used by all tests
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// setupTestDBFile creates a file-based database for testing persistence across restarts
func setupTestDBFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nested", "handla.db")
}

// recordingPublisher captures every event it is asked to send.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	fail   error
}

func (p *recordingPublisher) SendEvent(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) listIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.ListID)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// ============================================================================
// FIXTURES
// ============================================================================

func testSections() []models.SectionRecord {
	return []models.SectionRecord{
		{ID: "frukt_gront", Title: "Frukt & grönt", SortOrder: 0},
		{ID: "mejeri", Title: "Mejeri", SortOrder: 1},
		{ID: "ovrigt", Title: "Övrigt", SortOrder: 2},
	}
}

func createTestList(t *testing.T, repo *Repository, id string) {
	t.Helper()
	if err := repo.CreateList(context.Background(), id, "willys", testSections()); err != nil {
		t.Fatalf("Failed to create test list: %v", err)
	}
}

// storedItemIDs returns the sorted ids of the items stored for listID.
func storedItemIDs(t *testing.T, repo *Repository, listID string) []string {
	t.Helper()
	items, err := repo.ListItems(context.Background(), listID)
	if err != nil {
		t.Fatalf("Failed to list items: %v", err)
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	slices.Sort(ids)
	return ids
}
