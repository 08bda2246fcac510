package reconcile

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/models"
)

// BuildBoard assembles a board from stored rows. Sections and items are
// ordered by sort order, ties broken by id. Items whose section does not
// exist are appended to the fallback section, or dropped when the list has
// no such section. The result always passes board.Validate.
func BuildBoard(sections []models.SectionRecord, items []models.ItemRecord, fallback string) board.Board {
	sections = slices.Clone(sections)
	slices.SortStableFunc(sections, func(a, b models.SectionRecord) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
	})
	items = slices.Clone(items)
	slices.SortStableFunc(items, func(a, b models.ItemRecord) int {
		return cmp.Or(cmp.Compare(a.SortOrder, b.SortOrder), cmp.Compare(a.ID, b.ID))
	})

	b := board.Board{
		Items:       make(map[string]board.Item, len(items)),
		Columns:     make(map[string]board.Section, len(sections)),
		ColumnOrder: make([]string, 0, len(sections)),
	}
	for _, s := range sections {
		if b.HasSection(s.ID) {
			continue
		}
		b.Columns[s.ID] = board.Section{ID: s.ID, Title: s.Title, ItemIDs: []string{}}
		b.ColumnOrder = append(b.ColumnOrder, s.ID)
	}

	var orphans []models.ItemRecord
	for _, it := range items {
		if _, dup := b.Items[it.ID]; dup {
			continue
		}
		sec, ok := b.Columns[it.SectionID]
		if !ok {
			orphans = append(orphans, it)
			continue
		}
		sec.ItemIDs = append(sec.ItemIDs, it.ID)
		b.Columns[it.SectionID] = sec
		b.Items[it.ID] = board.Item{ID: it.ID, Text: it.Text, Checked: it.Checked}
	}

	if len(orphans) == 0 {
		return b
	}
	sec, ok := b.Columns[fallback]
	if !ok {
		slog.Warn("dropping items of unknown sections", "count", len(orphans))
		return b
	}
	for _, it := range orphans {
		sec.ItemIDs = append(sec.ItemIDs, it.ID)
		b.Items[it.ID] = board.Item{ID: it.ID, Text: it.Text, Checked: it.Checked}
	}
	b.Columns[fallback] = sec
	return b
}
