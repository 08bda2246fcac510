package reconcile

import (
	"slices"

	"github.com/thenoetrevino/handla/internal/board"
	"github.com/thenoetrevino/handla/internal/models"
)

// ItemPlan is the set of writes that brings the store in line with a board.
type ItemPlan struct {
	// Deletes holds ids the store has that the board no longer does, sorted.
	Deletes []string `json:"deletes"`

	// Upserts holds every item of the board in section order. SortOrder is
	// the item's index within its section.
	Upserts []models.ItemRecord `json:"upserts"`
}

// IsEmpty reports whether the plan performs no writes.
func (p ItemPlan) IsEmpty() bool {
	return len(p.Deletes) == 0 && len(p.Upserts) == 0
}

// Plan diffs desired against the ids the store is known to hold.
func Plan(listID string, storeIDs []string, desired board.Board) ItemPlan {
	var plan ItemPlan
	for _, id := range storeIDs {
		if _, ok := desired.Items[id]; !ok {
			plan.Deletes = append(plan.Deletes, id)
		}
	}
	slices.Sort(plan.Deletes)
	plan.Deletes = slices.Compact(plan.Deletes)

	for _, sec := range desired.Sections() {
		for i, id := range sec.ItemIDs {
			item := desired.Items[id]
			plan.Upserts = append(plan.Upserts, models.ItemRecord{
				ID:        id,
				ListID:    listID,
				SectionID: sec.ID,
				Text:      item.Text,
				Checked:   item.Checked,
				SortOrder: i,
			})
		}
	}
	return plan
}

// SectionRecords returns the sections of b as records, in display order.
func SectionRecords(listID string, b board.Board) []models.SectionRecord {
	out := make([]models.SectionRecord, 0, len(b.ColumnOrder))
	for i, sec := range b.Sections() {
		out = append(out, models.SectionRecord{ID: sec.ID, ListID: listID, Title: sec.Title, SortOrder: i})
	}
	return out
}

// TemplateSections returns the sections a new list of the store starts with.
func TemplateSections(listID string, key board.StoreKey) []models.SectionRecord {
	defs := board.TemplateFor(key).Sections
	out := make([]models.SectionRecord, 0, len(defs))
	for i, def := range defs {
		out = append(out, models.SectionRecord{ID: def.ID, ListID: listID, Title: def.Title, SortOrder: i})
	}
	return out
}

func itemIDSet(b board.Board) map[string]struct{} {
	out := make(map[string]struct{}, len(b.Items))
	for id := range b.Items {
		out[id] = struct{}{}
	}
	return out
}
