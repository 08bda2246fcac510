package board

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// NewItemID returns a new globally unique item id.
func NewItemID() string {
	return uuid.NewString()
}

// AddItem inserts a new item at the head of the section. It returns the new
// board and the item id, or the input board and "" when text is blank or the
// section does not exist.
func AddItem(b Board, sectionID, text string) (Board, string) {
	return addItemWithID(b, sectionID, NewItemID(), text)
}

// AddItemOrFirst behaves like AddItem but falls back to the first section
// when sectionID is unknown.
func AddItemOrFirst(b Board, sectionID, text string) (Board, string) {
	if !b.HasSection(sectionID) && len(b.ColumnOrder) > 0 {
		sectionID = b.ColumnOrder[0]
	}
	return AddItem(b, sectionID, text)
}

func addItemWithID(b Board, sectionID, id, text string) (Board, string) {
	text = strings.TrimSpace(text)
	if text == "" || id == "" || !b.HasSection(sectionID) {
		return b, ""
	}
	if _, exists := b.Items[id]; exists {
		return b, ""
	}

	next := b.Clone()
	if next.Items == nil {
		next.Items = make(map[string]Item)
	}
	next.Items[id] = Item{ID: id, Text: text}
	sec := next.Columns[sectionID]
	sec.ItemIDs = slices.Insert(sec.ItemIDs, 0, id)
	next.Columns[sectionID] = sec
	return next, id
}

// ToggleItem flips the checked state of an item.
func ToggleItem(b Board, id string) Board {
	item, ok := b.Items[id]
	if !ok {
		return b
	}
	next := b.Clone()
	item.Checked = !item.Checked
	next.Items[id] = item
	return next
}

// SetChecked sets the checked state of an item.
func SetChecked(b Board, id string, checked bool) Board {
	item, ok := b.Items[id]
	if !ok || item.Checked == checked {
		return b
	}
	return ToggleItem(b, id)
}

// EditItemText replaces an item's text. Blank text is ignored.
func EditItemText(b Board, id, text string) Board {
	text = strings.TrimSpace(text)
	item, ok := b.Items[id]
	if !ok || text == "" {
		return b
	}
	next := b.Clone()
	item.Text = text
	next.Items[id] = item
	return next
}

// DeleteItem removes an item from the item map and from its section.
func DeleteItem(b Board, id string) Board {
	if _, ok := b.Items[id]; !ok {
		return b
	}
	next := b.Clone()
	delete(next.Items, id)
	if colID, ok := owningSection(next, id); ok {
		sec := next.Columns[colID]
		sec.ItemIDs = slices.DeleteFunc(sec.ItemIDs, func(s string) bool { return s == id })
		next.Columns[colID] = sec
	}
	return next
}

// MoveItem moves an item to index in the target section. The index is
// clamped to the valid range. Moving within the same section reorders it.
func MoveItem(b Board, id, targetSectionID string, index int) Board {
	if _, ok := b.Items[id]; !ok || !b.HasSection(targetSectionID) {
		return b
	}
	from, ok := owningSection(b, id)
	if !ok {
		return b
	}

	next := b.Clone()
	src := next.Columns[from]
	src.ItemIDs = slices.DeleteFunc(src.ItemIDs, func(s string) bool { return s == id })
	next.Columns[from] = src

	dst := next.Columns[targetSectionID]
	index = max(0, min(index, len(dst.ItemIDs)))
	dst.ItemIDs = slices.Insert(dst.ItemIDs, index, id)
	next.Columns[targetSectionID] = dst
	return next
}

// Clear removes every item. Sections and their order are kept.
func Clear(b Board) Board {
	next := b.Clone()
	next.Items = make(map[string]Item)
	for id, sec := range next.Columns {
		sec.ItemIDs = []string{}
		next.Columns[id] = sec
	}
	return next
}
