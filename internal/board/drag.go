package board

import "slices"

// resolveOver maps a drop target to a section id and an insert index.
// A section target means the end of that section; an item target means
// the item's current position.
func resolveOver(b Board, overID string) (string, int, bool) {
	if sec, ok := b.Columns[overID]; ok {
		return overID, len(sec.ItemIDs), true
	}
	colID, ok := owningSection(b, overID)
	if !ok {
		return "", 0, false
	}
	return colID, slices.Index(b.Columns[colID].ItemIDs, overID), true
}

// OnDragOver moves the active item into another section while it hovers
// over that section or one of its items. Hovering within the item's own
// section is a no-op; that reorder is committed by OnDragEnd.
func OnDragOver(b Board, activeID, overID string) Board {
	if _, ok := b.Items[activeID]; !ok {
		return b
	}
	from, ok := owningSection(b, activeID)
	if !ok {
		return b
	}
	to, index, ok := resolveOver(b, overID)
	if !ok || from == to {
		return b
	}

	next := b.Clone()
	src := next.Columns[from]
	src.ItemIDs = slices.DeleteFunc(src.ItemIDs, func(s string) bool { return s == activeID })
	next.Columns[from] = src

	dst := next.Columns[to]
	dst.ItemIDs = slices.Insert(dst.ItemIDs, index, activeID)
	next.Columns[to] = dst
	return next
}

// OnDragEnd commits a reorder within one section: the active item takes the
// position of the item it was dropped on. Drops across sections, onto a
// section, or onto the item's own position do nothing.
func OnDragEnd(b Board, activeID, overID string) Board {
	if _, ok := b.Items[activeID]; !ok {
		return b
	}
	colID, ok := owningSection(b, activeID)
	if !ok {
		return b
	}
	ids := b.Columns[colID].ItemIDs
	oldIndex := slices.Index(ids, activeID)
	newIndex := slices.Index(ids, overID)
	if oldIndex < 0 || newIndex < 0 || oldIndex == newIndex {
		return b
	}

	next := b.Clone()
	sec := next.Columns[colID]
	sec.ItemIDs = arrayMove(sec.ItemIDs, oldIndex, newIndex)
	next.Columns[colID] = sec
	return next
}

// Drop commits a finished drag in one step. Across sections the item lands
// before the item it was dropped on, or last when dropped on a section; within
// its own section it takes the position of that item.
func Drop(b Board, activeID, overID string) Board {
	from, ok := owningSection(b, activeID)
	if !ok {
		return b
	}
	if to, _, ok := resolveOver(b, overID); ok && to != from {
		return OnDragOver(b, activeID, overID)
	}
	return OnDragEnd(b, activeID, overID)
}

// arrayMove removes the element at from and reinserts it at to.
func arrayMove(ids []string, from, to int) []string {
	v := ids[from]
	ids = slices.Delete(ids, from, from+1)
	return slices.Insert(ids, to, v)
}
