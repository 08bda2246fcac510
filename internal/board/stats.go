package board

// Filter selects which items Flatten returns.
type Filter int

const (
	FilterAll Filter = iota
	FilterChecked
	FilterUnchecked
)

// ParseFilter maps "all", "checked" and "unchecked" to a Filter.
func ParseFilter(s string) (Filter, bool) {
	switch s {
	case "", "all":
		return FilterAll, true
	case "checked", "done":
		return FilterChecked, true
	case "unchecked", "todo":
		return FilterUnchecked, true
	}
	return FilterAll, false
}

func (f Filter) String() string {
	switch f {
	case FilterChecked:
		return "checked"
	case FilterUnchecked:
		return "unchecked"
	default:
		return "all"
	}
}

func (f Filter) match(item Item) bool {
	switch f {
	case FilterChecked:
		return item.Checked
	case FilterUnchecked:
		return !item.Checked
	default:
		return true
	}
}

// SectionStats counts items of one section.
type SectionStats struct {
	Total   int `json:"total"`
	Checked int `json:"checked"`
}

// Stats summarizes a board.
type Stats struct {
	Total      int                     `json:"total"`
	Checked    int                     `json:"checked"`
	PerSection map[string]SectionStats `json:"per_section"`
}

// Remaining is the number of unchecked items.
func (s Stats) Remaining() int {
	return s.Total - s.Checked
}

// ComputeStats counts items per section and overall.
func ComputeStats(b Board) Stats {
	st := Stats{PerSection: make(map[string]SectionStats, len(b.ColumnOrder))}
	for _, colID := range b.ColumnOrder {
		var sec SectionStats
		for _, id := range b.Columns[colID].ItemIDs {
			sec.Total++
			if b.Items[id].Checked {
				sec.Checked++
			}
		}
		st.PerSection[colID] = sec
		st.Total += sec.Total
		st.Checked += sec.Checked
	}
	return st
}

// Flatten returns item ids in section order, then position order.
func Flatten(b Board, f Filter) []string {
	var out []string
	for _, colID := range b.ColumnOrder {
		for _, id := range b.Columns[colID].ItemIDs {
			if item, ok := b.Items[id]; ok && f.match(item) {
				out = append(out, id)
			}
		}
	}
	return out
}
