package models

// SectionRecord is the persisted form of a board section (a store aisle).
// SortOrder gives the position of the section within its list.
type SectionRecord struct {
	ID        string `json:"id"`
	ListID    string `json:"list_id"`
	Title     string `json:"title"`
	SortOrder int    `json:"sort_order"`
}
