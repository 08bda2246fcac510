package models

import "time"

// Recipe is a recipe link saved on a list, together with whatever the
// scraper service could extract from it.
type Recipe struct {
	ID               string    `json:"id"`
	ListID           string    `json:"list_id"`
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	SortOrder        int       `json:"sort_order"` // 0 is the most recently added
	TotalTimeMinutes *int      `json:"total_time_minutes,omitempty"`
	Ingredients      []string  `json:"ingredients"`
	Instructions     string    `json:"instructions,omitempty"`
	Yields           string    `json:"yields,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	Host             string    `json:"host,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// HasIngredients reports whether the recipe carries any ingredient lines.
func (r *Recipe) HasIngredients() bool {
	return r != nil && len(r.Ingredients) > 0
}

// DisplayTitle falls back to the host, then the URL, when the scraper found no title.
func (r *Recipe) DisplayTitle() string {
	switch {
	case r.Title != "":
		return r.Title
	case r.Host != "":
		return r.Host
	default:
		return r.URL
	}
}
