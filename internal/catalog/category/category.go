package category

import "time"

// Category is a top-level classification for a title, e.g. "Movies" or "Books".
// A title belongs to at most one category.
type Category struct {
	ID        int       `json:"-"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"-"`
}
