package title

import (
	"time"

	"github.com/okoshkin/revu/internal/catalog/category"
	"github.com/okoshkin/revu/internal/catalog/genre"
)

// Title is a reviewable work in the catalogue: a film, a book, an album.
//
// Rating is never stored. It is derived at read time as the arithmetic mean
// of the review scores for the title and stays nil while the title has no
// reviews. Write paths ignore any client-supplied value.
type Title struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Year        *int               `json:"year"`
	Description *string            `json:"description"`
	Rating      *float64           `json:"rating"`
	Category    *category.Category `json:"category"`
	Genres      []genre.Genre      `json:"genres"`
	CreatedAt   time.Time          `json:"-"`
	UpdatedAt   time.Time          `json:"-"`
}
