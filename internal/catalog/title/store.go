package title

import (
	"context"

	"github.com/okoshkin/revu/pkg/pagination"
)

// Filters narrows a title listing. All fields are optional and combined
// with AND.
type Filters struct {
	CategorySlug *string
	GenreSlug    *string
	Name         *string
	Year         *int
}

type Repository interface {
	// List returns a page of titles with category and genres populated,
	// ordered by derived rating descending with unrated titles last.
	List(context context.Context, filters Filters, page pagination.Params) ([]*Title, int64, error)
	GetByID(context context.Context, id int64) (*Title, error)
	Exists(context context.Context, id int64) (bool, error)
	Create(context context.Context, title *Title, genreIDs []int) error
	Update(context context.Context, title *Title, genreIDs []int) error
	Delete(context context.Context, id int64) error
}
