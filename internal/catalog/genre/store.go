package genre

import (
	"context"

	"github.com/okoshkin/revu/pkg/pagination"
)

type Repository interface {
	List(context context.Context, name *string, page pagination.Params) ([]Genre, int64, error)
	GetBySlugs(context context.Context, slugs []string) ([]Genre, error)
	SlugExists(context context.Context, slug string) (bool, error)
	Create(context context.Context, genre *Genre) error
	DeleteBySlug(context context.Context, slug string) error
}
