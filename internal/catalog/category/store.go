package category

import (
	"context"

	"github.com/okoshkin/revu/pkg/pagination"
)

type Repository interface {
	List(context context.Context, name *string, page pagination.Params) ([]Category, int64, error)
	GetBySlug(context context.Context, slug string) (*Category, error)
	SlugExists(context context.Context, slug string) (bool, error)
	Create(context context.Context, category *Category) error
	DeleteBySlug(context context.Context, slug string) error
}
