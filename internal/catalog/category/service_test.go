package category_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/revu/internal/catalog/category"
	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/policy"
	"github.com/okoshkin/revu/pkg/pagination"
	"github.com/okoshkin/revu/pkg/pointer"
)

type fakeRepository struct {
	nextID int
	bySlug map[string]*category.Category
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{bySlug: make(map[string]*category.Category)}
}

func (f *fakeRepository) List(_ context.Context, name *string, _ pagination.Params) ([]category.Category, int64, error) {
	out := []category.Category{}
	for _, c := range f.bySlug {
		if name == nil || c.Name == *name {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) GetBySlug(_ context.Context, slug string) (*category.Category, error) {
	c, ok := f.bySlug[slug]
	if !ok {
		return nil, apperr.NotFound("Category")
	}
	return c, nil
}

func (f *fakeRepository) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := f.bySlug[slug]
	return ok, nil
}

func (f *fakeRepository) Create(_ context.Context, c *category.Category) error {
	if _, ok := f.bySlug[c.Slug]; ok {
		return apperr.Conflict("A category with this slug already exists")
	}
	f.nextID++
	c.ID = f.nextID
	f.bySlug[c.Slug] = c
	return nil
}

func (f *fakeRepository) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := f.bySlug[slug]; !ok {
		return apperr.NotFound("Category")
	}
	delete(f.bySlug, slug)
	return nil
}

var adminCaps = policy.Capabilities{Authenticated: true, Admin: true}

/*
TestService_Create_DerivesSlug verifies the slug is derived from the name
when absent, with numeric-suffix disambiguation on collisions.
*/
func TestService_Create_DerivesSlug(t *testing.T) {
	repo := newFakeRepository()
	service := category.NewService(repo, slog.Default())

	first, err := service.Create(context.Background(), adminCaps, category.CreateInput{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction", first.Slug)

	second, err := service.Create(context.Background(), adminCaps, category.CreateInput{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction-2", second.Slug)

	third, err := service.Create(context.Background(), adminCaps, category.CreateInput{Name: "Science Fiction"})
	require.NoError(t, err)
	assert.Equal(t, "science-fiction-3", third.Slug)
}

/*
TestService_Create_ExplicitSlug verifies an explicit slug is validated and
checked for collisions rather than silently rewritten.
*/
func TestService_Create_ExplicitSlug(t *testing.T) {
	repo := newFakeRepository()
	service := category.NewService(repo, slog.Default())

	created, err := service.Create(context.Background(), adminCaps,
		category.CreateInput{Name: "Movies", Slug: pointer.To("films")})
	require.NoError(t, err)
	assert.Equal(t, "films", created.Slug)

	_, err = service.Create(context.Background(), adminCaps,
		category.CreateInput{Name: "Cinema", Slug: pointer.To("films")})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)

	_, err = service.Create(context.Background(), adminCaps,
		category.CreateInput{Name: "Bad", Slug: pointer.To("Not A Slug")})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_AdminOnlyWrites verifies mutations require the admin capability
while listing stays open.
*/
func TestService_AdminOnlyWrites(t *testing.T) {
	repo := newFakeRepository()
	service := category.NewService(repo, slog.Default())

	_, err := service.Create(context.Background(), policy.Capabilities{Authenticated: true},
		category.CreateInput{Name: "Nope"})
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	err = service.Delete(context.Background(), policy.Capabilities{}, "whatever")
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	_, _, err = service.List(context.Background(), nil, pagination.Params{Page: 1, PerPage: 20})
	assert.NoError(t, err)
}
