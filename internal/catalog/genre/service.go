package genre

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/policy"
	"github.com/okoshkin/revu/internal/platform/validate"
	"github.com/okoshkin/revu/pkg/pagination"
	"github.com/okoshkin/revu/pkg/slug"
)

const slugAttempts = 100

type CreateInput struct {
	Name string  `json:"name"`
	Slug *string `json:"slug"`
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) List(context context.Context, name *string, page pagination.Params) ([]Genre, int64, error) {
	return service.repo.List(context, name, page)
}

func (service *Service) Create(context context.Context, caps policy.Capabilities, input CreateInput) (*Genre, error) {
	if !policy.Decide(caps, policy.ActionCreate, policy.ResourceGenre, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Only administrators can manage the catalogue")
	}

	v := &validate.Validator{}
	v.Required("name", input.Name).MaxLen("name", input.Name, 256)
	if input.Slug != nil {
		v.Required("slug", *input.Slug).MaxLen("slug", *input.Slug, 50).Slug("slug", *input.Slug)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	genre := &Genre{Name: input.Name}

	if input.Slug != nil {
		exists, err := service.repo.SlugExists(context, *input.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Conflict("A genre with this slug already exists")
		}
		genre.Slug = *input.Slug
	} else {
		generated, err := service.deriveSlug(context, input.Name)
		if err != nil {
			return nil, err
		}
		genre.Slug = generated
	}

	if err := service.repo.Create(context, genre); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "genre_created",
		slog.String("slug", genre.Slug))
	return genre, nil
}

func (service *Service) Delete(context context.Context, caps policy.Capabilities, genreSlug string) error {
	if !policy.Decide(caps, policy.ActionDelete, policy.ResourceGenre, policy.OwnershipUnknown).Allowed() {
		return apperr.Forbidden("Only administrators can manage the catalogue")
	}
	return service.repo.DeleteBySlug(context, genreSlug)
}

func (service *Service) deriveSlug(context context.Context, name string) (string, error) {
	base := slug.From(name)
	if base == "" {
		return "", apperr.ValidationError("Name cannot be reduced to a valid slug")
	}

	candidate := base
	for i := 2; i <= slugAttempts; i++ {
		exists, err := service.repo.SlugExists(context, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperr.Conflict("Could not derive a unique slug for this name")
}
