package title

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/okoshkin/revu/internal/catalog/category"
	"github.com/okoshkin/revu/internal/catalog/genre"
	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/policy"
	"github.com/okoshkin/revu/internal/platform/validate"
	"github.com/okoshkin/revu/pkg/pagination"
)

// yearHeadroom is how far into the future an announced release may be dated.
const yearHeadroom = 2

// ScoreSource supplies the review scores the rating is derived from. It is
// implemented by the review repository.
type ScoreSource interface {
	ScoresByTitle(context context.Context, titleIDs []int64) (map[int64][]int, error)
}

// WriteInput is the write payload for a title. A rating field supplied by
// the client is not represented here and is therefore dropped on decode.
type WriteInput struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genres      *[]string `json:"genres"`
}

type Service struct {
	repo       Repository
	categories category.Repository
	genres     genre.Repository
	scores     ScoreSource
	logger     *slog.Logger
}

func NewService(repo Repository, categories category.Repository, genres genre.Repository, scores ScoreSource, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		genres:     genres,
		scores:     scores,
		logger:     logger,
	}
}

func (service *Service) List(context context.Context, filters Filters, page pagination.Params) ([]*Title, int64, error) {
	titles, total, err := service.repo.List(context, filters, page)
	if err != nil {
		return nil, 0, err
	}
	if err := service.decorateRatings(context, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

func (service *Service) Get(context context.Context, id int64) (*Title, error) {
	title, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}
	if err := service.decorateRatings(context, []*Title{title}); err != nil {
		return nil, err
	}
	return title, nil
}

func (service *Service) Create(context context.Context, caps policy.Capabilities, input WriteInput) (*Title, error) {
	if !policy.Decide(caps, policy.ActionCreate, policy.ResourceTitle, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Only administrators can manage the catalogue")
	}

	if input.Name == nil {
		return nil, validate.RequiredError("name", "Name is required")
	}
	if err := service.validateFields(*input.Name, input.Year); err != nil {
		return nil, err
	}

	title := &Title{
		Name:        *input.Name,
		Year:        input.Year,
		Description: input.Description,
	}

	if err := service.resolveCategory(context, title, input.Category); err != nil {
		return nil, err
	}
	genreIDs, err := service.resolveGenres(context, title, input.Genres)
	if err != nil {
		return nil, err
	}

	if err := service.repo.Create(context, title, genreIDs); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "title_created",
		slog.Int64("title_id", title.ID))
	return title, nil
}

// Update applies a full or partial update. For a partial update, absent
// fields keep their stored values; for a full update, absent optional
// fields are cleared.
func (service *Service) Update(context context.Context, caps policy.Capabilities, id int64, input WriteInput, partial bool) (*Title, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if !policy.Decide(caps, action, policy.ResourceTitle, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Only administrators can manage the catalogue")
	}

	title, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	if partial {
		if input.Name != nil {
			title.Name = *input.Name
		}
		if input.Year != nil {
			title.Year = input.Year
		}
		if input.Description != nil {
			title.Description = input.Description
		}
	} else {
		if input.Name == nil {
			return nil, validate.RequiredError("name", "Name is required")
		}
		title.Name = *input.Name
		title.Year = input.Year
		title.Description = input.Description
	}

	if err := service.validateFields(title.Name, title.Year); err != nil {
		return nil, err
	}

	if !partial || input.Category != nil {
		if err := service.resolveCategory(context, title, input.Category); err != nil {
			return nil, err
		}
	}

	genreIDs := genreIDsOf(title)
	if !partial || input.Genres != nil {
		genreIDs, err = service.resolveGenres(context, title, input.Genres)
		if err != nil {
			return nil, err
		}
	}

	if err := service.repo.Update(context, title, genreIDs); err != nil {
		return nil, err
	}

	if err := service.decorateRatings(context, []*Title{title}); err != nil {
		return nil, err
	}
	return title, nil
}

func (service *Service) Delete(context context.Context, caps policy.Capabilities, id int64) error {
	if !policy.Decide(caps, policy.ActionDelete, policy.ResourceTitle, policy.OwnershipUnknown).Allowed() {
		return apperr.Forbidden("Only administrators can manage the catalogue")
	}
	return service.repo.Delete(context, id)
}

func (service *Service) validateFields(name string, year *int) error {
	v := &validate.Validator{}
	v.Required("name", name).MaxLen("name", name, 256)
	if year != nil {
		maxYear := time.Now().Year() + yearHeadroom
		v.Custom("year", *year > maxYear, "Year cannot be more than two years in the future")
	}
	return v.Err()
}

// resolveCategory binds the title to the category named by slug, or clears
// the binding when the slug is nil.
func (service *Service) resolveCategory(context context.Context, title *Title, slug *string) error {
	if slug == nil {
		title.Category = nil
		return nil
	}
	found, err := service.categories.GetBySlug(context, *slug)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == 404 {
			return apperr.ValidationError("Unknown category: " + *slug)
		}
		return err
	}
	title.Category = found
	return nil
}

// resolveGenres replaces the title's genre set with the genres named by the
// given slugs. Every slug must name an existing genre.
func (service *Service) resolveGenres(context context.Context, title *Title, slugs *[]string) ([]int, error) {
	if slugs == nil || len(*slugs) == 0 {
		title.Genres = make([]genre.Genre, 0)
		return nil, nil
	}

	found, err := service.genres.GetBySlugs(context, *slugs)
	if err != nil {
		return nil, err
	}

	if len(found) != len(unique(*slugs)) {
		known := make(map[string]bool, len(found))
		for _, g := range found {
			known[g.Slug] = true
		}
		missing := []string{}
		for _, s := range unique(*slugs) {
			if !known[s] {
				missing = append(missing, s)
			}
		}
		return nil, apperr.ValidationError("Unknown genres: " + strings.Join(missing, ", "))
	}

	title.Genres = found
	ids := make([]int, 0, len(found))
	for _, g := range found {
		ids = append(ids, g.ID)
	}
	return ids, nil
}

// decorateRatings computes the derived rating for each title as the mean of
// its review scores. Titles without reviews keep a nil rating.
func (service *Service) decorateRatings(context context.Context, titles []*Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}

	scores, err := service.scores.ScoresByTitle(context, ids)
	if err != nil {
		return err
	}

	for _, t := range titles {
		t.Rating = meanOf(scores[t.ID])
	}
	return nil
}

// meanOf returns the arithmetic mean of the scores, or nil for an empty set.
func meanOf(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	mean := float64(sum) / float64(len(scores))
	return &mean
}

func genreIDsOf(title *Title) []int {
	ids := make([]int, 0, len(title.Genres))
	for _, g := range title.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	res := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			res = append(res, v)
		}
	}
	return res
}
