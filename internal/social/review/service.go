package review

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/policy"
	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/internal/platform/validate"
	"github.com/okoshkin/revu/pkg/pagination"
)

// Score bounds for a review.
const (
	ScoreMin = 1
	ScoreMax = 10
)

// TitleDirectory answers whether a title exists. Implemented by the title
// repository; reviews never mutate the catalogue.
type TitleDirectory interface {
	Exists(context context.Context, id int64) (bool, error)
}

type WriteInput struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type Service struct {
	repo   Repository
	titles TitleDirectory
	logger *slog.Logger
}

func NewService(repo Repository, titles TitleDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		titles: titles,
		logger: logger,
	}
}

func (service *Service) List(context context.Context, titleID int64, page pagination.Params) ([]Review, int64, error) {
	if err := service.requireTitle(context, titleID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByTitle(context, titleID, page)
}

func (service *Service) Get(context context.Context, titleID, reviewID int64) (*Review, error) {
	if err := service.requireTitle(context, titleID); err != nil {
		return nil, err
	}
	return service.repo.GetByID(context, titleID, reviewID)
}

// Create posts a new review. The one-review-per-title rule is enforced here
// with an existence check and again by the store's unique constraint, so two
// racing requests cannot both succeed.
func (service *Service) Create(context context.Context, claims *sec.AuthClaims, titleID int64, input WriteInput) (*Review, error) {
	caps := policy.CapabilitiesFromClaims(claims)
	if !policy.Decide(caps, policy.ActionCreate, policy.ResourceReview, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Sign in to post a review")
	}

	if input.Text == nil || input.Score == nil {
		v := &validate.Validator{}
		v.Custom("text", input.Text == nil, "Text is required")
		v.Custom("score", input.Score == nil, "Score is required")
		return nil, v.Err()
	}
	if err := validateContent(*input.Text, *input.Score); err != nil {
		return nil, err
	}

	if err := service.requireTitle(context, titleID); err != nil {
		return nil, err
	}

	authorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token subject")
	}

	exists, err := service.repo.ExistsByAuthorAndTitle(context, authorID, titleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.ValidationError(ErrDuplicateReview)
	}

	review := &Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Author:   claims.Username,
		Text:     *input.Text,
		Score:    *input.Score,
	}
	if err := service.repo.Create(context, review); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "review_created",
		slog.Int64("title_id", titleID),
		slog.Int64("review_id", review.ID))
	return review, nil
}

// Update edits an existing review. The duplicate guard does not run here:
// an edit can never create a second (author, title) pair.
func (service *Service) Update(context context.Context, claims *sec.AuthClaims, titleID, reviewID int64, input WriteInput, partial bool) (*Review, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}

	review, err := service.authorize(context, claims, action, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	if partial {
		if input.Text != nil {
			review.Text = *input.Text
		}
		if input.Score != nil {
			review.Score = *input.Score
		}
	} else {
		if input.Text == nil || input.Score == nil {
			v := &validate.Validator{}
			v.Custom("text", input.Text == nil, "Text is required")
			v.Custom("score", input.Score == nil, "Score is required")
			return nil, v.Err()
		}
		review.Text = *input.Text
		review.Score = *input.Score
	}

	if err := validateContent(review.Text, review.Score); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (service *Service) Delete(context context.Context, claims *sec.AuthClaims, titleID, reviewID int64) error {
	if _, err := service.authorize(context, claims, policy.ActionDelete, titleID, reviewID); err != nil {
		return err
	}
	return service.repo.Delete(context, titleID, reviewID)
}

// authorize runs the two-stage policy check for an object-level action: the
// collection gate first (so anonymous callers are rejected without touching
// storage), then the ownership-aware decision on the located review.
func (service *Service) authorize(context context.Context, claims *sec.AuthClaims, action policy.Action, titleID, reviewID int64) (*Review, error) {
	caps := policy.CapabilitiesFromClaims(claims)
	if !policy.Decide(caps, action, policy.ResourceReview, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Sign in to manage reviews")
	}

	if err := service.requireTitle(context, titleID); err != nil {
		return nil, err
	}

	review, err := service.repo.GetByID(context, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	ownership := policy.OwnershipOther
	if review.AuthorID.String() == claims.UserID {
		ownership = policy.OwnershipOwner
	}
	if !policy.Decide(caps, action, policy.ResourceReview, ownership).Allowed() {
		return nil, apperr.Forbidden("You cannot modify another member's review")
	}

	return review, nil
}

func (service *Service) requireTitle(context context.Context, titleID int64) error {
	exists, err := service.titles.Exists(context, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Title")
	}
	return nil
}

func validateContent(text string, score int) error {
	v := &validate.Validator{}
	v.Required("text", text)
	v.Range("score", score, ScoreMin, ScoreMax)
	return v.Err()
}
