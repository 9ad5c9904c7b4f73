package comment

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

// ReviewDirectory answers whether a review exists under a given title. The
// comment tree is addressed through /titles/{titleID}/reviews/{reviewID},
// so a review reached through the wrong title is treated as absent.
type ReviewDirectory interface {
	Exists(context context.Context, titleID, reviewID int64) (bool, error)
}

type WriteInput struct {
	Text *string `json:"text"`
}

type Service struct {
	repo    Repository
	reviews ReviewDirectory
	logger  *slog.Logger
}

func NewService(repo Repository, reviews ReviewDirectory, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		reviews: reviews,
		logger:  logger,
	}
}

func (service *Service) List(context context.Context, titleID, reviewID int64, page pagination.Params) ([]Comment, int64, error) {
	if err := service.requireReview(context, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	return service.repo.ListByReview(context, reviewID, page)
}

func (service *Service) Get(context context.Context, titleID, reviewID, commentID int64) (*Comment, error) {
	if err := service.requireReview(context, titleID, reviewID); err != nil {
		return nil, err
	}
	return service.repo.GetByID(context, reviewID, commentID)
}

func (service *Service) Create(context context.Context, claims *sec.AuthClaims, titleID, reviewID int64, input WriteInput) (*Comment, error) {
	caps := policy.CapabilitiesFromClaims(claims)
	if !policy.Decide(caps, policy.ActionCreate, policy.ResourceComment, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Sign in to post a comment")
	}

	if input.Text == nil {
		return nil, validate.RequiredError("text", "Text is required")
	}
	v := &validate.Validator{}
	v.Required("text", *input.Text)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := service.requireReview(context, titleID, reviewID); err != nil {
		return nil, err
	}

	authorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid token subject")
	}

	comment := &Comment{
		ReviewID: reviewID,
		AuthorID: authorID,
		Author:   claims.Username,
		Text:     *input.Text,
	}
	if err := service.repo.Create(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_created",
		slog.Int64("review_id", reviewID),
		slog.Int64("comment_id", comment.ID))
	return comment, nil
}

func (service *Service) Update(context context.Context, claims *sec.AuthClaims, titleID, reviewID, commentID int64, input WriteInput, partial bool) (*Comment, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}

	comment, err := service.authorize(context, claims, action, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if input.Text == nil {
		if partial {
			return comment, nil
		}
		return nil, validate.RequiredError("text", "Text is required")
	}

	v := &validate.Validator{}
	v.Required("text", *input.Text)
	if err := v.Err(); err != nil {
		return nil, err
	}

	comment.Text = *input.Text
	if err := service.repo.Update(context, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (service *Service) Delete(context context.Context, claims *sec.AuthClaims, titleID, reviewID, commentID int64) error {
	if _, err := service.authorize(context, claims, policy.ActionDelete, titleID, reviewID, commentID); err != nil {
		return err
	}
	return service.repo.Delete(context, reviewID, commentID)
}

// authorize mirrors the review flow: collection gate, then the
// ownership-aware decision on the located comment.
func (service *Service) authorize(context context.Context, claims *sec.AuthClaims, action policy.Action, titleID, reviewID, commentID int64) (*Comment, error) {
	caps := policy.CapabilitiesFromClaims(claims)
	if !policy.Decide(caps, action, policy.ResourceComment, policy.OwnershipUnknown).Allowed() {
		return nil, apperr.Forbidden("Sign in to manage comments")
	}

	if err := service.requireReview(context, titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := service.repo.GetByID(context, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	ownership := policy.OwnershipOther
	if comment.AuthorID.String() == claims.UserID {
		ownership = policy.OwnershipOwner
	}
	if !policy.Decide(caps, action, policy.ResourceComment, ownership).Allowed() {
		return nil, apperr.Forbidden("You cannot modify another member's comment")
	}

	return comment, nil
}

func (service *Service) requireReview(context context.Context, titleID, reviewID int64) error {
	exists, err := service.reviews.Exists(context, titleID, reviewID)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("Review")
	}
	return nil
}
