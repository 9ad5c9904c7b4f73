package review_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/internal/social/review"
	"github.com/okoshkin/revu/pkg/pagination"
	"github.com/okoshkin/revu/pkg/pointer"
)

// fakeRepository is an in-memory Repository. Create enforces the
// (author, title) uniqueness under a lock, mirroring the DB constraint.
type fakeRepository struct {
	mu      sync.Mutex
	nextID  int64
	reviews map[int64]*review.Review
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{reviews: make(map[int64]*review.Review)}
}

func (f *fakeRepository) ListByTitle(_ context.Context, titleID int64, _ pagination.Params) ([]review.Review, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []review.Review{}
	for _, r := range f.reviews {
		if r.TitleID == titleID {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) GetByID(_ context.Context, titleID, reviewID int64) (*review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return nil, apperr.NotFound("Review")
	}
	clone := *r
	return &clone, nil
}

func (f *fakeRepository) Exists(_ context.Context, titleID, reviewID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	return ok && r.TitleID == titleID, nil
}

func (f *fakeRepository) ExistsByAuthorAndTitle(_ context.Context, authorID uuid.UUID, titleID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasPairLocked(authorID, titleID), nil
}

func (f *fakeRepository) Create(_ context.Context, r *review.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hasPairLocked(r.AuthorID, r.TitleID) {
		return apperr.ValidationError(review.ErrDuplicateReview)
	}
	f.nextID++
	r.ID = f.nextID
	clone := *r
	f.reviews[r.ID] = &clone
	return nil
}

func (f *fakeRepository) Update(_ context.Context, r *review.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.reviews[r.ID]
	if !ok || stored.TitleID != r.TitleID {
		return apperr.NotFound("Review")
	}
	stored.Text = r.Text
	stored.Score = r.Score
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, titleID, reviewID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return apperr.NotFound("Review")
	}
	delete(f.reviews, reviewID)
	return nil
}

func (f *fakeRepository) ScoresByTitle(_ context.Context, titleIDs []int64) (map[int64][]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int64][]int)
	for _, r := range f.reviews {
		for _, id := range titleIDs {
			if r.TitleID == id {
				out[id] = append(out[id], r.Score)
			}
		}
	}
	return out, nil
}

func (f *fakeRepository) hasPairLocked(authorID uuid.UUID, titleID int64) bool {
	for _, r := range f.reviews {
		if r.AuthorID == authorID && r.TitleID == titleID {
			return true
		}
	}
	return false
}

// fakeTitles answers Exists for a fixed set of title IDs.
type fakeTitles struct {
	known map[int64]bool
}

func (f *fakeTitles) Exists(_ context.Context, id int64) (bool, error) {
	return f.known[id], nil
}

func newService(repo review.Repository) *review.Service {
	titles := &fakeTitles{known: map[int64]bool{1: true, 2: true}}
	return review.NewService(repo, titles, slog.Default())
}

func claimsFor(id uuid.UUID, username, role string) *sec.AuthClaims {
	return &sec.AuthClaims{UserID: id.String(), Username: username, Role: role}
}

/*
TestService_Create_Duplicate verifies that a second review by the same
author on the same title is rejected with a validation failure, while a
review on another title succeeds.
*/
func TestService_Create_Duplicate(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	author := uuid.New()
	claims := claimsFor(author, "anna", "user")
	input := review.WriteInput{Text: pointer.To("Loved it"), Score: pointer.To(9)}

	_, err := service.Create(context.Background(), claims, 1, input)
	require.NoError(t, err)

	// Same author, same title: rejected
	_, err = service.Create(context.Background(), claims, 1, input)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	assert.Equal(t, review.ErrDuplicateReview, ae.Message)

	// Same author, different title: fine
	_, err = service.Create(context.Background(), claims, 2, input)
	assert.NoError(t, err)

	// Different author, same title: fine
	other := claimsFor(uuid.New(), "boris", "user")
	_, err = service.Create(context.Background(), other, 1, input)
	assert.NoError(t, err)
}

/*
TestService_Create_Race runs concurrent creates for the same (author, title)
pair and asserts exactly one wins; the losers all receive the same
validation failure the synchronous check produces.
*/
func TestService_Create_Race(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	author := uuid.New()
	claims := claimsFor(author, "anna", "user")

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := review.WriteInput{Text: pointer.To("Race entry"), Score: pointer.To(8)}
			_, errs[i] = service.Create(context.Background(), claims, 1, input)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, review.ErrDuplicateReview, ae.Message)
	}
	assert.Equal(t, 1, succeeded)
}

/*
TestService_Create_Validation covers the score bounds and required fields.
*/
func TestService_Create_Validation(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)
	claims := claimsFor(uuid.New(), "anna", "user")

	tests := []struct {
		name  string
		input review.WriteInput
	}{
		{"missing_score", review.WriteInput{Text: pointer.To("text")}},
		{"missing_text", review.WriteInput{Score: pointer.To(5)}},
		{"score_too_low", review.WriteInput{Text: pointer.To("text"), Score: pointer.To(0)}},
		{"score_too_high", review.WriteInput{Text: pointer.To("text"), Score: pointer.To(11)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), claims, 1, tt.input)
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		})
	}
}

/*
TestService_Create_AnonymousForbidden verifies anonymous callers get a
client-visible Forbidden, never a server fault.
*/
func TestService_Create_AnonymousForbidden(t *testing.T) {
	service := newService(newFakeRepository())

	input := review.WriteInput{Text: pointer.To("text"), Score: pointer.To(5)}
	_, err := service.Create(context.Background(), nil, 1, input)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 403, ae.HTTPStatus)
}

/*
TestService_Create_UnknownTitle verifies the parent title is checked before
any write.
*/
func TestService_Create_UnknownTitle(t *testing.T) {
	service := newService(newFakeRepository())
	claims := claimsFor(uuid.New(), "anna", "user")

	input := review.WriteInput{Text: pointer.To("text"), Score: pointer.To(5)}
	_, err := service.Create(context.Background(), claims, 999, input)

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, 404, ae.HTTPStatus)
}

/*
TestService_OwnershipMatrix exercises update and delete across the caller
roles: owner edits and deletes, a stranger can do neither, a moderator may
delete but not edit, an admin may do both.
*/
func TestService_OwnershipMatrix(t *testing.T) {
	owner := uuid.New()
	ownerClaims := claimsFor(owner, "anna", "user")

	seed := func(t *testing.T) (*review.Service, int64) {
		repo := newFakeRepository()
		service := newService(repo)
		created, err := service.Create(context.Background(), ownerClaims,
			1, review.WriteInput{Text: pointer.To("Original"), Score: pointer.To(7)})
		require.NoError(t, err)
		return service, created.ID
	}

	edit := review.WriteInput{Text: pointer.To("Edited")}

	t.Run("owner_can_edit", func(t *testing.T) {
		service, id := seed(t)
		updated, err := service.Update(context.Background(), ownerClaims, 1, id, edit, true)
		require.NoError(t, err)
		assert.Equal(t, "Edited", updated.Text)
		assert.Equal(t, 7, updated.Score)
	})

	t.Run("owner_can_delete", func(t *testing.T) {
		service, id := seed(t)
		assert.NoError(t, service.Delete(context.Background(), ownerClaims, 1, id))
	})

	t.Run("stranger_cannot_edit_or_delete", func(t *testing.T) {
		service, id := seed(t)
		stranger := claimsFor(uuid.New(), "boris", "user")

		_, err := service.Update(context.Background(), stranger, 1, id, edit, true)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)

		err = service.Delete(context.Background(), stranger, 1, id)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	})

	t.Run("moderator_delete_only", func(t *testing.T) {
		service, id := seed(t)
		moderator := claimsFor(uuid.New(), "mod", "moderator")

		_, err := service.Update(context.Background(), moderator, 1, id, edit, true)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)

		assert.NoError(t, service.Delete(context.Background(), moderator, 1, id))
	})

	t.Run("admin_can_edit_and_delete", func(t *testing.T) {
		service, id := seed(t)
		admin := claimsFor(uuid.New(), "root", "admin")

		_, err := service.Update(context.Background(), admin, 1, id, edit, true)
		require.NoError(t, err)

		assert.NoError(t, service.Delete(context.Background(), admin, 1, id))
	})
}

/*
TestService_Update_NoDuplicateGuard verifies editing an existing review does
not trip the uniqueness check against the author's own row.
*/
func TestService_Update_NoDuplicateGuard(t *testing.T) {
	repo := newFakeRepository()
	service := newService(repo)

	claims := claimsFor(uuid.New(), "anna", "user")
	created, err := service.Create(context.Background(), claims,
		1, review.WriteInput{Text: pointer.To("First pass"), Score: pointer.To(6)})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), claims, 1, created.ID,
		review.WriteInput{Text: pointer.To("Second pass"), Score: pointer.To(9)}, false)
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Score)
}
