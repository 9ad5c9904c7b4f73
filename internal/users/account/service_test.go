// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package account_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/internal/users/account"
	"github.com/okoshkin/revu/pkg/pagination"
	"github.com/okoshkin/revu/pkg/pointer"
)

type fakeRepository struct {
	byID map[uuid.UUID]*account.Account
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byID: make(map[uuid.UUID]*account.Account)}
}

func (f *fakeRepository) List(_ context.Context, _ *string, _ pagination.Params) ([]account.Account, int64, error) {
	out := []account.Account{}
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *a
	return &clone, nil
}

func (f *fakeRepository) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	for _, a := range f.byID {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeRepository) Create(_ context.Context, a *account.Account) error {
	clone := *a
	f.byID[a.ID] = &clone
	return nil
}

func (f *fakeRepository) Update(_ context.Context, a *account.Account) error {
	if _, ok := f.byID[a.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *a
	f.byID[a.ID] = &clone
	return nil
}

func (f *fakeRepository) DeleteByUsername(_ context.Context, username string) error {
	for id, a := range f.byID {
		if a.Username == username {
			delete(f.byID, id)
			return nil
		}
	}
	return apperr.NotFound("User")
}

func seedAccount(repo *fakeRepository, username string, role sec.UserRole) *account.Account {
	id, _ := uuid.NewV7()
	a := &account.Account{
		ID:       id,
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
		IsActive: true,
	}
	repo.byID[id] = a
	return a
}

func claimsOf(a *account.Account) *sec.AuthClaims {
	return &sec.AuthClaims{
		UserID:   a.ID.String(),
		Username: a.Username,
		Email:    a.Email,
		Role:     string(a.Role),
	}
}

/*
TestService_UpdateMe_PreservesRole verifies a self-edit can never change the
caller's role, whatever the payload carried before decoding.
*/
func TestService_UpdateMe_PreservesRole(t *testing.T) {
	repo := newFakeRepository()
	service := account.NewService(repo, slog.Default())

	member := seedAccount(repo, "anna", sec.RoleUser)

	updated, err := service.UpdateMe(context.Background(), claimsOf(member), account.SelfUpdateInput{
		Bio: pointer.To("Reviewer of obscure cinema"),
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, updated.Role)
	require.NotNil(t, updated.Bio)

	// The stored row kept the role too
	stored, err := repo.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, stored.Role)
}

/*
TestService_Directory_AdminOnly verifies every directory action, reads
included, is closed to non-admins.
*/
func TestService_Directory_AdminOnly(t *testing.T) {
	repo := newFakeRepository()
	service := account.NewService(repo, slog.Default())

	member := seedAccount(repo, "anna", sec.RoleUser)
	moderator := seedAccount(repo, "mod", sec.RoleModerator)
	admin := seedAccount(repo, "root", sec.RoleAdmin)

	page := pagination.Params{Page: 1, PerPage: 20}

	for _, caller := range []*account.Account{member, moderator} {
		_, _, err := service.List(context.Background(), claimsOf(caller), nil, page)
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)

		_, err = service.Get(context.Background(), claimsOf(caller), "anna")
		require.Error(t, err)
		assert.Equal(t, 403, apperr.As(err).HTTPStatus)
	}

	// Anonymous is denied as well
	_, _, err := service.List(context.Background(), nil, nil, page)
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)

	// Admin passes
	_, _, err = service.List(context.Background(), claimsOf(admin), nil, page)
	assert.NoError(t, err)
}

/*
TestService_Directory_RoleChanges verifies admins can promote and demote
through the directory.
*/
func TestService_Directory_RoleChanges(t *testing.T) {
	repo := newFakeRepository()
	service := account.NewService(repo, slog.Default())

	member := seedAccount(repo, "anna", sec.RoleUser)
	admin := seedAccount(repo, "root", sec.RoleAdmin)

	updated, err := service.Update(context.Background(), claimsOf(admin), "anna", account.UpdateInput{
		Role: pointer.To("moderator"),
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, updated.Role)

	stored, err := repo.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, sec.RoleModerator, stored.Role)

	// Unknown roles are rejected
	_, err = service.Update(context.Background(), claimsOf(admin), "anna", account.UpdateInput{
		Role: pointer.To("emperor"),
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Create_ReservedUsername verifies the route-colliding username
"me" can never be assigned.
*/
func TestService_Create_ReservedUsername(t *testing.T) {
	repo := newFakeRepository()
	service := account.NewService(repo, slog.Default())

	admin := seedAccount(repo, "root", sec.RoleAdmin)

	_, err := service.Create(context.Background(), claimsOf(admin), account.CreateInput{
		Username: "me",
		Email:    "me@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Me verifies the self-profile surface requires authentication
and resolves the caller by token subject.
*/
func TestService_Me(t *testing.T) {
	repo := newFakeRepository()
	service := account.NewService(repo, slog.Default())

	member := seedAccount(repo, "anna", sec.RoleUser)

	got, err := service.Me(context.Background(), claimsOf(member))
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)

	_, err = service.Me(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}
