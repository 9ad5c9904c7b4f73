// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/internal/users/auth"
)

type fakeUserRepository struct {
	byEmail    map[string]*auth.User
	byUsername map[string]*auth.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byEmail:    make(map[string]*auth.User),
		byUsername: make(map[string]*auth.User),
	}
}

func (f *fakeUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return u, nil
}

func (f *fakeUserRepository) Create(_ context.Context, u *auth.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return apperr.Conflict("Username or email is already taken")
	}
	if _, ok := f.byUsername[u.Username]; ok {
		return apperr.Conflict("Username or email is already taken")
	}
	f.byEmail[u.Email] = u
	f.byUsername[u.Username] = u
	return nil
}

// fakeCodeRepository stores hashes in memory, ignoring TTLs.
type fakeCodeRepository struct {
	hashes map[string]string
}

func newFakeCodeRepository() *fakeCodeRepository {
	return &fakeCodeRepository{hashes: make(map[string]string)}
}

func (f *fakeCodeRepository) Set(_ context.Context, email, codeHash string, _ time.Duration) error {
	f.hashes[email] = codeHash
	return nil
}

func (f *fakeCodeRepository) Get(_ context.Context, email string) (string, error) {
	h, ok := f.hashes[email]
	if !ok {
		return "", apperr.NotFound("Confirmation code is invalid or expired")
	}
	return h, nil
}

func (f *fakeCodeRepository) Delete(_ context.Context, email string) error {
	delete(f.hashes, email)
	return nil
}

// fakeTokenProvider records the claims it was asked to sign.
type fakeTokenProvider struct {
	lastRole string
}

func (f *fakeTokenProvider) GenerateAccessToken(_, _, _, role string, _ time.Duration) (string, error) {
	f.lastRole = role
	return "signed-token", nil
}

type fixture struct {
	users   *fakeUserRepository
	codes   *fakeCodeRepository
	tokens  *fakeTokenProvider
	service *auth.Service
}

func newFixture() *fixture {
	users := newFakeUserRepository()
	codes := newFakeCodeRepository()
	tokens := &fakeTokenProvider{}
	return &fixture{
		users:   users,
		codes:   codes,
		tokens:  tokens,
		service: auth.NewService(users, codes, tokens, slog.Default()),
	}
}

// plantCode stores a known code hash for an email, bypassing RequestCode.
func plantCode(t *testing.T, f *fixture, email, code string) {
	t.Helper()
	hash, err := sec.HashCode(code)
	require.NoError(t, err)
	f.codes.hashes[email] = hash
}

/*
TestService_RequestCode_EnrollsOnFirstContact verifies an unknown email is
enrolled with a username derived from the address, and that a pending code
hash (never the plain code) ends up stored.
*/
func TestService_RequestCode_EnrollsOnFirstContact(t *testing.T) {
	f := newFixture()

	err := f.service.RequestCode(context.Background(), "anna_k@example.com")
	require.NoError(t, err)

	user, ok := f.users.byEmail["anna_k@example.com"]
	require.True(t, ok)
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, sec.RoleUser, user.Role)
	assert.True(t, user.IsActive)

	// Only a bcrypt hash is stored
	hash := f.codes.hashes["anna_k@example.com"]
	require.NotEmpty(t, hash)
	assert.NotEqual(t, sec.ConfirmationCodeLength, len(hash))
}

/*
TestService_RequestCode_UsernameCollision verifies the derived username is
suffixed when already taken.
*/
func TestService_RequestCode_UsernameCollision(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.RequestCode(context.Background(), "anna_k@example.com"))
	require.NoError(t, f.service.RequestCode(context.Background(), "anna_m@example.com"))

	assert.Equal(t, "anna", f.users.byEmail["anna_k@example.com"].Username)
	assert.Equal(t, "anna2", f.users.byEmail["anna_m@example.com"].Username)
}

/*
TestService_RequestCode_KnownEmail verifies a second request does not enroll
twice and replaces the pending code.
*/
func TestService_RequestCode_KnownEmail(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.RequestCode(context.Background(), "anna@example.com"))
	firstHash := f.codes.hashes["anna@example.com"]

	require.NoError(t, f.service.RequestCode(context.Background(), "anna@example.com"))
	secondHash := f.codes.hashes["anna@example.com"]

	assert.Len(t, f.users.byEmail, 1)
	assert.NotEqual(t, firstHash, secondHash)
}

/*
TestService_ExchangeToken covers the happy path and the single-use
consumption of the code.
*/
func TestService_ExchangeToken(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.service.RequestCode(context.Background(), "anna@example.com"))
	plantCode(t, f, "anna@example.com", "123456")

	result, err := f.service.ExchangeToken(context.Background(), "anna@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", result.AccessToken)
	assert.Equal(t, "user", f.tokens.lastRole)

	// The code was consumed; a replay fails
	_, err = f.service.ExchangeToken(context.Background(), "anna@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

/*
TestService_ExchangeToken_WrongCode verifies a mismatching code yields
Unauthorized and leaves the pending code in place.
*/
func TestService_ExchangeToken_WrongCode(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.service.RequestCode(context.Background(), "anna@example.com"))
	plantCode(t, f, "anna@example.com", "123456")

	_, err := f.service.ExchangeToken(context.Background(), "anna@example.com", "654321")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)

	// The correct code still works afterwards
	_, err = f.service.ExchangeToken(context.Background(), "anna@example.com", "123456")
	assert.NoError(t, err)
}

/*
TestService_ExchangeToken_InactiveAccount verifies disabled accounts never
receive a token even with a valid code.
*/
func TestService_ExchangeToken_InactiveAccount(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.service.RequestCode(context.Background(), "anna@example.com"))
	f.users.byEmail["anna@example.com"].IsActive = false
	plantCode(t, f, "anna@example.com", "123456")

	_, err := f.service.ExchangeToken(context.Background(), "anna@example.com", "123456")
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).HTTPStatus)
}

/*
TestService_ExchangeToken_SuperuserRoleFolding verifies a superuser is
issued the admin role claim regardless of the stored role.
*/
func TestService_ExchangeToken_SuperuserRoleFolding(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.service.RequestCode(context.Background(), "root@example.com"))
	f.users.byEmail["root@example.com"].IsSuperuser = true
	plantCode(t, f, "root@example.com", "123456")

	_, err := f.service.ExchangeToken(context.Background(), "root@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "admin", f.tokens.lastRole)
}
