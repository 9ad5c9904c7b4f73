// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/policy"
	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/internal/platform/validate"
	"github.com/okoshkin/revu/pkg/pagination"
)

// reservedUsernames can never be assigned because they collide with routes.
var reservedUsernames = map[string]bool{"me": true}

// CreateInput is the payload for enrolling an account through the directory.
type CreateInput struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// UpdateInput is the directory's partial-update payload.
type UpdateInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// SelfUpdateInput is the payload for editing one's own profile. There is no
// role field here: a member's role can only be changed through the
// directory, and a role supplied by the client is dropped on decode.
type SelfUpdateInput struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

// Service implements profile management use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new account [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Administrative Directory

/*
List pages through the user directory.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims
  - search: *string (optional username substring)
  - page: pagination.Params

Returns:
  - []Account: One page of accounts
  - int64: Total matching rows
  - error: Forbidden for non-admins, or storage errors
*/
func (service *Service) List(context context.Context, claims *sec.AuthClaims, search *string, page pagination.Params) ([]Account, int64, error) {
	if err := requireDirectoryAccess(claims, policy.ActionList); err != nil {
		return nil, 0, err
	}
	return service.repo.List(context, search, page)
}

// Get resolves one account by username. Admin only, like every directory read.
func (service *Service) Get(context context.Context, claims *sec.AuthClaims, username string) (*Account, error) {
	if err := requireDirectoryAccess(claims, policy.ActionRetrieve); err != nil {
		return nil, err
	}
	return service.repo.GetByUsername(context, username)
}

/*
Create enrolls an account through the directory.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims
  - input: CreateInput

Returns:
  - *Account: Created account
  - error: Forbidden, validation failures, or Conflict on duplicates
*/
func (service *Service) Create(context context.Context, claims *sec.AuthClaims, input CreateInput) (*Account, error) {
	if err := requireDirectoryAccess(claims, policy.ActionCreate); err != nil {
		return nil, err
	}

	// Validate the payload
	role := string(sec.RoleUser)
	if input.Role != nil {
		role = *input.Role
	}
	v := &validate.Validator{}
	v.Required("username", input.Username).MaxLen("username", input.Username, 150)
	v.Custom("username", reservedUsernames[input.Username], "This username is reserved")
	v.Required("email", input.Email).Email("email", input.Email).MaxLen("email", input.Email, 254)
	v.OneOf("role", role, sec.RoleNames()...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// Time-sortable ID to prevent index fragmentation
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("account_service_id_generation_failed: %w", err)
	}

	account := &Account{
		ID:        id,
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
		Role:      sec.UserRole(role),
		IsActive:  true,
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}

	if err := service.repo.Create(context, account); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "account_enrolled",
		slog.String("account_id", account.ID.String()),
		slog.String("role", string(account.Role)))
	return account, nil
}

/*
Update applies a partial edit to an account through the directory. Admins
may change any profile field including role and active state.
*/
func (service *Service) Update(context context.Context, claims *sec.AuthClaims, username string, input UpdateInput) (*Account, error) {
	if err := requireDirectoryAccess(claims, policy.ActionPartialUpdate); err != nil {
		return nil, err
	}

	account, err := service.repo.GetByUsername(context, username)
	if err != nil {
		return nil, err
	}

	applyProfileFields(account, input.Username, input.Email, input.FirstName, input.LastName, input.Bio)
	if input.Role != nil {
		account.Role = sec.UserRole(*input.Role)
	}
	if input.IsActive != nil {
		account.IsActive = *input.IsActive
	}

	if err := service.validateProfile(account); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes an account through the directory.
func (service *Service) Delete(context context.Context, claims *sec.AuthClaims, username string) error {
	if err := requireDirectoryAccess(claims, policy.ActionDelete); err != nil {
		return err
	}
	return service.repo.DeleteByUsername(context, username)
}

// # Self Profile

// Me returns the caller's own profile.
func (service *Service) Me(context context.Context, claims *sec.AuthClaims) (*Account, error) {
	id, err := requireSelfAccess(claims, policy.ActionRetrieve)
	if err != nil {
		return nil, err
	}
	return service.repo.GetByID(context, id)
}

/*
UpdateMe applies a partial edit to the caller's own profile.

Description: The caller's role is read back from storage and written back
unchanged, so a self-edit can never escalate (or drop) privileges no matter
what the payload carried.
*/
func (service *Service) UpdateMe(context context.Context, claims *sec.AuthClaims, input SelfUpdateInput) (*Account, error) {
	id, err := requireSelfAccess(claims, policy.ActionPartialUpdate)
	if err != nil {
		return nil, err
	}

	account, err := service.repo.GetByID(context, id)
	if err != nil {
		return nil, err
	}

	// Force-preserve role and active state across the self-edit
	role := account.Role
	isActive := account.IsActive

	applyProfileFields(account, input.Username, input.Email, input.FirstName, input.LastName, input.Bio)
	account.Role = role
	account.IsActive = isActive

	if err := service.validateProfile(account); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, account); err != nil {
		return nil, err
	}
	return account, nil
}

// # Helpers

// requireDirectoryAccess gates every directory action, reads included.
func requireDirectoryAccess(claims *sec.AuthClaims, action policy.Action) error {
	caps := policy.CapabilitiesFromClaims(claims)
	if !policy.Decide(caps, action, policy.ResourceUserAdmin, policy.OwnershipUnknown).Allowed() {
		return apperr.Forbidden("Only administrators can access the user directory")
	}
	return nil
}

// requireSelfAccess gates the self-profile surface and resolves the caller's ID.
func requireSelfAccess(claims *sec.AuthClaims, action policy.Action) (uuid.UUID, error) {
	caps := policy.CapabilitiesFromClaims(claims)
	if !policy.Decide(caps, action, policy.ResourceSelf, policy.OwnershipOwner).Allowed() {
		return uuid.Nil, apperr.Unauthorized("Authentication required")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperr.Unauthorized("Invalid token subject")
	}
	return id, nil
}

func applyProfileFields(account *Account, username, email, firstName, lastName, bio *string) {
	if username != nil {
		account.Username = *username
	}
	if email != nil {
		account.Email = *email
	}
	if firstName != nil {
		account.FirstName = firstName
	}
	if lastName != nil {
		account.LastName = lastName
	}
	if bio != nil {
		account.Bio = bio
	}
}

func (service *Service) validateProfile(account *Account) error {
	v := &validate.Validator{}
	v.Required("username", account.Username).MaxLen("username", account.Username, 150)
	v.Custom("username", reservedUsernames[account.Username], "This username is reserved")
	v.Required("email", account.Email).Email("email", account.Email).MaxLen("email", account.Email, 254)
	v.OneOf("role", string(account.Role), sec.RoleNames()...)
	return v.Err()
}
