// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

/*
Package auth implements passwordless, email-code authentication.

A member requests a sign-in code for their email address; the service
creates the account on first contact, emails a short confirmation code, and
stores only a bcrypt hash of it in Redis with a TTL. Exchanging a valid
(email, code) pair yields an RSA-signed JWT access token.

Architecture:

  - Service: Orchestrates the request-code and exchange-token flows.
  - Repository: Abstracted interfaces for Postgres (Users) and Redis (Codes).
  - Security: Bcrypt-hashed codes and RSA-signed JWTs.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/constants"
	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/internal/platform/validate"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username, email, role string, timeToLive time.Duration) (string, error)
}

// usernameAttempts bounds the suffix loop when a derived username collides
// with an existing account.
const usernameAttempts = 10

// Service implements the passwordless authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to code hashing or
// token issuance must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	codeRepository CodeRepository
	tokenProvider  TokenProvider
	logger         *slog.Logger
}

// NewService constructs a new auth [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	codeRepo CodeRepository,
	tokenProv TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		codeRepository: codeRepo,
		tokenProvider:  tokenProv,
		logger:         logger,
	}
}

// # Request-Code Flow

/*
RequestCode enrolls the email if it is unknown and issues a confirmation code.

Description: The account is created on first contact with a username derived
from the email address. Only the bcrypt hash of the code is persisted; the
plain code travels by email alone.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - error: Validation or storage errors
*/
func (service *Service) RequestCode(context context.Context, email string) error {

	// Validate the email shape before touching storage
	v := &validate.Validator{}
	v.Required("email", email).Email("email", email).MaxLen("email", email, 254)
	if err := v.Err(); err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	// Resolve or enroll the account
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		appError := apperr.As(err)
		if appError == nil || appError.HTTPStatus != 404 {
			return err
		}
		user, err = service.enroll(context, email)
		if err != nil {
			return err
		}
	}

	// Generate the confirmation code
	code, err := sec.GenerateConfirmationCode()
	if err != nil {
		return fmt.Errorf("auth_service_code_generation_failed: %w", err)
	}

	// Prevent storing the plain code. Default bcrypt cost keeps the exchange
	// endpoint responsive under load.
	codeHash, err := sec.HashCode(code)
	if err != nil {
		return fmt.Errorf("auth_service_code_hash_failed: %w", err)
	}

	// Store the hash with a TTL; a new request replaces any pending code
	if err := service.codeRepository.Set(context, email, codeHash, constants.ConfirmationCodeTTL); err != nil {
		return err
	}

	// TODO: hand the code to the mailer once the delivery service is deployed
	service.logger.InfoContext(context, "confirmation_code_issued",
		slog.String("user_id", user.ID.String()))

	return nil
}

// # Exchange Flow

// TokenResult carries the issued access token and the authenticated user.
type TokenResult struct {
	AccessToken string `json:"token"`
	User        *User  `json:"user"`
}

/*
ExchangeToken verifies an (email, code) pair and issues an access token.

Description: The stored hash is consumed on success so a code can be
redeemed at most once. Inactive accounts can request codes but never
receive a token.

Parameters:
  - context: context.Context
  - email: string
  - code: string

Returns:
  - *TokenResult: Signed access token and user
  - error: Unauthorized on a bad or expired code, Forbidden for disabled accounts
*/
func (service *Service) ExchangeToken(context context.Context, email, code string) (*TokenResult, error) {

	// Validate inputs
	v := &validate.Validator{}
	v.Required("email", email).Email("email", email)
	v.Required("confirmation_code", code)
	if err := v.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	// The account must exist before any code comparison
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, err
	}

	// Fetch the pending hash; absence means expired or never requested
	codeHash, err := service.codeRepository.Get(context, email)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, apperr.Unauthorized("Confirmation code is invalid or expired")
		}
		return nil, err
	}

	// Constant-time comparison through bcrypt
	if !sec.CheckCodeHash(code, codeHash) {
		return nil, apperr.Unauthorized("Confirmation code is invalid or expired")
	}

	// Consume the code so it cannot be replayed
	if err := service.codeRepository.Delete(context, email); err != nil {
		return nil, err
	}

	// Disabled accounts never receive a token
	if !user.IsActive {
		return nil, apperr.Forbidden("This account has been disabled")
	}

	// Issue the access token with the folded role claim
	token, err := service.tokenProvider.GenerateAccessToken(
		user.ID.String(), user.Username, user.Email,
		string(user.EffectiveRole()), constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_signing_failed: %w", err)
	}

	service.logger.InfoContext(context, "access_token_issued",
		slog.String("user_id", user.ID.String()))

	return &TokenResult{AccessToken: token, User: user}, nil
}

// enroll creates a fresh account for an unknown email. The username is the
// part of the address before the first underscore, disambiguated with a
// numeric suffix when taken.
func (service *Service) enroll(context context.Context, email string) (*User, error) {
	base := strings.Split(email, "_")[0]

	for i := 1; i <= usernameAttempts; i++ {
		username := base
		if i > 1 {
			username = fmt.Sprintf("%s%d", base, i)
		}

		// Time-sortable ID to prevent index fragmentation
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("auth_service_id_generation_failed: %w", err)
		}

		user := &User{
			ID:       id,
			Username: username,
			Email:    email,
			Role:     sec.RoleUser,
			IsActive: true,
		}

		err = service.userRepository.Create(context, user)
		if err == nil {
			service.logger.InfoContext(context, "user_enrolled",
				slog.String("user_id", user.ID.String()))
			return user, nil
		}

		appError := apperr.As(err)
		if appError == nil || appError.HTTPStatus != 409 {
			return nil, err
		}
		// Username collision: retry with the next suffix
	}

	return nil, apperr.Conflict("Could not derive a free username for this email")
}
