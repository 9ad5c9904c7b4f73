// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// UserRepository is the persistence contract for identity records.
type UserRepository interface {
	// FindByEmail resolves a user by email address.
	// Returns apperr.NotFound when no account matches.
	FindByEmail(context context.Context, email string) (*User, error)

	// Create persists a brand new user.
	// Returns apperr.Conflict when the username or email is already taken.
	Create(context context.Context, user *User) error
}

// CodeRepository stores hashed confirmation codes keyed by email.
// Implementations must expire entries after the provided TTL.
type CodeRepository interface {
	Set(context context.Context, email string, codeHash string, ttl time.Duration) error
	Get(context context.Context, email string) (string, error)
	Delete(context context.Context, email string) error
}
