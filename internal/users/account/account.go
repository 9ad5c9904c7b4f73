// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

/*
Package account implements user-profile management.

It covers two surfaces that share one table: the administrative user
directory (list, enroll, inspect, edit, remove accounts; admin only, reads
included) and the self-profile endpoint every authenticated member may use.
Self-edits can never change the member's own role.
*/
package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okoshkin/revu/internal/platform/sec"
	"github.com/okoshkin/revu/pkg/pagination"
)

// Account is the user profile as managed through the directory.
type Account struct {
	ID          uuid.UUID    `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   *string      `json:"first_name"`
	LastName    *string      `json:"last_name"`
	Bio         *string      `json:"bio"`
	Role        sec.UserRole `json:"role"`
	IsActive    bool         `json:"is_active"`
	IsSuperuser bool         `json:"-"`
	CreatedAt   time.Time    `json:"-"`
	UpdatedAt   time.Time    `json:"-"`
}

// Repository is the persistence contract for profile management.
type Repository interface {
	List(context context.Context, search *string, page pagination.Params) ([]Account, int64, error)
	GetByID(context context.Context, id uuid.UUID) (*Account, error)
	GetByUsername(context context.Context, username string) (*Account, error)
	Create(context context.Context, account *Account) error
	Update(context context.Context, account *Account) error
	DeleteByUsername(context context.Context, username string) error
}
