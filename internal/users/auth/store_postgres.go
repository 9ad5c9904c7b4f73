// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/database/schema"
	"github.com/okoshkin/revu/internal/platform/dberr"
)

// PostgresUserRepository implements UserRepository on top of pgx.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepository creates a new Postgres-backed UserRepository.
func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
FindByEmail resolves a user record by email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Matching identity record
  - error: apperr.NotFound or storage errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.UsersAccount.ID, schema.UsersAccount.Username, schema.UsersAccount.Email,
		schema.UsersAccount.Role, schema.UsersAccount.IsActive, schema.UsersAccount.IsSuperuser,
		schema.UsersAccount.CreatedAt,
		schema.UsersAccount.Table, schema.UsersAccount.Email)

	user := &User{}
	err := repository.db.QueryRow(context, query, email).Scan(
		&user.ID, &user.Username, &user.Email,
		&user.Role, &user.IsActive, &user.IsSuperuser, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "find_user_by_email")
	}
	return user, nil
}

/*
Create persists a brand new user record.

Parameters:
  - context: context.Context
  - user: *User (ID must be pre-assigned)

Returns:
  - error: apperr.Conflict on a duplicate username or email, or storage errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5, $6) RETURNING %s`,
		schema.UsersAccount.Table,
		schema.UsersAccount.ID, schema.UsersAccount.Username, schema.UsersAccount.Email,
		schema.UsersAccount.Role, schema.UsersAccount.IsActive, schema.UsersAccount.IsSuperuser,
		schema.UsersAccount.CreatedAt)

	err := repository.db.QueryRow(context, query,
		user.ID, user.Username, user.Email,
		user.Role, user.IsActive, user.IsSuperuser).
		Scan(&user.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err, "") {
			return apperr.Conflict("Username or email is already taken")
		}
		return dberr.Wrap(err, "create_user")
	}
	return nil
}
