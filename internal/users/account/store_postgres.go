// Copyright (c) 2026 Revu. All rights reserved.
// Author: d.okoshkin.dev@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/database/schema"
	"github.com/okoshkin/revu/internal/platform/dberr"
	"github.com/okoshkin/revu/pkg/pagination"
)

// PostgresRepository implements Repository on top of pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres-backed account Repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// accountColumns is the shared projection for account rows.
func accountColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		schema.UsersAccount.ID, schema.UsersAccount.Username, schema.UsersAccount.Email,
		schema.UsersAccount.FirstName, schema.UsersAccount.LastName, schema.UsersAccount.Bio,
		schema.UsersAccount.Role, schema.UsersAccount.IsActive, schema.UsersAccount.IsSuperuser,
		schema.UsersAccount.CreatedAt, schema.UsersAccount.UpdatedAt)
}

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID, &account.Username, &account.Email,
		&account.FirstName, &account.LastName, &account.Bio,
		&account.Role, &account.IsActive, &account.IsSuperuser,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

/*
List pages through the user directory, optionally filtered by a username
substring.

Parameters:
  - context: context.Context
  - search: *string (optional username substring)
  - page: pagination.Params

Returns:
  - []Account: One page of accounts ordered by username
  - int64: Total matching rows
  - error: Storage errors
*/
func (repository *PostgresRepository) List(context context.Context, search *string, page pagination.Params) ([]Account, int64, error) {
	where := ""
	args := []interface{}{}
	if search != nil {
		where = fmt.Sprintf("WHERE %s ILIKE $1", schema.UsersAccount.Username)
		args = append(args, "%"+*search+"%")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, schema.UsersAccount.Table, where)
	var total int64
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_accounts")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC LIMIT $%d OFFSET $%d`,
		accountColumns(), schema.UsersAccount.Table, where,
		schema.UsersAccount.Username, len(args)+1, len(args)+2)
	args = append(args, page.Limit(), page.Offset())

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_accounts")
	}
	defer rows.Close()

	accounts := make([]Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_account")
		}
		accounts = append(accounts, *account)
	}

	return accounts, total, nil
}

// GetByID resolves an account by primary key.
func (repository *PostgresRepository) GetByID(context context.Context, id uuid.UUID) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns(), schema.UsersAccount.Table, schema.UsersAccount.ID)

	account, err := scanAccount(repository.db.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "get_account_by_id")
	}
	return account, nil
}

// GetByUsername resolves an account by its unique username.
func (repository *PostgresRepository) GetByUsername(context context.Context, username string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns(), schema.UsersAccount.Table, schema.UsersAccount.Username)

	account, err := scanAccount(repository.db.QueryRow(context, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "get_account_by_username")
	}
	return account, nil
}

/*
Create persists an account enrolled through the directory.

Returns:
  - error: apperr.Conflict on a duplicate username or email, or storage errors
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s, %s`,
		schema.UsersAccount.Table,
		schema.UsersAccount.ID, schema.UsersAccount.Username, schema.UsersAccount.Email,
		schema.UsersAccount.FirstName, schema.UsersAccount.LastName, schema.UsersAccount.Bio,
		schema.UsersAccount.Role, schema.UsersAccount.IsActive,
		schema.UsersAccount.CreatedAt, schema.UsersAccount.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		account.ID, account.Username, account.Email,
		account.FirstName, account.LastName, account.Bio,
		account.Role, account.IsActive).
		Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err, "") {
			return apperr.Conflict("Username or email is already taken")
		}
		return dberr.Wrap(err, "create_account")
	}
	return nil
}

// Update persists every mutable profile field of the account.
func (repository *PostgresRepository) Update(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = now()
		WHERE %s = $8
		RETURNING %s`,
		schema.UsersAccount.Table,
		schema.UsersAccount.Username, schema.UsersAccount.Email,
		schema.UsersAccount.FirstName, schema.UsersAccount.LastName, schema.UsersAccount.Bio,
		schema.UsersAccount.Role, schema.UsersAccount.IsActive,
		schema.UsersAccount.UpdatedAt,
		schema.UsersAccount.ID, schema.UsersAccount.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		account.Username, account.Email,
		account.FirstName, account.LastName, account.Bio,
		account.Role, account.IsActive, account.ID).
		Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("User")
		}
		if dberr.IsUniqueViolation(err, "") {
			return apperr.Conflict("Username or email is already taken")
		}
		return dberr.Wrap(err, "update_account")
	}
	return nil
}

// DeleteByUsername removes an account. Reviews and comments authored by the
// account are removed by the cascading foreign keys.
func (repository *PostgresRepository) DeleteByUsername(context context.Context, username string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UsersAccount.Table, schema.UsersAccount.Username)

	tag, err := repository.db.Exec(context, query, username)
	if err != nil {
		return dberr.Wrap(err, "delete_account")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}
