package comment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/database/schema"
	"github.com/okoshkin/revu/internal/platform/dberr"
	"github.com/okoshkin/revu/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListByReview(context context.Context, reviewID int64, page pagination.Params) ([]Comment, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.SocialComment.Table, schema.SocialComment.ReviewID)
	var total int64
	if err := repository.db.QueryRow(context, countQuery, reviewID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_comments")
	}

	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, a.%s, c.%s, c.%s
		FROM %s c JOIN %s a ON c.%s = a.%s
		WHERE c.%s = $1
		ORDER BY c.%s ASC
		LIMIT $2 OFFSET $3`,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID,
		schema.UsersAccount.Username, schema.SocialComment.Text, schema.SocialComment.CreatedAt,
		schema.SocialComment.Table, schema.UsersAccount.Table,
		schema.SocialComment.AuthorID, schema.UsersAccount.ID,
		schema.SocialComment.ReviewID,
		schema.SocialComment.CreatedAt)

	rows, err := repository.db.Query(context, query, reviewID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_comments")
	}
	defer rows.Close()

	comments := make([]Comment, 0)
	for rows.Next() {
		c := Comment{}
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_comment")
		}
		comments = append(comments, c)
	}

	return comments, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, reviewID, commentID int64) (*Comment, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, a.%s, c.%s, c.%s
		FROM %s c JOIN %s a ON c.%s = a.%s
		WHERE c.%s = $1 AND c.%s = $2`,
		schema.SocialComment.ID, schema.SocialComment.ReviewID, schema.SocialComment.AuthorID,
		schema.UsersAccount.Username, schema.SocialComment.Text, schema.SocialComment.CreatedAt,
		schema.SocialComment.Table, schema.UsersAccount.Table,
		schema.SocialComment.AuthorID, schema.UsersAccount.ID,
		schema.SocialComment.ID, schema.SocialComment.ReviewID)

	c := &Comment{}
	err := repository.db.QueryRow(context, query, commentID, reviewID).
		Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Comment")
		}
		return nil, dberr.Wrap(err, "get_comment_by_id")
	}
	return c, nil
}

func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) RETURNING %s, %s`,
		schema.SocialComment.Table,
		schema.SocialComment.ReviewID, schema.SocialComment.AuthorID, schema.SocialComment.Text,
		schema.SocialComment.ID, schema.SocialComment.CreatedAt)

	err := repository.db.QueryRow(context, query,
		comment.ReviewID, comment.AuthorID, comment.Text).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_comment")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s = $3`,
		schema.SocialComment.Table,
		schema.SocialComment.Text, schema.SocialComment.ID, schema.SocialComment.ReviewID)

	tag, err := repository.db.Exec(context, query, comment.Text, comment.ID, comment.ReviewID)
	if err != nil {
		return dberr.Wrap(err, "update_comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, reviewID, commentID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialComment.Table, schema.SocialComment.ID, schema.SocialComment.ReviewID)

	tag, err := repository.db.Exec(context, query, commentID, reviewID)
	if err != nil {
		return dberr.Wrap(err, "delete_comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}
