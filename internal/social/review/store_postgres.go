package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoshkin/revu/internal/platform/apperr"
	"github.com/okoshkin/revu/internal/platform/database/schema"
	"github.com/okoshkin/revu/internal/platform/dberr"
	"github.com/okoshkin/revu/pkg/pagination"
)

// ErrDuplicateReview is the client-facing message for a second review on the
// same title, whether caught synchronously or by the unique constraint.
const ErrDuplicateReview = "You can write only one review per title"

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) ListByTitle(context context.Context, titleID int64, page pagination.Params) ([]Review, int64, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.SocialReview.Table, schema.SocialReview.TitleID)
	var total int64
	if err := repository.db.QueryRow(context, countQuery, titleID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_reviews")
	}

	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, a.%s, r.%s, r.%s, r.%s
		FROM %s r JOIN %s a ON r.%s = a.%s
		WHERE r.%s = $1
		ORDER BY r.%s DESC
		LIMIT $2 OFFSET $3`,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
		schema.UsersAccount.Username, schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.CreatedAt,
		schema.SocialReview.Table, schema.UsersAccount.Table,
		schema.SocialReview.AuthorID, schema.UsersAccount.ID,
		schema.SocialReview.TitleID,
		schema.SocialReview.CreatedAt)

	rows, err := repository.db.Query(context, query, titleID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reviews")
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		r := Review{}
		if err := rows.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.CreatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_review")
		}
		reviews = append(reviews, r)
	}

	return reviews, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, titleID, reviewID int64) (*Review, error) {
	query := fmt.Sprintf(`
		SELECT r.%s, r.%s, r.%s, a.%s, r.%s, r.%s, r.%s
		FROM %s r JOIN %s a ON r.%s = a.%s
		WHERE r.%s = $1 AND r.%s = $2`,
		schema.SocialReview.ID, schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
		schema.UsersAccount.Username, schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.CreatedAt,
		schema.SocialReview.Table, schema.UsersAccount.Table,
		schema.SocialReview.AuthorID, schema.UsersAccount.ID,
		schema.SocialReview.ID, schema.SocialReview.TitleID)

	r := &Review{}
	err := repository.db.QueryRow(context, query, reviewID, titleID).
		Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Review")
		}
		return nil, dberr.Wrap(err, "get_review_by_id")
	}
	return r, nil
}

func (repository *PostgresRepository) Exists(context context.Context, titleID, reviewID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.SocialReview.Table, schema.SocialReview.ID, schema.SocialReview.TitleID)

	var exists bool
	if err := repository.db.QueryRow(context, query, reviewID, titleID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "review_exists")
	}
	return exists, nil
}

func (repository *PostgresRepository) ExistsByAuthorAndTitle(context context.Context, authorID uuid.UUID, titleID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.SocialReview.Table, schema.SocialReview.AuthorID, schema.SocialReview.TitleID)

	var exists bool
	if err := repository.db.QueryRow(context, query, authorID, titleID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "review_exists_by_author_and_title")
	}
	return exists, nil
}

func (repository *PostgresRepository) Create(context context.Context, review *Review) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) RETURNING %s, %s`,
		schema.SocialReview.Table,
		schema.SocialReview.TitleID, schema.SocialReview.AuthorID,
		schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.ID, schema.SocialReview.CreatedAt)

	err := repository.db.QueryRow(context, query,
		review.TitleID, review.AuthorID, review.Text, review.Score).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		// Two requests racing past the synchronous duplicate check land
		// here; the loser gets the exact same client-facing failure.
		if dberr.IsUniqueViolation(err, schema.SocialReview.UniqueAuthorTitle) {
			return apperr.ValidationError(ErrDuplicateReview)
		}
		return dberr.Wrap(err, "create_review")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, review *Review) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4`,
		schema.SocialReview.Table,
		schema.SocialReview.Text, schema.SocialReview.Score,
		schema.SocialReview.ID, schema.SocialReview.TitleID)

	tag, err := repository.db.Exec(context, query, review.Text, review.Score, review.ID, review.TitleID)
	if err != nil {
		return dberr.Wrap(err, "update_review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, titleID, reviewID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.SocialReview.Table, schema.SocialReview.ID, schema.SocialReview.TitleID)

	tag, err := repository.db.Exec(context, query, reviewID, titleID)
	if err != nil {
		return dberr.Wrap(err, "delete_review")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Review")
	}
	return nil
}

func (repository *PostgresRepository) ScoresByTitle(context context.Context, titleIDs []int64) (map[int64][]int, error) {
	scores := make(map[int64][]int, len(titleIDs))
	if len(titleIDs) == 0 {
		return scores, nil
	}

	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1)`,
		schema.SocialReview.TitleID, schema.SocialReview.Score,
		schema.SocialReview.Table, schema.SocialReview.TitleID)

	rows, err := repository.db.Query(context, query, titleIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "scores_by_title")
	}
	defer rows.Close()

	for rows.Next() {
		var titleID int64
		var score int
		if err := rows.Scan(&titleID, &score); err != nil {
			return nil, dberr.Wrap(err, "scan_score")
		}
		scores[titleID] = append(scores[titleID], score)
	}

	return scores, nil
}
