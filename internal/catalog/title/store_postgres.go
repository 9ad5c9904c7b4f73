package title

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okoshkin/revu/internal/catalog/category"
	"github.com/okoshkin/revu/internal/catalog/genre"
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

// List pages through the catalogue. The rating used for ordering is an
// aggregate subquery evaluated by the database; the rating returned to
// clients is computed by the service from the same review scores.
func (repository *PostgresRepository) List(context context.Context, filters Filters, page pagination.Params) ([]*Title, int64, error) {
	base := fmt.Sprintf(`FROM %s t LEFT JOIN %s c ON t.%s = c.%s`,
		schema.CatalogTitle.Table, schema.CatalogCategory.Table,
		schema.CatalogTitle.CategoryID, schema.CatalogCategory.ID)

	clauses := []string{}
	args := []interface{}{}

	if filters.CategorySlug != nil {
		args = append(args, *filters.CategorySlug)
		clauses = append(clauses, fmt.Sprintf("c.%s = $%d", schema.CatalogCategory.Slug, len(args)))
	}
	if filters.GenreSlug != nil {
		args = append(args, *filters.GenreSlug)
		clauses = append(clauses, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM %s tg JOIN %s g ON tg.%s = g.%s WHERE tg.%s = t.%s AND g.%s = $%d)`,
			schema.CatalogTitleGenre.Table, schema.CatalogGenre.Table,
			schema.CatalogTitleGenre.GenreID, schema.CatalogGenre.ID,
			schema.CatalogTitleGenre.TitleID, schema.CatalogTitle.ID,
			schema.CatalogGenre.Slug, len(args)))
	}
	if filters.Name != nil {
		args = append(args, "%"+*filters.Name+"%")
		clauses = append(clauses, fmt.Sprintf("t.%s ILIKE $%d", schema.CatalogTitle.Name, len(args)))
	}
	if filters.Year != nil {
		args = append(args, *filters.Year)
		clauses = append(clauses, fmt.Sprintf("t.%s = $%d", schema.CatalogTitle.Year, len(args)))
	}

	where := ""
	if len(clauses) > 0 {
		where = "WHERE " + strings.Join(clauses, " AND ")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s %s`, base, where)
	var total int64
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_titles")
	}

	query := fmt.Sprintf(`
		SELECT t.%s, t.%s, t.%s, t.%s, t.%s, t.%s,
		       c.%s, c.%s, c.%s
		%s %s
		ORDER BY (SELECT AVG(rv.%s) FROM %s rv WHERE rv.%s = t.%s) DESC NULLS LAST, t.%s ASC
		LIMIT $%d OFFSET $%d`,
		schema.CatalogTitle.ID, schema.CatalogTitle.Name, schema.CatalogTitle.Year,
		schema.CatalogTitle.Description, schema.CatalogTitle.CreatedAt, schema.CatalogTitle.UpdatedAt,
		schema.CatalogCategory.ID, schema.CatalogCategory.Name, schema.CatalogCategory.Slug,
		base, where,
		schema.SocialReview.Score, schema.SocialReview.Table,
		schema.SocialReview.TitleID, schema.CatalogTitle.ID,
		schema.CatalogTitle.Name,
		len(args)+1, len(args)+2)
	args = append(args, page.Limit(), page.Offset())

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_titles")
	}
	defer rows.Close()

	titles := make([]*Title, 0)
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, err
		}
		titles = append(titles, t)
	}
	rows.Close()

	if err := repository.loadGenres(context, titles); err != nil {
		return nil, 0, err
	}

	return titles, total, nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id int64) (*Title, error) {
	query := fmt.Sprintf(`
		SELECT t.%s, t.%s, t.%s, t.%s, t.%s, t.%s,
		       c.%s, c.%s, c.%s
		FROM %s t LEFT JOIN %s c ON t.%s = c.%s
		WHERE t.%s = $1`,
		schema.CatalogTitle.ID, schema.CatalogTitle.Name, schema.CatalogTitle.Year,
		schema.CatalogTitle.Description, schema.CatalogTitle.CreatedAt, schema.CatalogTitle.UpdatedAt,
		schema.CatalogCategory.ID, schema.CatalogCategory.Name, schema.CatalogCategory.Slug,
		schema.CatalogTitle.Table, schema.CatalogCategory.Table,
		schema.CatalogTitle.CategoryID, schema.CatalogCategory.ID,
		schema.CatalogTitle.ID)

	rows, err := repository.db.Query(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "get_title_by_id")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dberr.Wrap(err, "get_title_by_id")
		}
		return nil, apperr.NotFound("Title")
	}

	t, err := scanTitle(rows)
	if err != nil {
		return nil, err
	}
	rows.Close()

	if err := repository.loadGenres(context, []*Title{t}); err != nil {
		return nil, err
	}
	return t, nil
}

func (repository *PostgresRepository) Exists(context context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)`,
		schema.CatalogTitle.Table, schema.CatalogTitle.ID)

	var exists bool
	if err := repository.db.QueryRow(context, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "title_exists")
	}
	return exists, nil
}

func (repository *PostgresRepository) Create(context context.Context, title *Title, genreIDs []int) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_title")
	}
	defer tx.Rollback(context)

	var categoryID *int
	if title.Category != nil {
		categoryID = &title.Category.ID
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) RETURNING %s, %s, %s`,
		schema.CatalogTitle.Table,
		schema.CatalogTitle.Name, schema.CatalogTitle.Year, schema.CatalogTitle.Description, schema.CatalogTitle.CategoryID,
		schema.CatalogTitle.ID, schema.CatalogTitle.CreatedAt, schema.CatalogTitle.UpdatedAt)

	err = tx.QueryRow(context, query, title.Name, title.Year, title.Description, categoryID).
		Scan(&title.ID, &title.CreatedAt, &title.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_title")
	}

	if err := insertGenreLinks(context, tx, title.ID, genreIDs); err != nil {
		return err
	}

	return tx.Commit(context)
}

func (repository *PostgresRepository) Update(context context.Context, title *Title, genreIDs []int) error {
	tx, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_update_title")
	}
	defer tx.Rollback(context)

	var categoryID *int
	if title.Category != nil {
		categoryID = &title.Category.ID
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3, %s = $4, %s = now() WHERE %s = $5 RETURNING %s`,
		schema.CatalogTitle.Table,
		schema.CatalogTitle.Name, schema.CatalogTitle.Year, schema.CatalogTitle.Description, schema.CatalogTitle.CategoryID,
		schema.CatalogTitle.UpdatedAt, schema.CatalogTitle.ID, schema.CatalogTitle.UpdatedAt)

	err = tx.QueryRow(context, query, title.Name, title.Year, title.Description, categoryID, title.ID).
		Scan(&title.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFound("Title")
		}
		return dberr.Wrap(err, "update_title")
	}

	unlink := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogTitleGenre.Table, schema.CatalogTitleGenre.TitleID)
	if _, err := tx.Exec(context, unlink, title.ID); err != nil {
		return dberr.Wrap(err, "unlink_title_genres")
	}

	if err := insertGenreLinks(context, tx, title.ID, genreIDs); err != nil {
		return err
	}

	return tx.Commit(context)
}

func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.CatalogTitle.Table, schema.CatalogTitle.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_title")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Title")
	}
	return nil
}

// loadGenres populates the Genres slice for each title in a single query.
func (repository *PostgresRepository) loadGenres(context context.Context, titles []*Title) error {
	if len(titles) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(titles))
	byID := make(map[int64]*Title, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
		byID[t.ID] = t
	}

	query := fmt.Sprintf(`
		SELECT tg.%s, g.%s, g.%s, g.%s
		FROM %s tg JOIN %s g ON tg.%s = g.%s
		WHERE tg.%s = ANY($1)
		ORDER BY g.%s ASC`,
		schema.CatalogTitleGenre.TitleID,
		schema.CatalogGenre.ID, schema.CatalogGenre.Name, schema.CatalogGenre.Slug,
		schema.CatalogTitleGenre.Table, schema.CatalogGenre.Table,
		schema.CatalogTitleGenre.GenreID, schema.CatalogGenre.ID,
		schema.CatalogTitleGenre.TitleID,
		schema.CatalogGenre.Name)

	rows, err := repository.db.Query(context, query, ids)
	if err != nil {
		return dberr.Wrap(err, "load_title_genres")
	}
	defer rows.Close()

	for rows.Next() {
		var titleID int64
		g := genre.Genre{}
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return dberr.Wrap(err, "scan_title_genre")
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	return nil
}

func insertGenreLinks(context context.Context, tx pgx.Tx, titleID int64, genreIDs []int) error {
	link := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.CatalogTitleGenre.Table,
		schema.CatalogTitleGenre.TitleID, schema.CatalogTitleGenre.GenreID)

	for _, genreID := range genreIDs {
		if _, err := tx.Exec(context, link, titleID, genreID); err != nil {
			return dberr.Wrap(err, "link_title_genre")
		}
	}
	return nil
}

// scanTitle reads one joined title row. Category columns come from a LEFT
// JOIN and may all be NULL.
func scanTitle(rows pgx.Rows) (*Title, error) {
	t := &Title{Genres: make([]genre.Genre, 0)}
	var catID *int
	var catName, catSlug *string

	err := rows.Scan(
		&t.ID, &t.Name, &t.Year, &t.Description, &t.CreatedAt, &t.UpdatedAt,
		&catID, &catName, &catSlug,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "scan_title")
	}

	if catID != nil {
		t.Category = &category.Category{ID: *catID, Name: *catName, Slug: *catSlug}
	}
	return t, nil
}
