package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/okoshkin/revu/pkg/pagination"
)

type Repository interface {
	ListByTitle(context context.Context, titleID int64, page pagination.Params) ([]Review, int64, error)
	GetByID(context context.Context, titleID, reviewID int64) (*Review, error)
	Exists(context context.Context, titleID, reviewID int64) (bool, error)
	ExistsByAuthorAndTitle(context context.Context, authorID uuid.UUID, titleID int64) (bool, error)

	// Create inserts the review. A violation of the (author, title)
	// uniqueness constraint is reported as the same validation failure the
	// service raises for a synchronously detected duplicate.
	Create(context context.Context, review *Review) error

	Update(context context.Context, review *Review) error
	Delete(context context.Context, titleID, reviewID int64) error

	// ScoresByTitle returns all review scores grouped by title. Titles
	// without reviews are absent from the map.
	ScoresByTitle(context context.Context, titleIDs []int64) (map[int64][]int, error)
}
