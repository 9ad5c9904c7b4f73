package comment

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a member's reply to a review.
type Comment struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"-"`
	AuthorID  uuid.UUID `json:"-"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
