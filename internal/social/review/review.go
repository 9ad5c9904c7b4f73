package review

import (
	"time"

	"github.com/google/uuid"
)

// Review is a member's verdict on a title. Each member may hold at most one
// review per title; the pair (author, title) is unique both in the service
// layer and in the database.
type Review struct {
	ID        int64     `json:"id"`
	TitleID   int64     `json:"-"`
	AuthorID  uuid.UUID `json:"-"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
