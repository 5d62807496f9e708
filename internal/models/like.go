package models

import (
	"time"

	"github.com/google/uuid"
)

// Like is the edge between a user and a book they like. A pair exists at most once.
type Like struct {
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}
