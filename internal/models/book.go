package models

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog entry
type Book struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Author      string     `json:"author"`
	Description string     `json:"description"`
	Rating      int        `json:"rating"`
	Price       float64    `json:"price"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BookLikes pairs a book with the number of users that like it.
type BookLikes struct {
	Book
	Likes int `json:"likes"`
}
