package models

import "time"

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login; the token is also set as a cookie.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// UpdateUserRequest is the JSON body for PUT /api/users/{id}.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Role     *Role   `json:"role" validate:"omitempty,oneof=standard elevated"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
}

// BookRequest is the JSON body for POST /api/books and PUT /api/books/{id}.
type BookRequest struct {
	Title       string     `json:"title" validate:"required,min=3,max=100"`
	Author      string     `json:"author" validate:"required,min=3,max=100"`
	Description string     `json:"description" validate:"max=1000"`
	Rating      int        `json:"rating" validate:"gte=0,lte=5"`
	Price       float64    `json:"price" validate:"gte=0"`
	PublishedAt *time.Time `json:"published_at"`
}

// ToBook copies the request fields onto a Book.
func (r BookRequest) ToBook() Book {
	return Book{
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
		Rating:      r.Rating,
		Price:       r.Price,
		PublishedAt: r.PublishedAt,
	}
}

// LikeRequest is the JSON body for POST and DELETE /api/books/like. UserID
// defaults to the authenticated user.
type LikeRequest struct {
	BookID string `json:"bookId" validate:"required,uuid"`
	UserID string `json:"userId" validate:"omitempty,uuid"`
}

// SuccessResponse is returned by mutations that have no other payload.
type SuccessResponse struct {
	Success bool `json:"success"`
}
