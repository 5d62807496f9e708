// Package service holds the business rules of the catalog: registration and
// login, user and book management, and the like relationship between them.
package service

import (
	"context"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UserStore persists users and their password hashes.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User, passwordHash string) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsersWithBooks(ctx context.Context) ([]models.UserWithBooks, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// BookStore persists books.
type BookStore interface {
	CreateBook(ctx context.Context, book *models.Book) error
	FindBookByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, book *models.Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) error
	ListBooksWithLikes(ctx context.Context) ([]models.BookLikes, error)
}

// LikeStore persists like edges. CreateLike must be idempotent and report
// NotFound for a missing endpoint.
type LikeStore interface {
	CreateLike(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	DeleteLike(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	ListLikedBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error)
}

// Store is everything the service needs from persistence.
type Store interface {
	UserStore
	BookStore
	LikeStore
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, storedHash string) bool
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// Service handles business logic
type Service struct {
	store  Store
	hasher PasswordHasher
	tokens TokenIssuer
	log    *logrus.Logger

	// compared against when the email is unknown so that both login
	// failures cost one bcrypt comparison
	dummyHash string
}

// NewService initializes a new service
func NewService(store Store, hasher PasswordHasher, tokens TokenIssuer, log *logrus.Logger) *Service {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		log.Warnf("Failed to prepare dummy password hash: %v", err)
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, log: log, dummyHash: dummy}
}
