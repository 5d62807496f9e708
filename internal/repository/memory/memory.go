// Package memory is an in-process implementation of the catalog store. It
// enforces the same constraints as the postgres schema: unique emails, one
// like per user and book, likes only between existing rows, and cascading
// deletes. It backs tests and STORAGE=memory runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

type likeKey struct {
	userID uuid.UUID
	bookID uuid.UUID
}

// Store keeps users, passwords, books and likes in maps guarded by one mutex.
type Store struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]models.User
	passwords map[uuid.UUID]string
	books     map[uuid.UUID]models.Book
	likes     map[likeKey]models.Like

	userOrder []uuid.UUID
	bookOrder []uuid.UUID

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:     make(map[uuid.UUID]models.User),
		passwords: make(map[uuid.UUID]string),
		books:     make(map[uuid.UUID]models.Book),
		likes:     make(map[likeKey]models.Like),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// CreateUser stores the user and its password hash.
func (s *Store) CreateUser(_ context.Context, user *models.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleStandard
	}
	if _, ok := s.users[user.ID]; ok || s.emailTaken(user.Email, uuid.Nil) {
		return common.Conflict("user")
	}

	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.PasswordHash = ""
	s.users[user.ID] = stored
	s.passwords[user.ID] = passwordHash
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

// FindUserByID returns the user without its password hash.
func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.NotFound("user")
	}
	return &u, nil
}

// FindUserByEmail returns the user with its password hash.
func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, u := range s.users {
		if u.Email == email {
			u.PasswordHash = s.passwords[id]
			return &u, nil
		}
	}
	return nil, common.NotFound("user")
}

// ListUsersByRole returns the users holding role in creation order.
func (s *Store) ListUsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := []models.User{}
	for _, id := range s.userOrder {
		if u := s.users[id]; u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

// ListUsersWithBooks returns every user with the books they like.
func (s *Store) ListUsersWithBooks(_ context.Context) ([]models.UserWithBooks, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.UserWithBooks, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, models.UserWithBooks{User: s.users[id], Books: s.likedBooksLocked(id)})
	}
	return out, nil
}

// UpdateUser applies the non-nil fields of upd.
func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.NotFound("user")
	}
	if upd.Email != nil {
		if s.emailTaken(*upd.Email, id) {
			return nil, common.Conflict("user")
		}
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.PasswordHash != nil {
		s.passwords[id] = *upd.PasswordHash
	}
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}

// DeleteUser removes the user, its password and its likes.
func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return common.NotFound("user")
	}
	delete(s.users, id)
	delete(s.passwords, id)
	for k := range s.likes {
		if k.userID == id {
			delete(s.likes, k)
		}
	}
	s.userOrder = removeID(s.userOrder, id)
	return nil
}

// HasPassword reports whether a password row exists for the user.
func (s *Store) HasPassword(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.passwords[id]
	return ok
}

// CreateBook stores a book.
func (s *Store) CreateBook(_ context.Context, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	if _, ok := s.books[book.ID]; ok {
		return common.Conflict("book")
	}
	now := s.now()
	book.CreatedAt, book.UpdatedAt = now, now
	s.books[book.ID] = *book
	s.bookOrder = append(s.bookOrder, book.ID)
	return nil
}

// FindBookByID returns a book.
func (s *Store) FindBookByID(_ context.Context, id uuid.UUID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, common.NotFound("book")
	}
	return &b, nil
}

// ListBooks returns all books in creation order.
func (s *Store) ListBooks(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]models.Book, 0, len(s.bookOrder))
	for _, id := range s.bookOrder {
		books = append(books, s.books[id])
	}
	return books, nil
}

// UpdateBook overwrites the descriptive fields of a book.
func (s *Store) UpdateBook(_ context.Context, id uuid.UUID, book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.books[id]
	if !ok {
		return common.NotFound("book")
	}
	book.ID = id
	book.CreatedAt = old.CreatedAt
	book.UpdatedAt = s.now()
	s.books[id] = *book
	return nil
}

// DeleteBook removes a book and its likes.
func (s *Store) DeleteBook(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return common.NotFound("book")
	}
	delete(s.books, id)
	for k := range s.likes {
		if k.bookID == id {
			delete(s.likes, k)
		}
	}
	s.bookOrder = removeID(s.bookOrder, id)
	return nil
}

func (s *Store) likeCountsLocked() map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(s.books))
	for k := range s.likes {
		counts[k.bookID]++
	}
	return counts
}

// ListBooksWithLikes returns every book with its like count.
func (s *Store) ListBooksWithLikes(_ context.Context) ([]models.BookLikes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := s.likeCountsLocked()
	out := make([]models.BookLikes, 0, len(s.bookOrder))
	for _, id := range s.bookOrder {
		out = append(out, models.BookLikes{Book: s.books[id], Likes: counts[id]})
	}
	return out, nil
}

// TopLikedBooks returns at most limit liked books, most liked first.
func (s *Store) TopLikedBooks(_ context.Context, limit int) ([]models.BookLikes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.BookLikes{}
	for id, n := range s.likeCountsLocked() {
		out = append(out, models.BookLikes{Book: s.books[id], Likes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].Title < out[j].Title
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateLike adds the edge unless it exists. Both endpoints must exist.
func (s *Store) CreateLike(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return false, common.NotFound("user")
	}
	if _, ok := s.books[bookID]; !ok {
		return false, common.NotFound("book")
	}
	k := likeKey{userID: userID, bookID: bookID}
	if _, ok := s.likes[k]; ok {
		return false, nil
	}
	s.likes[k] = models.Like{UserID: userID, BookID: bookID, CreatedAt: s.now()}
	return true, nil
}

// DeleteLike removes the edge and reports whether it existed.
func (s *Store) DeleteLike(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := likeKey{userID: userID, bookID: bookID}
	if _, ok := s.likes[k]; !ok {
		return false, nil
	}
	delete(s.likes, k)
	return true, nil
}

// ListLikedBooks returns the books liked by userID, most recent like first.
func (s *Store) ListLikedBooks(_ context.Context, userID uuid.UUID) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedBooksLocked(userID), nil
}

// LikeCount returns the number of edges in the store.
func (s *Store) LikeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.likes)
}

func (s *Store) likedBooksLocked(userID uuid.UUID) []models.Book {
	type liked struct {
		book models.Book
		at   time.Time
	}
	var found []liked
	for k, l := range s.likes {
		if k.userID == userID {
			found = append(found, liked{book: s.books[k.bookID], at: l.CreatedAt})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].at.Equal(found[j].at) {
			return found[i].at.After(found[j].at)
		}
		return found[i].book.ID.String() < found[j].book.ID.String()
	})
	books := make([]models.Book, 0, len(found))
	for _, l := range found {
		books = append(books, l.book)
	}
	return books
}
