package service

import (
	"context"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

// ListBooks returns the whole catalog
func (s *Service) ListBooks(ctx context.Context) ([]models.Book, error) {
	return s.store.ListBooks(ctx)
}

// ListBooksWithLikes returns the whole catalog with like counts
func (s *Service) ListBooksWithLikes(ctx context.Context) ([]models.BookLikes, error) {
	return s.store.ListBooksWithLikes(ctx)
}

// GetBook returns the book with the given id
func (s *Service) GetBook(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	return s.store.FindBookByID(ctx, id)
}

// CreateBook adds a book to the catalog
func (s *Service) CreateBook(ctx context.Context, req models.BookRequest) (*models.Book, error) {
	book := req.ToBook()
	if err := s.store.CreateBook(ctx, &book); err != nil {
		return nil, err
	}

	s.log.WithField("book_id", book.ID).Info("Book created")
	return &book, nil
}

// UpdateBook replaces the descriptive fields of a book
func (s *Service) UpdateBook(ctx context.Context, id uuid.UUID, req models.BookRequest) (*models.Book, error) {
	book := req.ToBook()
	if err := s.store.UpdateBook(ctx, id, &book); err != nil {
		return nil, err
	}

	s.log.WithField("book_id", id).Info("Book updated")
	return &book, nil
}

// DeleteBook removes a book and every like pointing at it
func (s *Service) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteBook(ctx, id); err != nil {
		return err
	}

	s.log.WithField("book_id", id).Info("Book deleted")
	return nil
}
