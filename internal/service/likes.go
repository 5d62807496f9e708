package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Like records that userID likes bookID. The book is checked first, then the
// user; either missing yields NotFound naming it and nothing is written.
// Liking the same book twice is a no-op.
func (s *Service) Like(ctx context.Context, actor auth.Identity, bookID, userID uuid.UUID) error {
	if !actor.CanActFor(userID) {
		return fmt.Errorf("%w: cannot like on behalf of another user", common.ErrUnauthorized)
	}
	if _, err := s.store.FindBookByID(ctx, bookID); err != nil {
		return err
	}
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return err
	}

	// The store enforces existence and uniqueness again at insert time, so a
	// concurrent delete or duplicate request cannot produce a dangling or
	// doubled edge.
	created, err := s.store.CreateLike(ctx, userID, bookID)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID, "created": created}).Info("Book liked")
	return nil
}

// Unlike removes the edge between userID and bookID if there is one.
func (s *Service) Unlike(ctx context.Context, actor auth.Identity, bookID, userID uuid.UUID) error {
	if !actor.CanActFor(userID) {
		return fmt.Errorf("%w: cannot unlike on behalf of another user", common.ErrUnauthorized)
	}

	removed, err := s.store.DeleteLike(ctx, userID, bookID)
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID, "removed": removed}).Info("Book unliked")
	return nil
}

// LikedBooks returns the books userID likes
func (s *Service) LikedBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListLikedBooks(ctx, userID)
}
