package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

// CreateLike records that userID likes bookID. An existing edge is left as it
// is and reported with created=false. A missing user or book surfaces as
// NotFound naming that entity.
func (r *Repository) CreateLike(ctx context.Context, userID, bookID uuid.UUID) (created bool, err error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO likes (user_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, book_id) DO NOTHING`, userID, bookID)
	if err != nil {
		return false, translateError(err, "like")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// DeleteLike removes the edge if present and reports whether it existed.
func (r *Repository) DeleteLike(ctx context.Context, userID, bookID uuid.UUID) (removed bool, err error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM likes WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return false, translateError(err, "like")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

// ListLikedBooks returns the books liked by userID, most recent like first.
func (r *Repository) ListLikedBooks(ctx context.Context, userID uuid.UUID) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookColumns("b")+`
		FROM likes l
		JOIN books b ON b.id = l.book_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, b.id`, userID)
	if err != nil {
		return nil, translateError(err, "like")
	}
	defer rows.Close()

	books := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return books, nil
}
