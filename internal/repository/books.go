package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

var bookFields = []string{"id", "title", "author", "description", "rating", "price", "published_at", "created_at", "updated_at"}

// bookColumns renders the book column list, qualified with alias when given.
func bookColumns(alias string) string {
	if alias == "" {
		return strings.Join(bookFields, ", ")
	}
	cols := make([]string, len(bookFields))
	for i, f := range bookFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

type scanner interface {
	Scan(dest ...any) error
}

// scanBook scans a row laid out as leading..., bookColumns.
func scanBook(row scanner, leading ...any) (*models.Book, error) {
	b := &models.Book{}
	var published sql.NullTime
	dest := append(leading, &b.ID, &b.Title, &b.Author, &b.Description, &b.Rating, &b.Price, &published, &b.CreatedAt, &b.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if published.Valid {
		t := published.Time
		b.PublishedAt = &t
	}
	return b, nil
}

func nullTime(b *models.Book) sql.NullTime {
	if b.PublishedAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *b.PublishedAt, Valid: true}
}

// CreateBook inserts a book. The generated id and timestamps are written back.
func (r *Repository) CreateBook(ctx context.Context, book *models.Book) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	query := `
		INSERT INTO books (id, title, author, description, rating, price, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		book.ID, book.Title, book.Author, book.Description, book.Rating, book.Price, nullTime(book)).
		Scan(&book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return translateError(err, "book")
	}
	return nil
}

// FindBookByID retrieves a book by id
func (r *Repository) FindBookByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	query := `SELECT ` + bookColumns("") + ` FROM books WHERE id = $1`
	book, err := scanBook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, "book")
	}
	return book, nil
}

// ListBooks returns all books, oldest first.
func (r *Repository) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookColumns("")+` FROM books ORDER BY created_at, id`)
	if err != nil {
		return nil, translateError(err, "book")
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

// UpdateBook overwrites the descriptive fields of the book with the given id.
func (r *Repository) UpdateBook(ctx context.Context, id uuid.UUID, book *models.Book) error {
	query := `
		UPDATE books
		SET title = $2, author = $3, description = $4, rating = $5, price = $6,
		    published_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		id, book.Title, book.Author, book.Description, book.Rating, book.Price, nullTime(book)).
		Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return translateError(err, "book")
	}
	return nil
}

// DeleteBook removes a book; likes pointing at it are removed by cascade.
func (r *Repository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "book")
	}
	return rowsAffectedOrNotFound(res, "book")
}

// ListBooksWithLikes returns every book with its like count.
func (r *Repository) ListBooksWithLikes(ctx context.Context) ([]models.BookLikes, error) {
	return r.queryBookLikes(ctx, `
		SELECT COUNT(l.user_id), `+bookColumns("b")+`
		FROM books b
		LEFT JOIN likes l ON l.book_id = b.id
		GROUP BY b.id
		ORDER BY b.created_at, b.id`)
}

// TopLikedBooks returns at most limit books that have likes, most liked first.
func (r *Repository) TopLikedBooks(ctx context.Context, limit int) ([]models.BookLikes, error) {
	return r.queryBookLikes(ctx, `
		SELECT COUNT(l.user_id), `+bookColumns("b")+`
		FROM books b
		JOIN likes l ON l.book_id = b.id
		GROUP BY b.id
		ORDER BY COUNT(l.user_id) DESC, b.title
		LIMIT $1`, limit)
}

func (r *Repository) queryBookLikes(ctx context.Context, query string, args ...any) ([]models.BookLikes, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "book")
	}
	defer rows.Close()

	out := []models.BookLikes{}
	for rows.Next() {
		var likes int
		b, err := scanBook(rows, &likes)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, models.BookLikes{Book: *b, Likes: likes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
