package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/book-service/internal/common"
	"github.com/lib/pq"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	email      TEXT NOT NULL,
	role       TEXT NOT NULL DEFAULT 'standard',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT users_email_key UNIQUE (email),
	CONSTRAINT users_role_check CHECK (role IN ('standard', 'elevated'))
);

CREATE TABLE IF NOT EXISTS passwords (
	user_id         UUID PRIMARY KEY,
	hashed_password TEXT NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT passwords_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS books (
	id           UUID PRIMARY KEY,
	title        TEXT NOT NULL,
	author       TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	rating       INTEGER NOT NULL DEFAULT 0,
	price        DOUBLE PRECISION NOT NULL DEFAULT 0,
	published_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CONSTRAINT books_rating_check CHECK (rating BETWEEN 0 AND 5),
	CONSTRAINT books_price_check CHECK (price >= 0)
);

CREATE TABLE IF NOT EXISTS likes (
	user_id    UUID NOT NULL,
	book_id    UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, book_id),
	CONSTRAINT likes_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
	CONSTRAINT likes_book_id_fkey FOREIGN KEY (book_id) REFERENCES books (id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS likes_book_id_idx ON likes (book_id);
`

// EnsureSchema creates the tables the service relies on if they are missing.
// The unique and foreign key constraints defined here back the email and like
// uniqueness and the cascading deletes.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// foreign key constraint name -> entity it points at
var fkEntities = map[string]string{
	"likes_user_id_fkey":     "user",
	"likes_book_id_fkey":     "book",
	"passwords_user_id_fkey": "user",
}

// translateError maps driver errors onto the common taxonomy. entity names the
// row being written and is used for uniqueness violations.
func translateError(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.NotFound(entity)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return common.Conflict(entity)
		case "foreign_key_violation":
			if target, ok := fkEntities[pqErr.Constraint]; ok {
				return common.NotFound(target)
			}
			return fmt.Errorf("%w: %s", common.ErrNotFound, pqErr.Constraint)
		}
	}
	return fmt.Errorf("db error: %w", err)
}

// rowsAffectedOrNotFound turns a zero-row write into NotFound.
func rowsAffectedOrNotFound(res sql.Result, entity string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.NotFound(entity)
	}
	return nil
}
