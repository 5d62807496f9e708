package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/book-service/internal/dbx"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

// CreateUser inserts the user and its password hash in one transaction.
// The generated id and timestamps are written back to user.
func (r *Repository) CreateUser(ctx context.Context, user *models.User, passwordHash string) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleStandard
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO users (id, email, role)
			VALUES ($1, $2, $3)
			RETURNING created_at, updated_at`
		err := tx.QueryRowContext(ctx, query, user.ID, user.Email, string(user.Role)).
			Scan(&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return translateError(err, "user")
		}

		query = `INSERT INTO passwords (user_id, hashed_password) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, user.ID, passwordHash); err != nil {
			return translateError(err, "password")
		}
		return nil
	})
}

// FindUserByID retrieves a user by id. The password hash is not loaded.
func (r *Repository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, role, created_at, updated_at
		FROM users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translateError(err, "user")
	}
	return user, nil
}

// FindUserByEmail retrieves a user by email together with the password hash.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT u.id, u.email, u.role, p.hashed_password, u.created_at, u.updated_at
		FROM users u
		JOIN passwords p ON p.user_id = u.id
		WHERE u.email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.Role, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, translateError(err, "user")
	}
	return user, nil
}

// ListUsersByRole returns all users with the given role, ordered by email.
func (r *Repository) ListUsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := `
		SELECT id, email, role, created_at, updated_at
		FROM users
		WHERE role = $1
		ORDER BY email`
	rows, err := r.db.QueryContext(ctx, query, string(role))
	if err != nil {
		return nil, translateError(err, "user")
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// ListUsersWithBooks returns every user with the books they like, most
// recent like first as in ListLikedBooks.
func (r *Repository) ListUsersWithBooks(ctx context.Context) ([]models.UserWithBooks, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, role, created_at, updated_at
		FROM users
		ORDER BY created_at, id`)
	if err != nil {
		return nil, translateError(err, "user")
	}
	defer rows.Close()

	var users []models.UserWithBooks
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		u := models.UserWithBooks{Books: []models.Book{}}
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		index[u.ID] = len(users)
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(users) == 0 {
		return users, nil
	}

	likeRows, err := r.db.QueryContext(ctx, `
		SELECT l.user_id, `+bookColumns("b")+`
		FROM likes l
		JOIN books b ON b.id = l.book_id
		ORDER BY l.created_at DESC, b.id`)
	if err != nil {
		return nil, translateError(err, "like")
	}
	defer likeRows.Close()

	for likeRows.Next() {
		var userID uuid.UUID
		book, err := scanBook(likeRows, &userID)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if i, ok := index[userID]; ok {
			users[i].Books = append(users[i].Books, *book)
		}
	}
	if err := likeRows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of upd. A new password hash is
// written in the same transaction as the profile fields.
func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	var role *string
	if upd.Role != nil {
		s := string(*upd.Role)
		role = &s
	}

	user := &models.User{}
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			UPDATE users
			SET email = COALESCE($2, email),
			    role = COALESCE($3, role),
			    updated_at = NOW()
			WHERE id = $1
			RETURNING id, email, role, created_at, updated_at`
		err := tx.QueryRowContext(ctx, query, id, upd.Email, role).
			Scan(&user.ID, &user.Email, &user.Role, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return translateError(err, "user")
		}

		if upd.PasswordHash == nil {
			return nil
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE passwords
			SET hashed_password = $2, updated_at = NOW()
			WHERE user_id = $1`, id, *upd.PasswordHash)
		if err != nil {
			return translateError(err, "password")
		}
		return rowsAffectedOrNotFound(res, "password")
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user. Its password and likes are removed by the
// cascading foreign keys.
func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "user")
	}
	return rowsAffectedOrNotFound(res, "user")
}
