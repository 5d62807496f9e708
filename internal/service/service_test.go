package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/logging"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/Dan9191/book-service/internal/repository"
	"github.com/Dan9191/book-service/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	_ Store = (*repository.Repository)(nil)
	_ Store = (*memory.Store)(nil)
)

// countingStore records which store methods the service reached.
type countingStore struct {
	*memory.Store
	calls map[string]int
}

func (c *countingStore) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	c.calls["FindUserByID"]++
	return c.Store.FindUserByID(ctx, id)
}

func (c *countingStore) CreateLike(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	c.calls["CreateLike"]++
	return c.Store.CreateLike(ctx, userID, bookID)
}

type fixture struct {
	svc    *Service
	store  *countingStore
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &countingStore{Store: memory.NewStore(), calls: map[string]int{}}
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	svc := NewService(store, auth.NewPasswordHasher(bcrypt.MinCost), tokens, logging.New("error", io.Discard))
	return &fixture{svc: svc, store: store, tokens: tokens}
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), models.RegisterRequest{Email: email, Password: "pw1pw1"})
	require.NoError(t, err)
	return u
}

func (f *fixture) book(t *testing.T, title string) *models.Book {
	t.Helper()
	b, err := f.svc.CreateBook(context.Background(), models.BookRequest{Title: title, Author: "Some Author"})
	require.NoError(t, err)
	return b
}

func self(u *models.User) auth.Identity {
	return auth.Identity{UserID: u.ID, Role: u.Role}
}

func TestRegister_ConflictOnDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "a@x.com")
	assert.Equal(t, models.RoleStandard, u.Role)

	_, err := f.svc.Register(context.Background(), models.RegisterRequest{Email: "a@x.com", Password: "other1"})
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "a@x.com")
	ctx := context.Background()

	token, got, err := f.svc.Login(ctx, models.LoginRequest{Email: "a@x.com", Password: "pw1pw1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	id, err := f.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.Equal(t, models.RoleStandard, id.Role)

	_, _, err = f.svc.Login(ctx, models.LoginRequest{Email: "a@x.com", Password: "wrong1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Login(ctx, models.LoginRequest{Email: "nobody@x.com", Password: "pw1pw1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.True(t, errors.Is(err, common.ErrUnauthenticated))
}

func TestUpdateUser_Authorization(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")
	b := f.register(t, "b@x.com")
	ctx := context.Background()

	email := "a2@x.com"
	_, err := f.svc.UpdateUser(ctx, self(b), a.ID, models.UpdateUserRequest{Email: &email})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	elevated := models.RoleElevated
	_, err = f.svc.UpdateUser(ctx, self(a), a.ID, models.UpdateUserRequest{Role: &elevated})
	assert.True(t, errors.Is(err, common.ErrUnauthorized))

	got, err := f.svc.UpdateUser(ctx, self(a), a.ID, models.UpdateUserRequest{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)

	admin := auth.Identity{UserID: uuid.New(), Role: models.RoleElevated}
	got, err = f.svc.UpdateUser(ctx, admin, b.ID, models.UpdateUserRequest{Role: &elevated})
	require.NoError(t, err)
	assert.Equal(t, models.RoleElevated, got.Role)
}

func TestUpdateUser_PasswordIsRehashed(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")
	ctx := context.Background()

	pw := "newpass"
	_, err := f.svc.UpdateUser(ctx, self(a), a.ID, models.UpdateUserRequest{Password: &pw})
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, models.LoginRequest{Email: "a@x.com", Password: "pw1pw1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = f.svc.Login(ctx, models.LoginRequest{Email: "a@x.com", Password: "newpass"})
	assert.NoError(t, err)
}

func TestDeleteUser_RemovesPasswordAndLikes(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")
	b := f.book(t, "Dune")
	ctx := context.Background()
	require.NoError(t, f.svc.Like(ctx, self(a), b.ID, a.ID))

	other := f.register(t, "b@x.com")
	assert.True(t, errors.Is(f.svc.DeleteUser(ctx, self(other), a.ID), common.ErrUnauthorized))

	require.NoError(t, f.svc.DeleteUser(ctx, self(a), a.ID))
	assert.False(t, f.store.HasPassword(a.ID))
	assert.Zero(t, f.store.LikeCount())

	_, err := f.svc.GetUser(ctx, a.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestLike_MissingBookStopsBeforeUserLookup(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")

	err := f.svc.Like(context.Background(), self(a), uuid.New(), a.ID)

	var ee *common.EntityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "book", ee.Entity)
	assert.Zero(t, f.store.calls["FindUserByID"])
	assert.Zero(t, f.store.calls["CreateLike"])
	assert.Zero(t, f.store.LikeCount())
}

func TestLike_MissingUser(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, "Dune")
	ghost := uuid.New()
	admin := auth.Identity{UserID: uuid.New(), Role: models.RoleElevated}

	err := f.svc.Like(context.Background(), admin, b.ID, ghost)

	var ee *common.EntityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "user", ee.Entity)
	assert.Zero(t, f.store.calls["CreateLike"])
	assert.Zero(t, f.store.LikeCount())
}

func TestLike_TwiceKeepsOneEdge(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")
	b := f.book(t, "Dune")
	ctx := context.Background()

	require.NoError(t, f.svc.Like(ctx, self(a), b.ID, a.ID))
	require.NoError(t, f.svc.Like(ctx, self(a), b.ID, a.ID))
	assert.Equal(t, 1, f.store.LikeCount())

	books, err := f.svc.LikedBooks(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, b.ID, books[0].ID)
}

func TestLike_OnBehalfOfAnotherUser(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")
	other := f.register(t, "b@x.com")
	b := f.book(t, "Dune")

	err := f.svc.Like(context.Background(), self(other), b.ID, a.ID)
	assert.True(t, errors.Is(err, common.ErrUnauthorized))
	assert.Zero(t, f.store.calls["CreateLike"])
}

func TestUnlike(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "a@x.com")
	b := f.book(t, "Dune")
	ctx := context.Background()
	require.NoError(t, f.svc.Like(ctx, self(a), b.ID, a.ID))

	require.NoError(t, f.svc.Unlike(ctx, self(a), b.ID, a.ID))
	assert.Zero(t, f.store.LikeCount())

	// nothing left to remove
	assert.NoError(t, f.svc.Unlike(ctx, self(a), b.ID, a.ID))
}

func TestBooks_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, "Dune")

	got, err := f.svc.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	updated, err := f.svc.UpdateBook(ctx, b.ID, models.BookRequest{Title: "Dune Messiah", Author: "Frank Herbert", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, b.ID, updated.ID)
	assert.Equal(t, 4, updated.Rating)

	_, err = f.svc.UpdateBook(ctx, uuid.New(), models.BookRequest{Title: "Nope", Author: "Nobody"})
	assert.True(t, errors.Is(err, common.ErrNotFound))

	require.NoError(t, f.svc.DeleteBook(ctx, b.ID))
	books, err := f.svc.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}
