package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (*models.User, *models.Book) {
	t.Helper()
	ctx := context.Background()

	u := &models.User{Email: "a@x.com"}
	require.NoError(t, s.CreateUser(ctx, u, "hash"))
	b := &models.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, s.CreateBook(ctx, b))
	return u, b
}

func TestCreateUser_DefaultsAndConflict(t *testing.T) {
	s := NewStore()
	u, _ := seed(t, s)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, models.RoleStandard, u.Role)
	assert.False(t, u.CreatedAt.IsZero())

	err := s.CreateUser(context.Background(), &models.User{Email: "a@x.com"}, "other")
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestFindUser_HashOnlyByEmail(t *testing.T) {
	s := NewStore()
	u, _ := seed(t, s)
	ctx := context.Background()

	byID, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, byID.PasswordHash)

	byEmail, err := s.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	_, err = s.FindUserByEmail(ctx, "nobody@x.com")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestUpdateUser(t *testing.T) {
	s := NewStore()
	u, _ := seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "b@x.com"}, "h"))

	taken := "b@x.com"
	_, err := s.UpdateUser(ctx, u.ID, models.UserUpdate{Email: &taken})
	assert.True(t, errors.Is(err, common.ErrConflict))

	email, role, hash := "new@x.com", models.RoleElevated, "newhash"
	got, err := s.UpdateUser(ctx, u.ID, models.UserUpdate{Email: &email, Role: &role, PasswordHash: &hash})
	require.NoError(t, err)
	assert.Equal(t, email, got.Email)
	assert.Equal(t, models.RoleElevated, got.Role)

	withHash, err := s.FindUserByEmail(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "newhash", withHash.PasswordHash)

	_, err = s.UpdateUser(ctx, uuid.New(), models.UserUpdate{})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestCreateLike_Idempotent(t *testing.T) {
	s := NewStore()
	u, b := seed(t, s)
	ctx := context.Background()

	created, err := s.CreateLike(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateLike(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, s.LikeCount())
}

func TestCreateLike_MissingEndpoint(t *testing.T) {
	s := NewStore()
	u, b := seed(t, s)
	ctx := context.Background()

	_, err := s.CreateLike(ctx, uuid.New(), b.ID)
	var ee *common.EntityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "user", ee.Entity)

	_, err = s.CreateLike(ctx, u.ID, uuid.New())
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "book", ee.Entity)

	assert.Zero(t, s.LikeCount())
}

func TestDeleteUser_Cascades(t *testing.T) {
	s := NewStore()
	u, b := seed(t, s)
	ctx := context.Background()
	_, err := s.CreateLike(ctx, u.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.False(t, s.HasPassword(u.ID))
	assert.Zero(t, s.LikeCount())

	_, err = s.FindUserByID(ctx, u.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.True(t, errors.Is(s.DeleteUser(ctx, u.ID), common.ErrNotFound))
}

func TestDeleteBook_Cascades(t *testing.T) {
	s := NewStore()
	u, b := seed(t, s)
	ctx := context.Background()
	_, err := s.CreateLike(ctx, u.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteBook(ctx, b.ID))
	assert.Zero(t, s.LikeCount())

	books, err := s.ListLikedBooks(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestTopLikedBooks(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	var users []uuid.UUID
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		u := &models.User{Email: email}
		require.NoError(t, s.CreateUser(ctx, u, "h"))
		users = append(users, u.ID)
	}
	books := map[string]uuid.UUID{}
	for _, title := range []string{"Alpha", "Beta", "Gamma", "Unliked"} {
		b := &models.Book{Title: title, Author: "Someone"}
		require.NoError(t, s.CreateBook(ctx, b))
		books[title] = b.ID
	}
	like := func(u uuid.UUID, title string) {
		_, err := s.CreateLike(ctx, u, books[title])
		require.NoError(t, err)
	}
	like(users[0], "Gamma")
	like(users[1], "Gamma")
	like(users[2], "Gamma")
	like(users[0], "Beta")
	like(users[0], "Alpha")

	top, err := s.TopLikedBooks(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Gamma", top[0].Title)
	assert.Equal(t, 3, top[0].Likes)
	assert.Equal(t, "Alpha", top[1].Title)

	all, err := s.ListBooksWithLikes(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Unliked", all[3].Title)
	assert.Zero(t, all[3].Likes)
}

func TestListUsersWithBooks(t *testing.T) {
	s := NewStore()
	u, b := seed(t, s)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{Email: "b@x.com", Role: models.RoleElevated}, "h"))
	_, err := s.CreateLike(ctx, u.ID, b.ID)
	require.NoError(t, err)

	list, err := s.ListUsersWithBooks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@x.com", list[0].Email)
	require.Len(t, list[0].Books, 1)
	assert.Equal(t, "Dune", list[0].Books[0].Title)
	assert.NotNil(t, list[1].Books)
	assert.Empty(t, list[1].Books)

	elevated, err := s.ListUsersByRole(ctx, models.RoleElevated)
	require.NoError(t, err)
	require.Len(t, elevated, 1)
	assert.Equal(t, "b@x.com", elevated[0].Email)
}

func TestLikedBooks_NewestFirstEverywhere(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	u := &models.User{Email: "a@x.com"}
	require.NoError(t, s.CreateUser(ctx, u, "h"))
	var ids []uuid.UUID
	for _, title := range []string{"First", "Second", "Third"} {
		b := &models.Book{Title: title, Author: "Someone"}
		require.NoError(t, s.CreateBook(ctx, b))
		ids = append(ids, b.ID)
	}
	for _, id := range ids {
		_, err := s.CreateLike(ctx, u.ID, id)
		require.NoError(t, err)
	}

	liked, err := s.ListLikedBooks(ctx, u.ID)
	require.NoError(t, err)
	users, err := s.ListUsersWithBooks(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	for _, books := range [][]models.Book{liked, users[0].Books} {
		require.Len(t, books, 3)
		assert.Equal(t, "Third", books[0].Title)
		assert.Equal(t, "First", books[2].Title)
	}
}
