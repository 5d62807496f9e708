package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/logging"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("guard-secret")

// countingVerifier wraps a real verifier and counts calls to it.
type countingVerifier struct {
	inner TokenVerifier
	calls int
}

func (c *countingVerifier) Verify(token string) (auth.Identity, error) {
	c.calls++
	return c.inner.Verify(token)
}

// recordingHandler stands in for a handler that touches the store.
type recordingHandler struct {
	storeCalls int
	identity   auth.Identity
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.storeCalls++
	h.identity, _ = auth.IdentityFrom(r.Context())
	w.WriteHeader(http.StatusOK)
}

func newGuard(level Level) (http.Handler, *countingVerifier, *recordingHandler) {
	v := &countingVerifier{inner: auth.NewTokenManager(testSecret, time.Hour)}
	next := &recordingHandler{}
	h := Guard(level, v, "jwt", logging.New("error", io.Discard))(next)
	return h, v, next
}

func issue(t *testing.T, role models.Role) (string, uuid.UUID) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Role: role}
	token, err := auth.NewTokenManager(testSecret, time.Hour).Issue(user)
	require.NoError(t, err)
	return token, user.ID
}

func expiredToken(t *testing.T) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
		Role: models.RoleStandard,
	}).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

func TestGuard_ProtectedRejects(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		cookie       string
		wantVerified bool
	}{
		{name: "no token", wantVerified: false},
		{name: "non bearer scheme", header: "Basic dXNlcjpwYXNz", wantVerified: false},
		{name: "malformed bearer", header: "Bearer not-a-jwt", wantVerified: true},
		{name: "malformed cookie", cookie: "garbage", wantVerified: true},
		{name: "expired", header: "Bearer " + expiredToken(t), wantVerified: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, v, next := newGuard(Protected)

			req := httptest.NewRequest(http.MethodPost, "/api/books/like", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "jwt", Value: tt.cookie})
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Zero(t, next.storeCalls, "handler must not run")
			if tt.wantVerified {
				assert.Equal(t, 1, v.calls)
			} else {
				assert.Zero(t, v.calls)
			}

			var body map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGuard_ProtectedAcceptsHeaderAndCookie(t *testing.T) {
	token, userID := issue(t, models.RoleElevated)

	for name, setup := range map[string]func(*http.Request){
		"header": func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
		"cookie": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "jwt", Value: token}) },
	} {
		t.Run(name, func(t *testing.T) {
			h, _, next := newGuard(Protected)
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			setup(req)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, 1, next.storeCalls)
			assert.Equal(t, userID, next.identity.UserID)
			assert.Equal(t, models.RoleElevated, next.identity.Role)
		})
	}
}

func TestGuard_PublicPassesThrough(t *testing.T) {
	h, v, next := newGuard(Public)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/books", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, next.storeCalls)
	assert.Zero(t, v.calls)
}

func TestRequireRole(t *testing.T) {
	standard, _ := issue(t, models.RoleStandard)
	elevated, _ := issue(t, models.RoleElevated)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "standard forbidden", token: standard, want: http.StatusForbidden},
		{name: "elevated allowed", token: elevated, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &recordingHandler{}
			v := auth.NewTokenManager(testSecret, time.Hour)
			h := Guard(Protected, v, "jwt", logging.New("error", io.Discard))(RequireRole(models.RoleElevated)(next))

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
			if tt.want != http.StatusOK {
				assert.Zero(t, next.storeCalls)
			}
		})
	}
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	next := &recordingHandler{}
	rr := httptest.NewRecorder()
	RequireRole(models.RoleElevated)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Zero(t, next.storeCalls)
}
