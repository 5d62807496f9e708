package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", common.ErrUnauthenticated)
	ErrTokenSignature = fmt.Errorf("%w: invalid token signature", common.ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", common.ErrUnauthenticated)
	ErrTokenInvalid   = fmt.Errorf("%w: invalid token", common.ErrUnauthenticated)
)

// Claims is the JWT payload: the standard claims with the user id as subject,
// plus the user's role.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// TokenManager issues and verifies HS256 session tokens. The key is fixed for
// the lifetime of the manager.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager signing with secret. Tokens expire ttl after issue.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenManager{secret: key, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a token for user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Role: user.Role,
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// identity it carries. Every failure wraps common.ErrUnauthenticated.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrTokenSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		default:
			return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}
	if !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("%w: bad role", ErrTokenInvalid)
	}

	return Identity{UserID: userID, Role: claims.Role}, nil
}
