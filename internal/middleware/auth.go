// Package middleware holds the net/http interceptors wrapped around the
// router: the auth guard, the role gate, request logging and panic recovery.
package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Level is the protection level of a route.
type Level int

const (
	// Public routes pass through the guard untouched.
	Public Level = iota
	// Protected routes require a valid token.
	Protected
)

// TokenVerifier checks a token and returns the identity it carries.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the named cookie.
func extractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Guard returns middleware enforcing level. On a protected route the request
// is refused with 401 before next runs unless it carries a token that v
// accepts; the verified identity is then stored in the request context.
func Guard(level Level, v TokenVerifier, cookieName string, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if level == Public {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				log.WithField("path", r.URL.Path).Debug("Rejected request: no token")
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				log.WithField("path", r.URL.Path).Warnf("Rejected request: %v", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole refuses with 403 any request whose identity lacks role. It must
// run after a protected Guard.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if id.Role != role {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
