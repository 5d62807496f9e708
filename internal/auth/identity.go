package auth

import (
	"context"

	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// CanActFor reports whether the caller may act on behalf of userID.
func (i Identity) CanActFor(userID uuid.UUID) bool {
	return i.UserID == userID || i.Role == models.RoleElevated
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
