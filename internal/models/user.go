package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a user.
type Role string

const (
	// RoleStandard is assigned on registration.
	RoleStandard Role = "standard"
	// RoleElevated may manage other users.
	RoleElevated Role = "elevated"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleElevated
}

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"` // Not serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserWithBooks is a user together with the books they like.
type UserWithBooks struct {
	User
	Books []Book `json:"books"`
}

// UserUpdate carries the optional fields of a profile update. Nil fields are
// left untouched; PasswordHash is already hashed.
type UserUpdate struct {
	Email        *string
	Role         *Role
	PasswordHash *string
}
