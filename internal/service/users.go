package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/book-service/internal/auth"
	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GetUser returns the user with the given id
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.FindUserByID(ctx, id)
}

// ListUsers returns all users with the books they like
func (s *Service) ListUsers(ctx context.Context) ([]models.UserWithBooks, error) {
	return s.store.ListUsersWithBooks(ctx)
}

// UpdateUser changes the profile of id. Users may only update themselves and
// only elevated users may change a role.
func (s *Service) UpdateUser(ctx context.Context, actor auth.Identity, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	if !actor.CanActFor(id) {
		return nil, fmt.Errorf("%w: cannot update another user", common.ErrUnauthorized)
	}
	if req.Role != nil && actor.Role != models.RoleElevated {
		return nil, fmt.Errorf("%w: only elevated users may change roles", common.ErrUnauthorized)
	}

	upd := models.UserUpdate{Email: req.Email, Role: req.Role}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}

	user, err := s.store.UpdateUser(ctx, id, upd)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.UserID}).Info("User updated")
	return user, nil
}

// DeleteUser removes id together with its password and likes
func (s *Service) DeleteUser(ctx context.Context, actor auth.Identity, id uuid.UUID) error {
	if !actor.CanActFor(id) {
		return fmt.Errorf("%w: cannot delete another user", common.ErrUnauthorized)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.UserID}).Info("User deleted")
	return nil
}
