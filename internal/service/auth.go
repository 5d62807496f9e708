package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/book-service/internal/common"
	"github.com/Dan9191/book-service/internal/models"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", common.ErrUnauthenticated)

// Register creates a standard user with a hashed password
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email: req.Email,
		Role:  models.RoleStandard,
	}
	if err := s.store.CreateUser(ctx, user, hash); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login authenticates a user and returns a session token
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.Verify(req.Password, s.dummyHash)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.log.WithField("user_id", user.ID).Warn("Login failed: password mismatch")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.log.WithField("user_id", user.ID).Info("User logged in")
	user.PasswordHash = ""
	return token, user, nil
}
