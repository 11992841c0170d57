package service

import (
	"context"
	"errors"

	"evcharge/internal/models"
	"evcharge/internal/password"
	"evcharge/internal/repository"
)

// UserService administers back-office accounts past registration:
// listing, role changes, password resets and removal.
type UserService struct {
	users  UserStore
	hasher password.Hasher
}

// NewUserService builds the account admin service.
func NewUserService(users UserStore, hasher password.Hasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// UpdateUserInput carries the mutable user fields. Empty values keep
// the stored ones; the username is the login key and never changes.
type UpdateUserInput struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

// List returns every back-office account.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// GetByID loads one account.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(CodeNotFound, "user not found")
	}
	return user, err
}

// Update changes the role and, when a new password is supplied,
// rehashes it.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.Password != "" {
		hash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	return s.users.Update(ctx, user)
}

// Delete removes the account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}
