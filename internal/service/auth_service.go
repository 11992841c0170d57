package service

import (
	"context"
	"errors"
	"strings"

	"evcharge/internal/models"
	"evcharge/internal/password"
	"evcharge/internal/repository"
)

// AuthService registers and authenticates back-office users and signs
// in EV owners by NIC.
type AuthService struct {
	users  UserStore
	owners OwnerStore
	hasher password.Hasher
	tokens *TokenService
}

// NewAuthService builds the auth service.
func NewAuthService(users UserStore, owners OwnerStore, hasher password.Hasher, tokens *TokenService) *AuthService {
	return &AuthService{users: users, owners: owners, hasher: hasher, tokens: tokens}
}

// RegisterUser creates a back-office account with a hashed password.
func (s *AuthService) RegisterUser(ctx context.Context, username, plainPassword, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, NewError(CodeDuplicateUsername, "username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		ID:           newID(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, NewError(CodeDuplicateUsername, "username already exists")
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a JWT.
func (s *AuthService) Login(ctx context.Context, username, plainPassword string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return "", NewError(CodeInvalidCredentials, "invalid credentials")
	}
	if err != nil {
		return "", err
	}
	if err := s.hasher.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", NewError(CodeInvalidCredentials, "invalid credentials")
	}
	return s.tokens.Generate(user.Username, user.Role)
}

// OwnerLogin issues a JWT for an active EV owner identified by NIC.
func (s *AuthService) OwnerLogin(ctx context.Context, nic string) (string, error) {
	owner, err := s.owners.GetByNIC(ctx, strings.TrimSpace(nic))
	if errors.Is(err, repository.ErrNotFound) {
		return "", NewError(CodeInvalidCredentials, "invalid or inactive EV owner")
	}
	if err != nil {
		return "", err
	}
	if !owner.IsActive {
		return "", NewError(CodeOwnerInactive, "invalid or inactive EV owner")
	}
	return s.tokens.Generate(owner.NIC, models.RoleEVOwner)
}
