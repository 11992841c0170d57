package service

import (
	"context"
	"errors"
	"strings"

	"evcharge/internal/models"
	"evcharge/internal/repository"
)

// OwnerService manages EV owner accounts keyed by NIC.
type OwnerService struct {
	owners OwnerStore
	clock  Clock
}

// NewOwnerService builds the registry.
func NewOwnerService(owners OwnerStore, clock Clock) *OwnerService {
	if clock == nil {
		clock = SystemClock()
	}
	return &OwnerService{owners: owners, clock: clock}
}

// OwnerInput carries owner fields for create and update.
type OwnerInput struct {
	NIC     string `json:"nic"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// List returns every owner.
func (s *OwnerService) List(ctx context.Context) ([]models.Owner, error) {
	return s.owners.List(ctx)
}

// GetByNIC loads one owner.
func (s *OwnerService) GetByNIC(ctx context.Context, nic string) (*models.Owner, error) {
	owner, err := s.owners.GetByNIC(ctx, nic)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(CodeNotFound, "EV owner not found")
	}
	return owner, err
}

// Create registers a new active owner; NIC and email must be unique.
func (s *OwnerService) Create(ctx context.Context, input OwnerInput) (*models.Owner, error) {
	nic := strings.TrimSpace(input.NIC)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.owners.GetByNIC(ctx, nic); err == nil {
		return nil, NewError(CodeDuplicateNIC, "NIC already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.owners.GetByEmail(ctx, email); err == nil {
		return nil, NewError(CodeDuplicateEmail, "email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	owner := &models.Owner{
		NIC:       nic,
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Phone:     input.Phone,
		Address:   input.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.owners.Insert(ctx, owner); err != nil {
		return nil, err
	}
	return owner, nil
}

// Update overwrites the owner's mutable fields. The NIC is the key and
// never changes.
func (s *OwnerService) Update(ctx context.Context, nic string, input OwnerInput) error {
	owner, err := s.GetByNIC(ctx, nic)
	if err != nil {
		return err
	}
	owner.Name = strings.TrimSpace(input.Name)
	owner.Email = strings.ToLower(strings.TrimSpace(input.Email))
	owner.Phone = input.Phone
	owner.Address = input.Address
	owner.UpdatedAt = s.clock.Now()
	return s.owners.Update(ctx, owner)
}

// Delete removes the owner record.
func (s *OwnerService) Delete(ctx context.Context, nic string) error {
	if _, err := s.GetByNIC(ctx, nic); err != nil {
		return err
	}
	return s.owners.Delete(ctx, nic)
}

// SetActive toggles the owner's active flag. Reactivation is restricted
// to back-office roles at the HTTP layer.
func (s *OwnerService) SetActive(ctx context.Context, nic string, active bool) error {
	owner, err := s.GetByNIC(ctx, nic)
	if err != nil {
		return err
	}
	owner.IsActive = active
	owner.UpdatedAt = s.clock.Now()
	return s.owners.Update(ctx, owner)
}
