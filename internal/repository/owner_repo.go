package repository

import (
	"context"
	"database/sql"
	"errors"

	"evcharge/internal/models"
)

// OwnerRepository handles CRUD for EV owner accounts.
type OwnerRepository struct {
	db *sql.DB
}

// NewOwnerRepository returns repository.
func NewOwnerRepository(db *sql.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

const ownerColumns = `nic, name, email, phone, address, is_active, created_at, updated_at`

func scanOwner(row interface{ Scan(...any) error }) (*models.Owner, error) {
	var (
		o       models.Owner
		phone   sql.NullString
		address sql.NullString
	)
	err := row.Scan(&o.NIC, &o.Name, &o.Email, &phone, &address, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Phone = phone.String
	o.Address = address.String
	return &o, nil
}

// GetByNIC fetches one owner.
func (r *OwnerRepository) GetByNIC(ctx context.Context, nic string) (*models.Owner, error) {
	const query = `SELECT ` + ownerColumns + ` FROM ev_owners WHERE nic = $1`
	o, err := scanOwner(r.db.QueryRowContext(ctx, query, nic))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// GetByEmail fetches one owner by email.
func (r *OwnerRepository) GetByEmail(ctx context.Context, email string) (*models.Owner, error) {
	const query = `SELECT ` + ownerColumns + ` FROM ev_owners WHERE email = $1`
	o, err := scanOwner(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// List returns every owner, newest first.
func (r *OwnerRepository) List(ctx context.Context) ([]models.Owner, error) {
	const query = `SELECT ` + ownerColumns + ` FROM ev_owners ORDER BY created_at DESC, nic`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []models.Owner
	for rows.Next() {
		o, err := scanOwner(rows)
		if err != nil {
			return nil, err
		}
		owners = append(owners, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return owners, nil
}

// Insert persists a new owner.
func (r *OwnerRepository) Insert(ctx context.Context, o *models.Owner) error {
	const query = `
		INSERT INTO ev_owners (nic, name, email, phone, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		o.NIC, o.Name, o.Email, o.Phone, o.Address, o.IsActive, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

// Update overwrites an owner row.
func (r *OwnerRepository) Update(ctx context.Context, o *models.Owner) error {
	const query = `
		UPDATE ev_owners
		SET name = $2, email = $3, phone = NULLIF($4, ''), address = NULLIF($5, ''),
		    is_active = $6, updated_at = $7
		WHERE nic = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		o.NIC, o.Name, o.Email, o.Phone, o.Address, o.IsActive, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an owner record.
func (r *OwnerRepository) Delete(ctx context.Context, nic string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ev_owners WHERE nic = $1`, nic)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
