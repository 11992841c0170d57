package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"evcharge/internal/models"
)

// BookingRepository stores bookings as plain rows. Bookings are never
// deleted; cancellation is a status change.
type BookingRepository struct {
	db *sql.DB
}

// NewBookingRepository returns repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, nic, name, station_id, slot_id, start_time, end_time, status, qr_token, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var (
		b       models.Booking
		qrToken sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.NIC, &b.Name, &b.StationID, &b.SlotID,
		&b.StartTime, &b.EndTime, &b.Status, &qrToken,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.QRToken = qrToken.String
	return &b, nil
}

func (r *BookingRepository) queryMany(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetByID fetches one booking.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

// List returns every booking, newest first.
func (r *BookingRepository) List(ctx context.Context) ([]models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC, id`
	return r.queryMany(ctx, query)
}

// ListByNIC returns the owner's bookings, newest first.
func (r *BookingRepository) ListByNIC(ctx context.Context, nic string) ([]models.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE nic = $1 ORDER BY created_at DESC, id`
	return r.queryMany(ctx, query, nic)
}

// ListForSlot returns every non-cancelled booking for one slot; the
// engine runs the interval overlap check over the result.
func (r *BookingRepository) ListForSlot(ctx context.Context, stationID, slotID string) ([]models.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE station_id = $1 AND slot_id = $2 AND status <> $3
		ORDER BY start_time
	`
	return r.queryMany(ctx, query, stationID, slotID, models.BookingStatusCancelled)
}

// Insert persists a new booking.
func (r *BookingRepository) Insert(ctx context.Context, b *models.Booking) error {
	const query = `
		INSERT INTO bookings (id, nic, name, station_id, slot_id, start_time, end_time, status, qr_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.NIC, b.Name, b.StationID, b.SlotID,
		b.StartTime, b.EndTime, b.Status, b.QRToken,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// Update overwrites a booking row.
func (r *BookingRepository) Update(ctx context.Context, b *models.Booking) error {
	const query = `
		UPDATE bookings
		SET nic = $2, name = $3, station_id = $4, slot_id = $5,
		    start_time = $6, end_time = $7, status = $8,
		    qr_token = NULLIF($9, ''), updated_at = $10
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		b.ID, b.NIC, b.Name, b.StationID, b.SlotID,
		b.StartTime, b.EndTime, b.Status, b.QRToken, b.UpdatedAt,
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

// HasBlocking reports whether a live booking (Pending, Approved or
// InProgress, ending now or later) exists for the station, optionally
// narrowed to one slot. Shared guard behind station and slot
// deactivate/delete.
func (r *BookingRepository) HasBlocking(ctx context.Context, stationID, slotID string, now time.Time) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE station_id = $1
			  AND ($2 = '' OR slot_id = $2)
			  AND status IN ($3, $4, $5)
			  AND end_time >= $6
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query,
		stationID, slotID,
		models.BookingStatusPending, models.BookingStatusApproved, models.BookingStatusInProgress,
		now,
	).Scan(&exists)
	return exists, err
}
