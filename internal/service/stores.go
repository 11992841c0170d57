package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"evcharge/internal/models"
)

// newID generates entity identifiers. Overridable in tests.
var newID = uuid.NewString

// StationStore persists station aggregates (document-as-aggregate:
// schedules and slots travel with the station). Replace must compare
// the version token and return repository.ErrVersionConflict on stale
// writes.
type StationStore interface {
	GetByID(ctx context.Context, id string) (*models.Station, error)
	List(ctx context.Context) ([]models.Station, error)
	Insert(ctx context.Context, station *models.Station) error
	Replace(ctx context.Context, station *models.Station) error
	Delete(ctx context.Context, id string) error
}

// BookingStore persists bookings.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	List(ctx context.Context) ([]models.Booking, error)
	ListByNIC(ctx context.Context, nic string) ([]models.Booking, error)
	// ListForSlot returns every non-cancelled booking for the given
	// station and slot; the interval overlap check happens in the engine.
	ListForSlot(ctx context.Context, stationID, slotID string) ([]models.Booking, error)
	Insert(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	// HasBlocking reports whether a booking with a live status
	// (Pending/Approved/InProgress) and end >= now exists for the
	// station, optionally narrowed to one slot (slotID != "").
	HasBlocking(ctx context.Context, stationID, slotID string, now time.Time) (bool, error)
}

// OwnerStore persists EV owner accounts keyed by NIC.
type OwnerStore interface {
	GetByNIC(ctx context.Context, nic string) (*models.Owner, error)
	GetByEmail(ctx context.Context, email string) (*models.Owner, error)
	List(ctx context.Context) ([]models.Owner, error)
	Insert(ctx context.Context, owner *models.Owner) error
	Update(ctx context.Context, owner *models.Owner) error
	Delete(ctx context.Context, nic string) error
}

// UserStore persists back-office accounts.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// SlotLocker serializes booking creation per (station, slot) so the
// conflict check and the insert act on a consistent snapshot. Lock
// returns a release func.
type SlotLocker interface {
	Lock(ctx context.Context, stationID, slotID string) (func(), error)
}
