package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"evcharge/internal/events"
	"evcharge/internal/metrics"
	"evcharge/internal/models"
	"evcharge/internal/repository"
)

const (
	// Bookings may only be made within this lookahead from now.
	maxLookahead = 7 * 24 * time.Hour
	// Updates and cancellations are rejected inside this buffer
	// before the booking starts.
	modifyCutoff = 12 * time.Hour
)

// EventPublisher sends booking lifecycle events. Optional.
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// BookingService owns the booking lifecycle: creation-time conflict
// and window checks, the status state machine, and the temporal guard
// rules. It reads the station directory to resolve station and slot
// references.
type BookingService struct {
	bookings  BookingStore
	stations  StationStore
	locker    SlotLocker
	tokens    TokenSource
	publisher EventPublisher
	clock     Clock
	logger    *zap.Logger
}

// NewBookingService builds the engine. locker and publisher may be nil;
// without a locker concurrent creates fall back to the unserialized
// check-then-insert path.
func NewBookingService(
	bookings BookingStore,
	stations StationStore,
	locker SlotLocker,
	tokens TokenSource,
	publisher EventPublisher,
	clock Clock,
	logger *zap.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock()
	}
	if tokens == nil {
		tokens = RandomTokenSource()
	}
	return &BookingService{
		bookings:  bookings,
		stations:  stations,
		locker:    locker,
		tokens:    tokens,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// CreateBookingInput carries the booking request fields.
type CreateBookingInput struct {
	NIC       string    `json:"nic"`
	Name      string    `json:"name"`
	StationID string    `json:"station_id"`
	SlotID    string    `json:"slot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// overlaps implements the half-open interval rule: [aStart,aEnd) and
// [bStart,bEnd) conflict iff aStart < bEnd && bStart < aEnd. A booking
// ending exactly when another starts does not conflict.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// resolveSlot checks that the station exists and is active and that
// the slot exists and is active.
func (s *BookingService) resolveSlot(ctx context.Context, stationID, slotID string) error {
	station, err := s.stations.GetByID(ctx, stationID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(CodeNotFound, "charging station not found")
	}
	if err != nil {
		return err
	}
	if !station.IsActive {
		return NewError(CodeStationInactive, "charging station is not active")
	}
	slot := station.SlotByID(slotID)
	if slot == nil {
		return NewError(CodeNotFound, "slot not found")
	}
	if !slot.IsActive {
		return NewError(CodeSlotInactive, "slot is not active")
	}
	return nil
}

// hasConflict scans live bookings for the slot and reports whether any
// overlaps [start, end). excludeID skips the booking being updated.
func (s *BookingService) hasConflict(ctx context.Context, stationID, slotID string, start, end time.Time, excludeID string) (bool, error) {
	existing, err := s.bookings.ListForSlot(ctx, stationID, slotID)
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if b.ID == excludeID || b.Status == models.BookingStatusCancelled {
			continue
		}
		if overlaps(start, end, b.StartTime, b.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

// lockSlot serializes check-and-insert per (station, slot). With no
// locker configured the caller proceeds unserialized.
func (s *BookingService) lockSlot(ctx context.Context, stationID, slotID string) func() {
	if s.locker == nil {
		return func() {}
	}
	release, err := s.locker.Lock(ctx, stationID, slotID)
	if err != nil {
		s.logger.Warn("slot lock unavailable, proceeding unserialized",
			zap.String("station_id", stationID), zap.String("slot_id", slotID), zap.Error(err))
		return func() {}
	}
	return release
}

// Create validates the request against the 7-day lookahead and the
// cross-booking interval invariant, then persists a Pending booking.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if err := s.resolveSlot(ctx, input.StationID, input.SlotID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if input.StartTime.Sub(now) > maxLookahead {
		return nil, NewError(CodeOutOfWindow, "reservation date must be within 7 days")
	}

	release := s.lockSlot(ctx, input.StationID, input.SlotID)
	defer release()

	conflict, err := s.hasConflict(ctx, input.StationID, input.SlotID, input.StartTime, input.EndTime, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		metrics.BookingConflicts.Inc()
		return nil, NewError(CodeSlotUnavailable, "slot is already booked for this time range")
	}

	booking := &models.Booking{
		ID:        newID(),
		NIC:       input.NIC,
		Name:      input.Name,
		StationID: input.StationID,
		SlotID:    input.SlotID,
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime.UTC(),
		Status:    models.BookingStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bookings.Insert(ctx, booking); err != nil {
		return nil, err
	}
	metrics.BookingsCreated.Inc()
	return booking, nil
}

// GetByID loads one booking.
func (s *BookingService) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(CodeNotFound, "booking not found")
	}
	return booking, err
}

// List returns every booking.
func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	return s.bookings.List(ctx)
}

// ListByNIC returns the owner's bookings.
func (s *BookingService) ListByNIC(ctx context.Context, nic string) ([]models.Booking, error) {
	return s.bookings.ListByNIC(ctx, nic)
}

// Update overwrites the mutable fields of an existing booking. It is
// rejected inside the 12-hour cutoff before the stored start time, and
// the conflict scan is re-run against the new interval (excluding the
// booking itself).
func (s *BookingService) Update(ctx context.Context, id string, input CreateBookingInput) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.StartTime.Sub(s.clock.Now()) < modifyCutoff {
		return NewError(CodeTooLateToModify, "cannot update booking within 12 hours of start time")
	}
	if err := s.resolveSlot(ctx, input.StationID, input.SlotID); err != nil {
		return err
	}

	release := s.lockSlot(ctx, input.StationID, input.SlotID)
	defer release()

	conflict, err := s.hasConflict(ctx, input.StationID, input.SlotID, input.StartTime, input.EndTime, id)
	if err != nil {
		return err
	}
	if conflict {
		metrics.BookingConflicts.Inc()
		return NewError(CodeSlotUnavailable, "slot is already booked for this time range")
	}

	existing.NIC = input.NIC
	existing.Name = input.Name
	existing.StationID = input.StationID
	existing.SlotID = input.SlotID
	existing.StartTime = input.StartTime.UTC()
	existing.EndTime = input.EndTime.UTC()
	existing.UpdatedAt = s.clock.Now()
	return s.bookings.Update(ctx, existing)
}

// transitions is the booking state machine. Completed and Cancelled
// are terminal; anything not listed fails with InvalidTransition.
var transitions = map[string]map[string]bool{
	models.BookingStatusPending: {
		models.BookingStatusApproved:  true,
		models.BookingStatusCancelled: true,
	},
	models.BookingStatusApproved: {
		models.BookingStatusCompleted: true,
		models.BookingStatusCancelled: true,
	},
	models.BookingStatusInProgress: {
		models.BookingStatusCompleted: true,
	},
}

func canTransition(from, to string) bool {
	return transitions[from][to]
}

// Cancel marks a booking Cancelled, outside the 12-hour cutoff.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canTransition(booking.Status, models.BookingStatusCancelled) {
		return NewError(CodeInvalidTransition, "booking cannot be cancelled from status "+booking.Status)
	}
	if booking.StartTime.Sub(s.clock.Now()) < modifyCutoff {
		return NewError(CodeTooLateToModify, "cannot cancel booking within 12 hours of start time")
	}
	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = s.clock.Now()
	if err := s.bookings.Update(ctx, booking); err != nil {
		return err
	}
	s.publish(ctx, events.KindCancelled, booking)
	return nil
}

// Approve moves a Pending booking to Approved and assigns a fresh
// opaque QR token.
func (s *BookingService) Approve(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canTransition(booking.Status, models.BookingStatusApproved) {
		return NewError(CodeInvalidTransition, "booking cannot be approved from status "+booking.Status)
	}
	booking.Status = models.BookingStatusApproved
	booking.QRToken = s.tokens.Token()
	booking.UpdatedAt = s.clock.Now()
	if err := s.bookings.Update(ctx, booking); err != nil {
		return err
	}
	s.publish(ctx, events.KindApproved, booking)
	return nil
}

// Complete marks an Approved (or operator-started InProgress) booking
// Completed.
func (s *BookingService) Complete(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canTransition(booking.Status, models.BookingStatusCompleted) {
		return NewError(CodeInvalidTransition, "booking cannot be completed from status "+booking.Status)
	}
	booking.Status = models.BookingStatusCompleted
	booking.UpdatedAt = s.clock.Now()
	return s.bookings.Update(ctx, booking)
}

func (s *BookingService) publish(ctx context.Context, kind string, booking *models.Booking) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.BookingEvent{
		Kind:      kind,
		BookingID: booking.ID,
		NIC:       booking.NIC,
		StationID: booking.StationID,
		SlotID:    booking.SlotID,
		Status:    booking.Status,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
		OccursAt:  s.clock.Now(),
	})
	if err != nil {
		s.logger.Warn("booking event publish failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}
}

// details joins one booking with its station and slot. Returns
// repository.ErrNotFound when either reference no longer resolves.
func (s *BookingService) details(ctx context.Context, booking *models.Booking) (*models.BookingDetails, error) {
	station, err := s.stations.GetByID(ctx, booking.StationID)
	if err != nil {
		return nil, err
	}
	slot := station.SlotByID(booking.SlotID)
	if slot == nil {
		return nil, repository.ErrNotFound
	}
	return &models.BookingDetails{
		ID:             booking.ID,
		NIC:            booking.NIC,
		Name:           booking.Name,
		Status:         booking.Status,
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		StationID:      station.ID,
		StationName:    station.Name,
		StationAddress: station.Address,
		StationType:    station.Type,
		SlotID:         slot.ID,
		SlotCode:       slot.Code,
		ConnectorType:  slot.ConnectorType,
		PowerKw:        slot.PowerKw,
	}, nil
}

// GetDetails returns the denormalized display view of one booking.
// A dangling station or slot reference surfaces as NotFound.
func (s *BookingService) GetDetails(ctx context.Context, id string) (*models.BookingDetails, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := s.details(ctx, booking)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(CodeNotFound, "booking references a missing station or slot")
	}
	return d, err
}

// ListDetails returns the display view of all bookings. Entries whose
// station or slot no longer resolves are skipped; this read path stays
// tolerant for list views.
func (s *BookingService) ListDetails(ctx context.Context) ([]models.BookingDetails, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.BookingDetails, 0, len(bookings))
	for i := range bookings {
		d, err := s.details(ctx, &bookings[i])
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}
