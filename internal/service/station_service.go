package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"evcharge/internal/models"
	"evcharge/internal/repository"
)

// Station aggregates are written back whole; on a stale version the
// read-mutate-write loop is retried this many times.
const replaceAttempts = 3

// StationService is the station directory: it owns station records,
// their schedules and their slot collections, and answers the nearby
// search. Structural mutations are guarded against live bookings.
type StationService struct {
	stations StationStore
	bookings BookingStore
	clock    Clock
	logger   *zap.Logger
}

// NewStationService builds the directory.
func NewStationService(stations StationStore, bookings BookingStore, clock Clock, logger *zap.Logger) *StationService {
	if clock == nil {
		clock = SystemClock()
	}
	return &StationService{stations: stations, bookings: bookings, clock: clock, logger: logger}
}

// SlotInput carries slot fields for create and update operations.
type SlotInput struct {
	Code          string   `json:"code"`
	ConnectorType string   `json:"connector_type"`
	PowerKw       *float64 `json:"power_kw"`
	IsActive      bool     `json:"is_active"`
}

// CreateStationInput carries the full station shape for creation.
type CreateStationInput struct {
	Name      string                  `json:"name"`
	Address   string                  `json:"address"`
	Latitude  float64                 `json:"latitude"`
	Longitude float64                 `json:"longitude"`
	Type      string                  `json:"type"`
	Schedules []models.ScheduleWindow `json:"schedules"`
	Slots     []SlotInput             `json:"slots"`
}

// UpdateStationInput overwrites station details. A nil Schedules keeps
// the stored schedule; a non-nil one replaces it wholesale.
type UpdateStationInput struct {
	Name      string                  `json:"name"`
	Address   string                  `json:"address"`
	Latitude  float64                 `json:"latitude"`
	Longitude float64                 `json:"longitude"`
	Type      string                  `json:"type"`
	IsActive  bool                    `json:"is_active"`
	Schedules []models.ScheduleWindow `json:"schedules"`
}

// NearbyQuery filters the nearby search.
type NearbyQuery struct {
	Lat         float64
	Lng         float64
	RadiusKm    float64
	Type        string
	AvailableAt *time.Time
}

// normalizeType maps arbitrary input to "AC"/"DC", defaulting to AC.
func normalizeType(t string) string {
	if strings.ToUpper(strings.TrimSpace(t)) == models.StationTypeDC {
		return models.StationTypeDC
	}
	return models.StationTypeAC
}

// Create validates the schedule, assigns ids to the supplied slots and
// persists a new active station.
func (s *StationService) Create(ctx context.Context, input CreateStationInput, actor string) (*models.Station, error) {
	if err := ValidateSchedule(input.Schedules); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	station := &models.Station{
		ID:        newID(),
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Type:      normalizeType(input.Type),
		IsActive:  true,
		Schedules: input.Schedules,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
	}
	for _, in := range input.Slots {
		station.Slots = append(station.Slots, models.Slot{
			ID:            newID(),
			Code:          strings.TrimSpace(in.Code),
			ConnectorType: in.ConnectorType,
			PowerKw:       in.PowerKw,
			IsActive:      in.IsActive,
		})
	}

	if err := s.stations.Insert(ctx, station); err != nil {
		return nil, err
	}
	return station, nil
}

// GetByID loads one station.
func (s *StationService) GetByID(ctx context.Context, id string) (*models.Station, error) {
	station, err := s.stations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(CodeNotFound, "charging station not found")
	}
	return station, err
}

// List returns stations, optionally filtered by type and active flag.
func (s *StationService) List(ctx context.Context, typeFilter string, isActive *bool) ([]models.Station, error) {
	all, err := s.stations.List(ctx)
	if err != nil {
		return nil, err
	}
	if typeFilter == "" && isActive == nil {
		return all, nil
	}
	normalized := ""
	if typeFilter != "" {
		normalized = normalizeType(typeFilter)
	}
	filtered := make([]models.Station, 0, len(all))
	for _, st := range all {
		if normalized != "" && st.Type != normalized {
			continue
		}
		if isActive != nil && st.IsActive != *isActive {
			continue
		}
		filtered = append(filtered, st)
	}
	return filtered, nil
}

// mutate runs a read-mutate-write loop with optimistic-concurrency
// retries. fn may return a business error to abort.
func (s *StationService) mutate(ctx context.Context, id string, fn func(*models.Station) error) (*models.Station, error) {
	var lastErr error
	for attempt := 0; attempt < replaceAttempts; attempt++ {
		station, err := s.stations.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(CodeNotFound, "charging station not found")
		}
		if err != nil {
			return nil, err
		}
		if err := fn(station); err != nil {
			return nil, err
		}
		station.UpdatedAt = s.clock.Now()
		if err := s.stations.Replace(ctx, station); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				if s.logger != nil {
					s.logger.Warn("station replace conflict, retrying", zap.String("station_id", id))
				}
				lastErr = err
				continue
			}
			return nil, err
		}
		return station, nil
	}
	return nil, lastErr
}

// UpdateDetails overwrites name/address/coordinates/type/active flag
// and, when supplied, replaces the schedule wholesale.
func (s *StationService) UpdateDetails(ctx context.Context, id string, input UpdateStationInput, actor string) error {
	if input.Schedules != nil {
		if err := ValidateSchedule(input.Schedules); err != nil {
			return err
		}
	}
	_, err := s.mutate(ctx, id, func(st *models.Station) error {
		st.Name = strings.TrimSpace(input.Name)
		st.Address = strings.TrimSpace(input.Address)
		st.Latitude = input.Latitude
		st.Longitude = input.Longitude
		st.Type = normalizeType(input.Type)
		st.IsActive = input.IsActive
		st.UpdatedBy = actor
		if input.Schedules != nil {
			st.Schedules = input.Schedules
		}
		return nil
	})
	return err
}

// UpdateSchedule validates and replaces the schedule only.
func (s *StationService) UpdateSchedule(ctx context.Context, id string, windows []models.ScheduleWindow, actor string) error {
	if err := ValidateSchedule(windows); err != nil {
		return err
	}
	_, err := s.mutate(ctx, id, func(st *models.Station) error {
		st.Schedules = windows
		st.UpdatedBy = actor
		return nil
	})
	return err
}

// Activate re-enables an inactive station.
func (s *StationService) Activate(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(st *models.Station) error {
		if st.IsActive {
			return NewError(CodeAlreadyActive, "station is already active")
		}
		st.IsActive = true
		return nil
	})
	return err
}

// hasBlockingBookings is the single guard predicate shared by
// deactivate and delete, for stations (slotID == "") and for slots.
func (s *StationService) hasBlockingBookings(ctx context.Context, stationID, slotID string) (bool, error) {
	return s.bookings.HasBlocking(ctx, stationID, slotID, s.clock.Now())
}

// Deactivate soft-disables a station unless live bookings reference it.
func (s *StationService) Deactivate(ctx context.Context, id string) error {
	_, err := s.mutate(ctx, id, func(st *models.Station) error {
		blocked, err := s.hasBlockingBookings(ctx, id, "")
		if err != nil {
			return err
		}
		if blocked {
			return NewError(CodeHasActiveBookings, "cannot deactivate: station has active or upcoming bookings")
		}
		st.IsActive = false
		return nil
	})
	return err
}

// Delete removes a station permanently, under the same guard as
// Deactivate.
func (s *StationService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	blocked, err := s.hasBlockingBookings(ctx, id, "")
	if err != nil {
		return err
	}
	if blocked {
		return NewError(CodeHasActiveBookings, "cannot delete: station has active or upcoming bookings")
	}
	return s.stations.Delete(ctx, id)
}

// ListSlots returns the station's slots ordered by code.
func (s *StationService) ListSlots(ctx context.Context, stationID string) ([]models.Slot, error) {
	station, err := s.GetByID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	slots := make([]models.Slot, len(station.Slots))
	copy(slots, station.Slots)
	sort.Slice(slots, func(i, j int) bool { return slots[i].Code < slots[j].Code })
	return slots, nil
}

// codeTaken checks the case-insensitive uniqueness of a slot code,
// ignoring the slot with excludeID.
func codeTaken(station *models.Station, code, excludeID string) bool {
	for _, sl := range station.Slots {
		if sl.ID == excludeID {
			continue
		}
		if strings.EqualFold(sl.Code, code) {
			return true
		}
	}
	return false
}

// AddSlot appends a new slot with a fresh id.
func (s *StationService) AddSlot(ctx context.Context, stationID string, input SlotInput) (*models.Slot, error) {
	var created models.Slot
	_, err := s.mutate(ctx, stationID, func(st *models.Station) error {
		code := strings.TrimSpace(input.Code)
		if codeTaken(st, code, "") {
			return NewError(CodeDuplicateSlotCode, "a slot with the same code already exists")
		}
		created = models.Slot{
			ID:            newID(),
			Code:          code,
			ConnectorType: input.ConnectorType,
			PowerKw:       input.PowerKw,
			IsActive:      input.IsActive,
		}
		st.Slots = append(st.Slots, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateSlot overwrites code/connector/power/active of one slot,
// re-checking code uniqueness against the other slots.
func (s *StationService) UpdateSlot(ctx context.Context, stationID, slotID string, input SlotInput) error {
	_, err := s.mutate(ctx, stationID, func(st *models.Station) error {
		slot := st.SlotByID(slotID)
		if slot == nil {
			return NewError(CodeNotFound, "slot not found")
		}
		code := strings.TrimSpace(input.Code)
		if codeTaken(st, code, slotID) {
			return NewError(CodeDuplicateSlotCode, "a slot with the same code already exists")
		}
		slot.Code = code
		slot.ConnectorType = input.ConnectorType
		slot.PowerKw = input.PowerKw
		slot.IsActive = input.IsActive
		return nil
	})
	return err
}

// DeactivateSlot soft-disables one slot unless live bookings reference it.
func (s *StationService) DeactivateSlot(ctx context.Context, stationID, slotID string) error {
	_, err := s.mutate(ctx, stationID, func(st *models.Station) error {
		slot := st.SlotByID(slotID)
		if slot == nil {
			return NewError(CodeNotFound, "slot not found")
		}
		blocked, err := s.hasBlockingBookings(ctx, stationID, slotID)
		if err != nil {
			return err
		}
		if blocked {
			return NewError(CodeHasActiveBookings, "cannot deactivate: slot has active or upcoming bookings")
		}
		slot.IsActive = false
		return nil
	})
	return err
}

// DeleteSlot removes one slot from the collection, under the same
// guard as DeactivateSlot.
func (s *StationService) DeleteSlot(ctx context.Context, stationID, slotID string) error {
	_, err := s.mutate(ctx, stationID, func(st *models.Station) error {
		if st.SlotByID(slotID) == nil {
			return NewError(CodeNotFound, "slot not found")
		}
		blocked, err := s.hasBlockingBookings(ctx, stationID, slotID)
		if err != nil {
			return err
		}
		if blocked {
			return NewError(CodeHasActiveBookings, "cannot delete: slot has active or upcoming bookings")
		}
		kept := st.Slots[:0]
		for _, sl := range st.Slots {
			if sl.ID != slotID {
				kept = append(kept, sl)
			}
		}
		st.Slots = kept
		return nil
	})
	return err
}

// FindNearby returns active stations within radiusKm of the query
// point that have at least one active slot, optionally restricted by
// type and to stations with an open schedule window covering
// AvailableAt. Input order is preserved; no ranking.
func (s *StationService) FindNearby(ctx context.Context, q NearbyQuery) ([]models.Station, error) {
	active := true
	stations, err := s.List(ctx, q.Type, &active)
	if err != nil {
		return nil, err
	}

	result := make([]models.Station, 0, len(stations))
	for _, st := range stations {
		if HaversineKm(q.Lat, q.Lng, st.Latitude, st.Longitude) > q.RadiusKm {
			continue
		}
		if st.ActiveSlotCount() == 0 {
			continue
		}
		if q.AvailableAt != nil {
			open := false
			for _, w := range st.Schedules {
				if windowCovers(w, *q.AvailableAt) {
					open = true
					break
				}
			}
			if !open {
				continue
			}
		}
		result = append(result, st)
	}
	return result, nil
}
