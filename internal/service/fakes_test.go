package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"evcharge/internal/events"
	"evcharge/internal/models"
	"evcharge/internal/repository"
)

// stubIDs makes newID return the given values in order, then fall back
// to the real generator.
func stubIDs(t *testing.T, ids ...string) {
	t.Helper()
	original := newID
	queue := ids
	newID = func() string {
		if len(queue) == 0 {
			return original()
		}
		id := queue[0]
		queue = queue[1:]
		return id
	}
	t.Cleanup(func() { newID = original })
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

type fixedTokens struct{ value string }

func (t fixedTokens) Token() string { return t.value }

type fakeStationStore struct {
	mu       sync.Mutex
	stations map[string]*models.Station
	// fail this many Replace calls with a stale-version error
	staleReplaces int
	replaceCalls  int
}

func newFakeStationStore(stations ...*models.Station) *fakeStationStore {
	s := &fakeStationStore{stations: make(map[string]*models.Station)}
	for _, st := range stations {
		s.stations[st.ID] = cloneStation(st)
	}
	return s
}

func cloneStation(st *models.Station) *models.Station {
	c := *st
	c.Schedules = append([]models.ScheduleWindow(nil), st.Schedules...)
	c.Slots = append([]models.Slot(nil), st.Slots...)
	return &c
}

func (s *fakeStationStore) GetByID(_ context.Context, id string) (*models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneStation(st), nil
}

func (s *fakeStationStore) List(context.Context) ([]models.Station, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Station, 0, len(s.stations))
	for _, st := range s.stations {
		out = append(out, *cloneStation(st))
	}
	return out, nil
}

func (s *fakeStationStore) Insert(_ context.Context, st *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Version = 1
	s.stations[st.ID] = cloneStation(st)
	return nil
}

func (s *fakeStationStore) Replace(_ context.Context, st *models.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceCalls++
	stored, ok := s.stations[st.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if s.staleReplaces > 0 {
		s.staleReplaces--
		return repository.ErrVersionConflict
	}
	if st.Version != stored.Version {
		return repository.ErrVersionConflict
	}
	st.Version++
	s.stations[st.ID] = cloneStation(st)
	return nil
}

func (s *fakeStationStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.stations, id)
	return nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
}

func newFakeBookingStore(bookings ...*models.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		c := *b
		s.bookings[b.ID] = &c
	}
	return s
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (s *fakeBookingStore) List(context.Context) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (s *fakeBookingStore) ListByNIC(_ context.Context, nic string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.NIC == nic {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListForSlot(_ context.Context, stationID, slotID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.StationID == stationID && b.SlotID == slotID && b.Status != models.BookingStatusCancelled {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) Insert(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	s.bookings[b.ID] = &c
	return nil
}

func (s *fakeBookingStore) Update(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return repository.ErrNotFound
	}
	c := *b
	s.bookings[b.ID] = &c
	return nil
}

func (s *fakeBookingStore) HasBlocking(_ context.Context, stationID, slotID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.StationID != stationID {
			continue
		}
		if slotID != "" && b.SlotID != slotID {
			continue
		}
		switch b.Status {
		case models.BookingStatusPending, models.BookingStatusApproved, models.BookingStatusInProgress:
		default:
			continue
		}
		if !b.EndTime.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	locks    int
	releases int
	err      error
}

func (l *fakeLocker) Lock(_ context.Context, _, _ string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locks++
	return func() {
		l.mu.Lock()
		l.releases++
		l.mu.Unlock()
	}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type fakeOwnerStore struct {
	mu     sync.Mutex
	owners map[string]*models.Owner
}

func newFakeOwnerStore(owners ...*models.Owner) *fakeOwnerStore {
	s := &fakeOwnerStore{owners: make(map[string]*models.Owner)}
	for _, o := range owners {
		c := *o
		s.owners[o.NIC] = &c
	}
	return s
}

func (s *fakeOwnerStore) GetByNIC(_ context.Context, nic string) (*models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.owners[nic]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (s *fakeOwnerStore) GetByEmail(_ context.Context, email string) (*models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.owners {
		if o.Email == email {
			c := *o
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeOwnerStore) List(context.Context) ([]models.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Owner, 0, len(s.owners))
	for _, o := range s.owners {
		out = append(out, *o)
	}
	return out, nil
}

func (s *fakeOwnerStore) Insert(_ context.Context, o *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *o
	s.owners[o.NIC] = &c
	return nil
}

func (s *fakeOwnerStore) Update(_ context.Context, o *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[o.NIC]; !ok {
		return repository.ErrNotFound
	}
	c := *o
	s.owners[o.NIC] = &c
	return nil
}

func (s *fakeOwnerStore) Delete(_ context.Context, nic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[nic]; !ok {
		return repository.ErrNotFound
	}
	delete(s.owners, nic)
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *fakeUserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	c := *u
	s.users[u.Username] = &c
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) List(context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeUserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, stored := range s.users {
		if stored.ID == u.ID {
			c := *u
			s.users[name] = &c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeUserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, stored := range s.users {
		if stored.ID == id {
			delete(s.users, name)
			return nil
		}
	}
	return repository.ErrNotFound
}
