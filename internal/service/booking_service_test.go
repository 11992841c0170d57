package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"evcharge/internal/events"
	"evcharge/internal/models"
)

// 2026-01-05 08:00 UTC is a Monday.
var testNow = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func testStation() *models.Station {
	return &models.Station{
		ID:       "station-1",
		Name:     "Union Place",
		Address:  "200 Union Pl, Colombo",
		Latitude: 6.9271, Longitude: 79.8612,
		Type:     models.StationTypeAC,
		IsActive: true,
		Version:  1,
		Schedules: []models.ScheduleWindow{
			{DayOfWeek: 1, StartTime: "06:00", EndTime: "22:00", SlotCount: 2},
		},
		Slots: []models.Slot{
			{ID: "slot-1", Code: "A1", IsActive: true, ConnectorType: "Type2"},
			{ID: "slot-2", Code: "A2", IsActive: true, ConnectorType: "CCS"},
			{ID: "slot-3", Code: "B1", IsActive: false},
		},
	}
}

type bookingFixture struct {
	svc       *BookingService
	bookings  *fakeBookingStore
	stations  *fakeStationStore
	clock     *fixedClock
	locker    *fakeLocker
	publisher *fakePublisher
}

func newBookingFixture(t *testing.T, existing ...*models.Booking) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		bookings:  newFakeBookingStore(existing...),
		stations:  newFakeStationStore(testStation()),
		clock:     &fixedClock{now: testNow},
		locker:    &fakeLocker{},
		publisher: &fakePublisher{},
	}
	f.svc = NewBookingService(f.bookings, f.stations, f.locker, fixedTokens{value: "qr-fixed"}, f.publisher, f.clock, zap.NewNop())
	return f
}

func createErr(f *bookingFixture, in CreateBookingInput) error {
	_, err := f.svc.Create(context.Background(), in)
	return err
}

func pendingBooking(id string, start, end time.Time) *models.Booking {
	return &models.Booking{
		ID: id, NIC: "991234567V", Name: "Nimal",
		StationID: "station-1", SlotID: "slot-1",
		StartTime: start, EndTime: end,
		Status: models.BookingStatusPending,
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	f := newBookingFixture(t)
	stubIDs(t, "booking-1")

	start := testNow.Add(24 * time.Hour)
	b, err := f.svc.Create(context.Background(), CreateBookingInput{
		NIC: "991234567V", Name: "Nimal",
		StationID: "station-1", SlotID: "slot-1",
		StartTime: start, EndTime: start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.ID != "booking-1" {
		t.Fatalf("expected stubbed id, got %q", b.ID)
	}
	if b.Status != models.BookingStatusPending {
		t.Fatalf("new booking status = %q, want Pending", b.Status)
	}
	if b.QRToken != "" {
		t.Fatal("QR token must not be assigned before approval")
	}
	if f.locker.locks != 1 || f.locker.releases != 1 {
		t.Fatalf("lock acquired %d released %d, want 1/1", f.locker.locks, f.locker.releases)
	}
	stored, err := f.bookings.GetByID(context.Background(), "booking-1")
	if err != nil {
		t.Fatalf("booking not persisted: %v", err)
	}
	if !stored.StartTime.Equal(start) {
		t.Fatalf("stored start = %v, want %v", stored.StartTime, start)
	}
}

func TestCreateBookingLookaheadBoundary(t *testing.T) {
	f := newBookingFixture(t)

	in := func(start time.Time) CreateBookingInput {
		return CreateBookingInput{
			NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
			StartTime: start, EndTime: start.Add(time.Hour),
		}
	}

	if _, err := f.svc.Create(context.Background(), in(testNow.Add(6*24*time.Hour))); err != nil {
		t.Fatalf("booking 6 days out rejected: %v", err)
	}
	// Exactly 7 days out is still inside the window.
	if _, err := f.svc.Create(context.Background(), in(testNow.Add(7*24*time.Hour))); err != nil {
		t.Fatalf("booking exactly at the boundary rejected: %v", err)
	}
	assertCode(t, createErr(f, in(testNow.Add(8*24*time.Hour))), CodeOutOfWindow)
}

func TestCreateBookingConflicts(t *testing.T) {
	start := testNow.Add(26 * time.Hour) // 10:00 next day
	f := newBookingFixture(t, pendingBooking("existing", start, start.Add(time.Hour)))

	// Back-to-back is allowed: [10,11) then [11,12).
	if _, err := f.svc.Create(context.Background(), CreateBookingInput{
		NIC: "881234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour),
	}); err != nil {
		t.Fatalf("adjacent booking rejected: %v", err)
	}

	// [10:30,11:30) overlaps [10,11).
	_, err := f.svc.Create(context.Background(), CreateBookingInput{
		NIC: "881234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start.Add(30 * time.Minute), EndTime: start.Add(90 * time.Minute),
	})
	assertCode(t, err, CodeSlotUnavailable)

	// Same interval on another slot is fine.
	if _, err := f.svc.Create(context.Background(), CreateBookingInput{
		NIC: "881234567V", StationID: "station-1", SlotID: "slot-2",
		StartTime: start, EndTime: start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("same interval on different slot rejected: %v", err)
	}
}

func TestCreateBookingIgnoresCancelled(t *testing.T) {
	start := testNow.Add(26 * time.Hour)
	cancelled := pendingBooking("old", start, start.Add(time.Hour))
	cancelled.Status = models.BookingStatusCancelled
	f := newBookingFixture(t, cancelled)

	if _, err := f.svc.Create(context.Background(), CreateBookingInput{
		NIC: "881234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start, EndTime: start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("cancelled booking should not block: %v", err)
	}
}

func TestCreateBookingResolvesStationAndSlot(t *testing.T) {
	f := newBookingFixture(t)
	start := testNow.Add(24 * time.Hour)
	in := CreateBookingInput{
		NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start, EndTime: start.Add(time.Hour),
	}

	in.StationID = "missing"
	assertCode(t, createErr(f, in), CodeNotFound)

	in.StationID = "station-1"
	in.SlotID = "missing"
	assertCode(t, createErr(f, in), CodeNotFound)

	in.SlotID = "slot-3" // inactive
	assertCode(t, createErr(f, in), CodeSlotInactive)

	st, _ := f.stations.GetByID(context.Background(), "station-1")
	st.IsActive = false
	if err := f.stations.Replace(context.Background(), st); err != nil {
		t.Fatalf("deactivate station: %v", err)
	}
	in.SlotID = "slot-1"
	assertCode(t, createErr(f, in), CodeStationInactive)
}

func TestCreateBookingProceedsWhenLockerFails(t *testing.T) {
	f := newBookingFixture(t)
	f.locker.err = context.DeadlineExceeded

	start := testNow.Add(24 * time.Hour)
	if _, err := f.svc.Create(context.Background(), CreateBookingInput{
		NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start, EndTime: start.Add(time.Hour),
	}); err != nil {
		t.Fatalf("lock failure must not fail the booking: %v", err)
	}
}

func TestUpdateBookingCutoff(t *testing.T) {
	near := pendingBooking("b-near", testNow.Add(11*time.Hour), testNow.Add(12*time.Hour))
	far := pendingBooking("b-far", testNow.Add(13*time.Hour), testNow.Add(14*time.Hour))
	f := newBookingFixture(t, near, far)

	newStart := testNow.Add(30 * time.Hour)
	in := CreateBookingInput{
		NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: newStart, EndTime: newStart.Add(time.Hour),
	}

	assertCode(t, f.svc.Update(context.Background(), "b-near", in), CodeTooLateToModify)

	if err := f.svc.Update(context.Background(), "b-far", in); err != nil {
		t.Fatalf("update outside cutoff rejected: %v", err)
	}
	got, _ := f.bookings.GetByID(context.Background(), "b-far")
	if !got.StartTime.Equal(newStart) {
		t.Fatalf("start not updated: %v", got.StartTime)
	}
	if !got.UpdatedAt.Equal(testNow) {
		t.Fatalf("updated_at not restamped: %v", got.UpdatedAt)
	}
}

func TestUpdateBookingSkipsLookaheadCheck(t *testing.T) {
	start := testNow.Add(26 * time.Hour)
	f := newBookingFixture(t, pendingBooking("b-1", start, start.Add(time.Hour)))

	// Only creation enforces the 7-day window; an update may move the
	// booking past it.
	farStart := testNow.Add(20 * 24 * time.Hour)
	if err := f.svc.Update(context.Background(), "b-1", CreateBookingInput{
		NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: farStart, EndTime: farStart.Add(time.Hour),
	}); err != nil {
		t.Fatalf("update past the creation lookahead rejected: %v", err)
	}
	got, _ := f.bookings.GetByID(context.Background(), "b-1")
	if !got.StartTime.Equal(farStart) {
		t.Fatalf("start not moved: %v", got.StartTime)
	}
}

func TestUpdateBookingExcludesItselfFromConflictScan(t *testing.T) {
	start := testNow.Add(26 * time.Hour)
	f := newBookingFixture(t, pendingBooking("b-1", start, start.Add(time.Hour)))

	// Shift within its own old interval; only itself overlaps.
	if err := f.svc.Update(context.Background(), "b-1", CreateBookingInput{
		NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start.Add(15 * time.Minute), EndTime: start.Add(75 * time.Minute),
	}); err != nil {
		t.Fatalf("self-overlap must not conflict: %v", err)
	}
}

func TestUpdateBookingRechecksConflicts(t *testing.T) {
	start := testNow.Add(26 * time.Hour)
	f := newBookingFixture(t,
		pendingBooking("b-1", start, start.Add(time.Hour)),
		pendingBooking("b-2", start.Add(2*time.Hour), start.Add(3*time.Hour)),
	)

	err := f.svc.Update(context.Background(), "b-1", CreateBookingInput{
		NIC: "991234567V", StationID: "station-1", SlotID: "slot-1",
		StartTime: start.Add(2 * time.Hour), EndTime: start.Add(3 * time.Hour),
	})
	assertCode(t, err, CodeSlotUnavailable)
}

func TestCancelBooking(t *testing.T) {
	b := pendingBooking("b-1", testNow.Add(26*time.Hour), testNow.Add(27*time.Hour))
	f := newBookingFixture(t, b)

	if err := f.svc.Cancel(context.Background(), "b-1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := f.bookings.GetByID(context.Background(), "b-1")
	if got.Status != models.BookingStatusCancelled {
		t.Fatalf("status = %q, want Cancelled", got.Status)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != events.KindCancelled {
		t.Fatalf("expected one cancelled event, got %+v", f.publisher.events)
	}
}

func TestCancelBookingInsideCutoff(t *testing.T) {
	b := pendingBooking("b-1", testNow.Add(2*time.Hour), testNow.Add(3*time.Hour))
	f := newBookingFixture(t, b)
	assertCode(t, f.svc.Cancel(context.Background(), "b-1"), CodeTooLateToModify)
}

func TestApproveAssignsToken(t *testing.T) {
	b := pendingBooking("b-1", testNow.Add(26*time.Hour), testNow.Add(27*time.Hour))
	f := newBookingFixture(t, b)

	if err := f.svc.Approve(context.Background(), "b-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, _ := f.bookings.GetByID(context.Background(), "b-1")
	if got.Status != models.BookingStatusApproved {
		t.Fatalf("status = %q, want Approved", got.Status)
	}
	if got.QRToken != "qr-fixed" {
		t.Fatalf("qr token = %q, want fixed test token", got.QRToken)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Kind != events.KindApproved {
		t.Fatalf("expected one approved event, got %+v", f.publisher.events)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from string
		op   func(*BookingService, context.Context, string) error
		code string // expected failure code, "" for success
		want string
	}{
		{"approve pending", models.BookingStatusPending, (*BookingService).Approve, "", models.BookingStatusApproved},
		{"approve approved", models.BookingStatusApproved, (*BookingService).Approve, CodeInvalidTransition, ""},
		{"approve completed", models.BookingStatusCompleted, (*BookingService).Approve, CodeInvalidTransition, ""},
		{"approve cancelled", models.BookingStatusCancelled, (*BookingService).Approve, CodeInvalidTransition, ""},
		{"complete approved", models.BookingStatusApproved, (*BookingService).Complete, "", models.BookingStatusCompleted},
		{"complete in-progress", models.BookingStatusInProgress, (*BookingService).Complete, "", models.BookingStatusCompleted},
		{"complete pending", models.BookingStatusPending, (*BookingService).Complete, CodeInvalidTransition, ""},
		{"complete cancelled", models.BookingStatusCancelled, (*BookingService).Complete, CodeInvalidTransition, ""},
		{"cancel approved", models.BookingStatusApproved, (*BookingService).Cancel, "", models.BookingStatusCancelled},
		{"cancel completed", models.BookingStatusCompleted, (*BookingService).Cancel, CodeInvalidTransition, ""},
		{"cancel in-progress", models.BookingStatusInProgress, (*BookingService).Cancel, CodeInvalidTransition, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := pendingBooking("b-1", testNow.Add(26*time.Hour), testNow.Add(27*time.Hour))
			b.Status = tc.from
			f := newBookingFixture(t, b)

			err := tc.op(f.svc, context.Background(), "b-1")
			if tc.code != "" {
				assertCode(t, err, tc.code)
				return
			}
			if err != nil {
				t.Fatalf("transition failed: %v", err)
			}
			got, _ := f.bookings.GetByID(context.Background(), "b-1")
			if got.Status != tc.want {
				t.Fatalf("status = %q, want %q", got.Status, tc.want)
			}
		})
	}
}

func TestGetDetails(t *testing.T) {
	b := pendingBooking("b-1", testNow.Add(26*time.Hour), testNow.Add(27*time.Hour))
	f := newBookingFixture(t, b)

	d, err := f.svc.GetDetails(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if d.StationName != "Union Place" || d.SlotCode != "A1" || d.ConnectorType != "Type2" {
		t.Fatalf("unexpected join: %+v", d)
	}
}

func TestGetDetailsDanglingSlot(t *testing.T) {
	b := pendingBooking("b-1", testNow.Add(26*time.Hour), testNow.Add(27*time.Hour))
	b.SlotID = "gone"
	f := newBookingFixture(t, b)

	_, err := f.svc.GetDetails(context.Background(), "b-1")
	assertCode(t, err, CodeNotFound)
}

func TestListDetailsSkipsDangling(t *testing.T) {
	ok := pendingBooking("b-ok", testNow.Add(26*time.Hour), testNow.Add(27*time.Hour))
	dangling := pendingBooking("b-gone", testNow.Add(28*time.Hour), testNow.Add(29*time.Hour))
	dangling.StationID = "deleted-station"
	f := newBookingFixture(t, ok, dangling)

	out, err := f.svc.ListDetails(context.Background())
	if err != nil {
		t.Fatalf("list details: %v", err)
	}
	if len(out) != 1 || out[0].ID != "b-ok" {
		t.Fatalf("expected only the resolvable booking, got %+v", out)
	}
}
