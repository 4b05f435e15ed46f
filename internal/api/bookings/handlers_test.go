package bookings

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/pricing"
	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

type capturingNotifier struct {
	notified chan booking.Booking
}

func (n *capturingNotifier) NotifyBookingCreated(ctx context.Context, b booking.Booking, courtName string) error {
	n.notified <- b
	return nil
}

func setupBookingsTest(t *testing.T, n Notifier) (*db.DB, store.Court) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	court, err := testDB.Queries.CreateCourt(context.Background(), "Court A", "outdoor")
	if err != nil {
		t.Fatalf("seed court: %v", err)
	}

	database = nil
	initOnce = sync.Once{}
	InitHandlers(testDB, pricing.NewEngine(500, 300), n)

	t.Cleanup(func() {
		database = nil
		notifier = nil
		initOnce = sync.Once{}
	})

	return testDB, court
}

func createBookingBody(courtID int64, rackets, shoes int, start, end time.Time) string {
	return fmt.Sprintf(`{"userName":"Alice","courtId":%d,"coachId":null,"rackets":%d,"shoes":%d,"startTime":%q,"endTime":%q}`,
		courtID, rackets, shoes, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
}

func postBooking(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	HandleCreateBooking(rec, req)
	return rec
}

func TestHandleCreateBookingSuccess(t *testing.T) {
	fake := &capturingNotifier{notified: make(chan booking.Booking, 1)}
	testDB, court := setupBookingsTest(t, fake)
	ctx := context.Background()

	if _, err := testDB.Queries.UpsertEquipment(ctx, court.ID, "racket", 6); err != nil {
		t.Fatalf("seed equipment: %v", err)
	}

	// Monday, off-peak; outdoor base rate 300 for two hours.
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	rec := postBooking(t, createBookingBody(court.ID, 2, 0, start, end))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var created booking.Booking
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned booking id")
	}
	if created.Price != 600 {
		t.Errorf("price = %v, want 600", created.Price)
	}
	if created.Rackets != 2 {
		t.Errorf("rackets = %d, want 2", created.Rackets)
	}

	select {
	case notified := <-fake.notified:
		if notified.ID != created.ID {
			t.Errorf("notified booking %d, want %d", notified.ID, created.ID)
		}
	case <-time.After(2 * time.Second):
		t.Error("notifier was not called")
	}

	rows, err := testDB.Queries.ListBookings(ctx)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("stored %d bookings, want 1", len(rows))
	}
}

func TestHandleCreateBookingEquipmentRejection(t *testing.T) {
	testDB, court := setupBookingsTest(t, nil)
	ctx := context.Background()

	if _, err := testDB.Queries.UpsertEquipment(ctx, court.ID, "shoes", 1); err != nil {
		t.Fatalf("seed equipment: %v", err)
	}

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	rec := postBooking(t, createBookingBody(court.ID, 0, 2, start, start.Add(time.Hour)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	got := strings.TrimSpace(rec.Body.String())
	want := "only 1 shoes available for this window"
	if got != want {
		t.Errorf("body = %q, want %q", got, want)
	}

	rows, err := testDB.Queries.ListBookings(ctx)
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rejected booking was stored")
	}
}

func TestHandleCreateBookingCourtConflict(t *testing.T) {
	_, court := setupBookingsTest(t, nil)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	first := postBooking(t, createBookingBody(court.ID, 0, 0, start, start.Add(time.Hour)))
	if first.Code != http.StatusCreated {
		t.Fatalf("first booking status = %d, want 201", first.Code)
	}

	second := postBooking(t, createBookingBody(court.ID, 0, 0, start.Add(30*time.Minute), start.Add(90*time.Minute)))
	if second.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", second.Code)
	}
	got := strings.TrimSpace(second.Body.String())
	if got != "court is already booked for this window" {
		t.Errorf("body = %q", got)
	}
}

func TestHandleCreateBookingCoachConflictAndPricing(t *testing.T) {
	_, court := setupBookingsTest(t, nil)

	// Coach 1 is seeded by migrations.
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	body := func(courtID int64, s time.Time) string {
		return fmt.Sprintf(`{"userName":"Alice","courtId":%d,"coachId":1,"rackets":0,"shoes":0,"startTime":%q,"endTime":%q}`,
			courtID, s.UTC().Format(time.RFC3339), s.Add(time.Hour).UTC().Format(time.RFC3339))
	}

	first := postBooking(t, body(court.ID, start))
	if first.Code != http.StatusCreated {
		t.Fatalf("first booking status = %d, want 201; body: %s", first.Code, first.Body.String())
	}
	var created booking.Booking
	if err := json.NewDecoder(first.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Price <= 300 {
		t.Errorf("price = %v, want base rate plus coach fee", created.Price)
	}

	otherCourt, err := database.Queries.CreateCourt(context.Background(), "Court B", "outdoor")
	if err != nil {
		t.Fatalf("seed second court: %v", err)
	}

	second := postBooking(t, body(otherCourt.ID, start))
	if second.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body: %s", second.Code, second.Body.String())
	}
	if got := strings.TrimSpace(second.Body.String()); got != "coach is already booked for this window" {
		t.Errorf("body = %q", got)
	}
}

func TestHandleCreateBookingValidation(t *testing.T) {
	_, court := setupBookingsTest(t, nil)

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	rfc := func(ts time.Time) string { return ts.UTC().Format(time.RFC3339) }

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing name", fmt.Sprintf(`{"userName":"","courtId":%d,"coachId":null,"rackets":0,"shoes":0,"startTime":%q,"endTime":%q}`, court.ID, rfc(start), rfc(start.Add(time.Hour))), http.StatusBadRequest},
		{"missing court", fmt.Sprintf(`{"userName":"Alice","courtId":0,"coachId":null,"rackets":0,"shoes":0,"startTime":%q,"endTime":%q}`, rfc(start), rfc(start.Add(time.Hour))), http.StatusBadRequest},
		{"negative rackets", fmt.Sprintf(`{"userName":"Alice","courtId":%d,"coachId":null,"rackets":-1,"shoes":0,"startTime":%q,"endTime":%q}`, court.ID, rfc(start), rfc(start.Add(time.Hour))), http.StatusBadRequest},
		{"inverted window", fmt.Sprintf(`{"userName":"Alice","courtId":%d,"coachId":null,"rackets":0,"shoes":0,"startTime":%q,"endTime":%q}`, court.ID, rfc(start.Add(time.Hour)), rfc(start)), http.StatusBadRequest},
		{"unknown court", fmt.Sprintf(`{"userName":"Alice","courtId":999,"coachId":null,"rackets":0,"shoes":0,"startTime":%q,"endTime":%q}`, rfc(start), rfc(start.Add(time.Hour))), http.StatusNotFound},
		{"unknown field", fmt.Sprintf(`{"userName":"Alice","courtId":%d,"surprise":true,"startTime":%q,"endTime":%q}`, court.ID, rfc(start), rfc(start.Add(time.Hour))), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postBooking(t, tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestHandleListBookings(t *testing.T) {
	testDB, court := setupBookingsTest(t, nil)
	ctx := context.Background()

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	if _, err := testDB.Queries.CreateBooking(ctx, store.CreateBookingParams{
		UserName: "Alice", CourtID: court.ID,
		Rackets: 1, StartTime: start, EndTime: start.Add(time.Hour), Price: 300,
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	rec := httptest.NewRecorder()
	HandleListBookings(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out []booking.Booking
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d bookings, want 1", len(out))
	}
	if out[0].UserName != "Alice" || out[0].CourtID != court.ID {
		t.Errorf("unexpected booking %+v", out[0])
	}
	if !out[0].StartTime.Equal(start) {
		t.Errorf("start = %v, want %v", out[0].StartTime, start)
	}
}
