package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
	"github.com/courtsidehq/courtside/internal/testutil"
)

func seedCourt(t *testing.T, q *store.Queries, name, courtType string) store.Court {
	t.Helper()
	court, err := q.CreateCourt(context.Background(), name, courtType)
	if err != nil {
		t.Fatalf("seed court: %v", err)
	}
	return court
}

func TestEquipmentTotalsOmitsUnconfiguredKinds(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	court := seedCourt(t, q, "Court A", "indoor")
	if _, err := q.UpsertEquipment(ctx, court.ID, "racket", 6); err != nil {
		t.Fatalf("upsert equipment: %v", err)
	}

	totals, err := q.EquipmentTotals(ctx, court.ID)
	if err != nil {
		t.Fatalf("equipment totals: %v", err)
	}
	if got := totals["racket"]; got != 6 {
		t.Errorf("racket total = %d, want 6", got)
	}
	if _, ok := totals["shoes"]; ok {
		t.Errorf("shoes total should be absent when unconfigured")
	}
}

func TestUpsertEquipmentReplacesTotal(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	court := seedCourt(t, q, "Court A", "indoor")
	first, err := q.UpsertEquipment(ctx, court.ID, "shoes", 4)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := q.UpsertEquipment(ctx, court.ID, "shoes", 9)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("update path returned id %d, want existing row id %d", second.ID, first.ID)
	}

	totals, err := q.EquipmentTotals(ctx, court.ID)
	if err != nil {
		t.Fatalf("equipment totals: %v", err)
	}
	if got := totals["shoes"]; got != 9 {
		t.Errorf("shoes total = %d, want 9", got)
	}
}

func TestEquipmentUsedCountsOnlyOverlappingBookings(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	court := seedCourt(t, q, "Court A", "outdoor")

	base := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	mustBook := func(start, end time.Time, rackets, shoes int) {
		t.Helper()
		_, err := q.CreateBooking(ctx, store.CreateBookingParams{
			UserName:  "Alice",
			CourtID:   court.ID,
			Rackets:   rackets,
			Shoes:     shoes,
			StartTime: start,
			EndTime:   end,
			Price:     300,
		})
		if err != nil {
			t.Fatalf("create booking: %v", err)
		}
	}

	// Overlaps the queried window.
	mustBook(base, base.Add(time.Hour), 2, 1)
	// Ends exactly when the window starts; half-open, so no overlap.
	mustBook(base.Add(-time.Hour), base, 5, 5)
	// Starts exactly when the window ends; no overlap.
	mustBook(base.Add(time.Hour), base.Add(2*time.Hour), 3, 3)

	used, err := q.EquipmentUsed(ctx, court.ID, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("equipment used: %v", err)
	}
	if used["racket"] != 2 || used["shoes"] != 1 {
		t.Errorf("used = %v, want racket:2 shoes:1", used)
	}
}

func TestCountCourtOverlapHalfOpenWindow(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	court := seedCourt(t, q, "Court A", "indoor")
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if _, err := q.CreateBooking(ctx, store.CreateBookingParams{
		UserName: "Bob", CourtID: court.ID,
		StartTime: base, EndTime: base.Add(time.Hour), Price: 500,
	}); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	cases := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{"identical window", base, base.Add(time.Hour), 1},
		{"partial overlap", base.Add(30 * time.Minute), base.Add(90 * time.Minute), 1},
		{"adjacent before", base.Add(-time.Hour), base, 0},
		{"adjacent after", base.Add(time.Hour), base.Add(2 * time.Hour), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			count, err := q.CountCourtOverlap(ctx, court.ID, tc.start, tc.end)
			if err != nil {
				t.Fatalf("count overlap: %v", err)
			}
			if count != tc.want {
				t.Errorf("count = %d, want %d", count, tc.want)
			}
		})
	}
}

func TestCountCoachOverlapIgnoresCoachlessBookings(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	court := seedCourt(t, q, "Court A", "indoor")
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if _, err := q.CreateBooking(ctx, store.CreateBookingParams{
		UserName: "Bob", CourtID: court.ID,
		StartTime: base, EndTime: base.Add(time.Hour), Price: 500,
	}); err != nil {
		t.Fatalf("create booking without coach: %v", err)
	}
	if _, err := q.CreateBooking(ctx, store.CreateBookingParams{
		UserName: "Cara", CourtID: court.ID,
		CoachID:   sql.NullInt64{Int64: 1, Valid: true},
		StartTime: base, EndTime: base.Add(time.Hour), Price: 800,
	}); err != nil {
		t.Fatalf("create booking with coach: %v", err)
	}

	count, err := q.CountCoachOverlap(ctx, 1, base, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("count coach overlap: %v", err)
	}
	if count != 1 {
		t.Errorf("coach overlap = %d, want 1", count)
	}
}

func TestListBookingsStartingBetween(t *testing.T) {
	database := testutil.NewTestDB(t)
	q := database.Queries
	ctx := context.Background()

	court := seedCourt(t, q, "Court A", "outdoor")
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, start := range []time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)} {
		if _, err := q.CreateBooking(ctx, store.CreateBookingParams{
			UserName: "User", CourtID: court.ID,
			StartTime: start, EndTime: start.Add(time.Hour), Price: float64(100 * (i + 1)),
		}); err != nil {
			t.Fatalf("create booking %d: %v", i, err)
		}
	}

	rows, err := q.ListBookingsStartingBetween(ctx, base.Add(5*time.Minute), base.Add(20*time.Minute))
	if err != nil {
		t.Fatalf("list bookings starting between: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d bookings, want 1", len(rows))
	}
	if !rows[0].StartTime.UTC().Equal(base.Add(10 * time.Minute)) {
		t.Errorf("start = %v, want %v", rows[0].StartTime.UTC(), base.Add(10*time.Minute))
	}
}

func TestSeededCoachesPresent(t *testing.T) {
	database := testutil.NewTestDB(t)

	coaches, err := database.Queries.ListCoaches(context.Background())
	if err != nil {
		t.Fatalf("list coaches: %v", err)
	}
	if len(coaches) == 0 {
		t.Fatal("expected seeded coaches")
	}
	for _, coach := range coaches {
		if coach.HourlyRate <= 0 {
			t.Errorf("coach %q has non-positive rate %v", coach.Name, coach.HourlyRate)
		}
	}
}
