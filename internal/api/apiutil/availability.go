package apiutil

import (
	"context"
	"fmt"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
)

// AvailabilityError reports insufficient equipment for a window. Its text
// is the message surfaced verbatim to the booking client.
type AvailabilityError struct {
	Kind      string
	Available int
}

func (e AvailabilityError) Error() string {
	return fmt.Sprintf("only %d %s available for this window", e.Available, e.Kind)
}

// ConflictError reports a court or coach already booked for a window.
type ConflictError struct {
	Resource string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s is already booked for this window", e.Resource)
}

// EnsureEquipmentAvailable verifies that the requested equipment fits
// within what remains for courtID over [start, end). Kinds with no
// configured total impose no bound.
func EnsureEquipmentAvailable(ctx context.Context, q *store.Queries, courtID int64, start, end time.Time, requested map[string]int) error {
	totals, err := q.EquipmentTotals(ctx, courtID)
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}
	used, err := q.EquipmentUsed(ctx, courtID, start, end)
	if err != nil {
		return fmt.Errorf("availability check failed: %w", err)
	}

	for kind, count := range requested {
		if count <= 0 {
			continue
		}
		total, ok := totals[kind]
		if !ok {
			continue
		}
		available := total - used[kind]
		if available < 0 {
			available = 0
		}
		if count > available {
			return AvailabilityError{Kind: kind, Available: available}
		}
	}
	return nil
}

// EnsureCourtFree verifies no confirmed booking holds courtID during
// [start, end).
func EnsureCourtFree(ctx context.Context, q *store.Queries, courtID int64, start, end time.Time) error {
	count, err := q.CountCourtOverlap(ctx, courtID, start, end)
	if err != nil {
		return fmt.Errorf("court conflict check failed: %w", err)
	}
	if count > 0 {
		return ConflictError{Resource: "court"}
	}
	return nil
}

// EnsureCoachFree verifies no confirmed booking holds coachID during
// [start, end).
func EnsureCoachFree(ctx context.Context, q *store.Queries, coachID int64, start, end time.Time) error {
	count, err := q.CountCoachOverlap(ctx, coachID, start, end)
	if err != nil {
		return fmt.Errorf("coach conflict check failed: %w", err)
	}
	if count > 0 {
		return ConflictError{Resource: "coach"}
	}
	return nil
}
