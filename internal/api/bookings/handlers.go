// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/pricing"
	"github.com/courtsidehq/courtside/internal/store"
)

// Notifier is told about confirmed bookings. Notification failures never
// affect the booking itself.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, b booking.Booking, courtName string) error
}

var (
	database *db.DB
	engine   pricing.Engine
	notifier Notifier
	initOnce sync.Once
)

const (
	bookingsQueryTimeout = 5 * time.Second
	notifyTimeout        = 10 * time.Second
)

// InitHandlers must be called during server startup before handling
// requests. The notifier may be nil when email is not configured.
func InitHandlers(d *db.DB, e pricing.Engine, n Notifier) {
	if d == nil {
		return
	}
	initOnce.Do(func() {
		database = d
		engine = e
		notifier = n
	})
}

// GET /bookings
func HandleListBookings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	rows, err := database.Queries.ListBookings(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list bookings")
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}

	out := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, toBooking(row))
	}
	apiutil.WriteJSON(w, r, http.StatusOK, out)
}

func toBooking(row store.Booking) booking.Booking {
	b := booking.Booking{
		ID:        row.ID,
		UserName:  row.UserName,
		CourtID:   row.CourtID,
		Rackets:   row.Rackets,
		Shoes:     row.Shoes,
		StartTime: row.StartTime.UTC(),
		EndTime:   row.EndTime.UTC(),
		Price:     row.Price,
	}
	if row.CoachID.Valid {
		coachID := row.CoachID.Int64
		b.CoachID = &coachID
	}
	return b
}

// POST /bookings
//
// The create runs in one transaction so the conflict and equipment checks
// and the insert observe the same state. Rejection messages are written as
// the plain response body; clients surface them verbatim.
func HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if database == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req booking.Request
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" {
		http.Error(w, "userName is required", http.StatusBadRequest)
		return
	}
	if req.CourtID <= 0 {
		http.Error(w, "courtId must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.Rackets < 0 || req.Shoes < 0 {
		http.Error(w, "equipment counts must be 0 or greater", http.StatusBadRequest)
		return
	}
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()
	if start.IsZero() || end.IsZero() {
		http.Error(w, "startTime and endTime are required", http.StatusBadRequest)
		return
	}
	if !start.Before(end) {
		http.Error(w, "startTime must be before endTime", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingsQueryTimeout)
	defer cancel()

	var created booking.Booking
	var courtName string
	err := database.RunInTx(ctx, func(tx *db.DB) error {
		court, err := tx.Queries.GetCourt(ctx, req.CourtID)
		if err != nil {
			return err
		}
		courtName = court.Name

		var coach *store.Coach
		if req.CoachID != nil {
			c, err := tx.Queries.GetCoach(ctx, *req.CoachID)
			if err != nil {
				return err
			}
			coach = &c
		}

		if err := apiutil.EnsureCourtFree(ctx, tx.Queries, court.ID, start, end); err != nil {
			return err
		}
		if coach != nil {
			if err := apiutil.EnsureCoachFree(ctx, tx.Queries, coach.ID, start, end); err != nil {
				return err
			}
		}
		requested := map[string]int{
			string(booking.KindRacket): req.Rackets,
			string(booking.KindShoes):  req.Shoes,
		}
		if err := apiutil.EnsureEquipmentAvailable(ctx, tx.Queries, court.ID, start, end, requested); err != nil {
			return err
		}

		rules, err := tx.Queries.ListPricingRules(ctx)
		if err != nil {
			return err
		}
		price := engine.Price(court, coach, rules, start, end)

		params := store.CreateBookingParams{
			UserName:  req.UserName,
			CourtID:   court.ID,
			Rackets:   req.Rackets,
			Shoes:     req.Shoes,
			StartTime: start,
			EndTime:   end,
			Price:     price,
		}
		if coach != nil {
			params.CoachID = sql.NullInt64{Int64: coach.ID, Valid: true}
		}
		id, err := tx.Queries.CreateBooking(ctx, params)
		if err != nil {
			return err
		}

		created = booking.Booking{
			ID:        id,
			UserName:  req.UserName,
			CourtID:   court.ID,
			CoachID:   req.CoachID,
			Rackets:   req.Rackets,
			Shoes:     req.Shoes,
			StartTime: start,
			EndTime:   end,
			Price:     price,
		}
		return nil
	})
	if err != nil {
		writeCreateError(w, r, err)
		return
	}

	logger.Info().
		Int64("booking_id", created.ID).
		Int64("court_id", created.CourtID).
		Time("start", created.StartTime).
		Float64("price", created.Price).
		Msg("Booking created")

	if notifier != nil {
		b := created
		name := courtName
		notifyLogger := logger.With().Int64("booking_id", b.ID).Logger()
		go func() {
			nctx, ncancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer ncancel()
			if err := notifier.NotifyBookingCreated(nctx, b, name); err != nil {
				notifyLogger.Warn().Err(err).Msg("Failed to send booking notification")
			}
		}()
	}

	apiutil.WriteJSON(w, r, http.StatusCreated, created)
}

func writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var availErr apiutil.AvailabilityError
	if errors.As(err, &availErr) {
		http.Error(w, availErr.Error(), http.StatusConflict)
		return
	}
	var conflictErr apiutil.ConflictError
	if errors.As(err, &conflictErr) {
		http.Error(w, conflictErr.Error(), http.StatusConflict)
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "court or coach not found", http.StatusNotFound)
		return
	}
	logger.Error().Err(err).Msg("Failed to create booking")
	http.Error(w, "Failed to create booking", http.StatusInternalServerError)
}
