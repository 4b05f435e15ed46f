// internal/scheduler/reminders.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
)

const (
	defaultReminderHoursBefore = 24
	reminderJobWindow          = 15 * time.Minute
)

// RegisterReminderJobs registers the booking reminder task. The cron
// cadence and the job window must line up: the job runs every 15 minutes
// and each run covers the next 15-minute slice of the lookahead horizon,
// so each booking is reminded about exactly once.
func RegisterReminderJobs(database *db.DB, notifier *email.BookingNotifier, cfg config.RemindersConfig) error {
	if database == nil {
		return fmt.Errorf("reminder jobs require database")
	}

	hoursBefore := cfg.HoursBefore
	if hoursBefore <= 0 {
		hoursBefore = defaultReminderHoursBefore
	}
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "*/15 * * * *"
	}

	jobName := "booking_reminders"
	jobLogger := log.With().
		Str("component", "booking_reminders_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if notifier == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email not configured")
			return
		}

		now := time.Now().UTC()
		windowStart := now.Add(time.Duration(hoursBefore) * time.Hour)
		windowEnd := windowStart.Add(reminderJobWindow)

		rows, err := database.Queries.ListBookingsStartingBetween(ctx, windowStart, windowEnd)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Failed to load bookings for reminder job")
			return
		}

		for _, row := range rows {
			court, err := database.Queries.GetCourt(ctx, row.CourtID)
			if err != nil {
				jobLogger.Error().Err(err).Int64("booking_id", row.ID).Msg("Failed to load court for reminder")
				continue
			}

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

			if err := notifier.NotifyUpcomingBooking(ctx, b, court.Name); err != nil {
				jobLogger.Error().Err(err).Int64("booking_id", row.ID).Msg("Failed to send booking reminder")
			}
		}
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add booking reminder job: %w", err)
	}

	jobLogger.Info().Msg("Booking reminder job registered")
	return nil
}
