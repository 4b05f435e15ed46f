// Package session owns one booking form session: the draft the user is
// building, the trusted availability bounds, and the rules that keep them
// consistent under rapid input and network reordering.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/timewindow"
)

var (
	ErrMissingCourt   = errors.New("no court selected")
	ErrMissingWindow  = errors.New("date, start time and end time are required")
	ErrInvalidWindow  = errors.New("start time must be before end time")
	ErrSubmitInFlight = errors.New("a submission is already in progress")
)

// AvailabilityQuerier is the oracle side of the remote service.
type AvailabilityQuerier interface {
	QueryAvailability(ctx context.Context, courtID int64, win timewindow.Window) (booking.Snapshot, error)
}

// BookingCreator is the booking authority side of the remote service.
type BookingCreator interface {
	CreateBooking(ctx context.Context, request booking.Request) (booking.Booking, error)
}

// Outcome is the result of the most recent submission attempt.
type Outcome struct {
	Booking *booking.Booking
	Err     error
}

// Config holds session tuning knobs.
type Config struct {
	// QuiesceDelay is how long the observed inputs must stay unchanged
	// before an availability query fires.
	QuiesceDelay time.Duration

	// Location interprets the draft's local date and times of day.
	Location *time.Location

	// AfterFunc schedules the quiescence timer. Nil uses time.AfterFunc;
	// tests substitute a manual trigger.
	AfterFunc func(d time.Duration, fn func()) *time.Timer
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		QuiesceDelay: 350 * time.Millisecond,
		Location:     time.Local,
	}
}

// Session reconciles a user's provisional selection with the oracle's
// snapshots and converts it into a single booking submission. One Session
// belongs to one user; no state is shared across sessions.
type Session struct {
	querier   AvailabilityQuerier
	creator   BookingCreator
	delay     time.Duration
	loc       *time.Location
	afterFunc func(d time.Duration, fn func()) *time.Timer

	mu         sync.Mutex
	draft      booking.Draft
	bounds     booking.Bounds
	timer      *time.Timer
	lastSeq    uint64 // highest sequence number issued
	adoptedSeq uint64 // highest sequence number whose response was adopted
	inFlight   int
	submitting bool
	outcome    *Outcome
}

// New creates a session. cfg may be nil for defaults.
func New(querier AvailabilityQuerier, creator BookingCreator, cfg *Config) *Session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	delay := cfg.QuiesceDelay
	if delay <= 0 {
		delay = DefaultConfig().QuiesceDelay
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	afterFunc := cfg.AfterFunc
	if afterFunc == nil {
		afterFunc = time.AfterFunc
	}
	return &Session{
		querier:   querier,
		creator:   creator,
		delay:     delay,
		loc:       loc,
		afterFunc: afterFunc,
		bounds:    booking.AllUnknown(),
	}
}

// Close cancels any pending quiescence timer. In-flight queries are not
// cancelled; their late responses are discarded by the sequence rule.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// SetRequesterName updates the requester's name.
func (s *Session) SetRequesterName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.RequesterName = name
	s.clearFailedOutcomeLocked()
}

// SelectCourt changes the chosen court. Zero clears the selection.
func (s *Session) SelectCourt(courtID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if courtID < 0 {
		courtID = 0
	}
	s.draft.CourtID = courtID
	s.clearFailedOutcomeLocked()
	s.restartTimerLocked()
}

// SelectCoach changes the optional coach. Zero clears the selection.
func (s *Session) SelectCoach(coachID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if coachID < 0 {
		coachID = 0
	}
	s.draft.CoachID = coachID
	s.clearFailedOutcomeLocked()
}

// SetDate updates the calendar date ("2006-01-02", may be empty).
func (s *Session) SetDate(date string) {
	s.setWindowField(&s.draft.Date, date)
}

// SetStartTime updates the start time of day ("15:04", may be empty).
func (s *Session) SetStartTime(start string) {
	s.setWindowField(&s.draft.StartTime, start)
}

// SetEndTime updates the end time of day ("15:04", may be empty).
func (s *Session) SetEndTime(end string) {
	s.setWindowField(&s.draft.EndTime, end)
}

func (s *Session) setWindowField(field *string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*field = value
	s.clearFailedOutcomeLocked()
	s.restartTimerLocked()
}

// SetRacketCount updates the requested racket quantity, clamped against
// the trusted bound.
func (s *Session) SetRacketCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.RacketCount = booking.Clamp(count, s.bounds.For(booking.KindRacket))
	s.clearFailedOutcomeLocked()
}

// SetShoeCount updates the requested shoe quantity, clamped against the
// trusted bound.
func (s *Session) SetShoeCount(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ShoeCount = booking.Clamp(count, s.bounds.For(booking.KindShoes))
	s.clearFailedOutcomeLocked()
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() booking.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Bounds returns a copy of the trusted per-kind bounds.
func (s *Session) Bounds() booking.Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	bounds := make(booking.Bounds, len(s.bounds))
	for kind, bound := range s.bounds {
		bounds[kind] = bound
	}
	return bounds
}

// QueryInFlight reports whether at least one availability query is
// outstanding.
func (s *Session) QueryInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// SubmitInFlight reports whether a submission is outstanding.
func (s *Session) SubmitInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// LastOutcome returns the result of the most recent submission attempt,
// if any.
func (s *Session) LastOutcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Submit validates the draft locally and, when sound, performs the single
// authoritative remote call. Remote failures are surfaced verbatim; the
// session never retries and never records an optimistic booking.
func (s *Session) Submit(ctx context.Context) (booking.Booking, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return booking.Booking{}, ErrSubmitInFlight
	}

	request, err := s.buildRequestLocked()
	if err != nil {
		s.outcome = &Outcome{Err: err}
		s.mu.Unlock()
		return booking.Booking{}, err
	}

	s.submitting = true
	s.mu.Unlock()

	created, err := s.creator.CreateBooking(ctx, request)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		log.Warn().Err(err).Int64("court_id", request.CourtID).Msg("Booking submission rejected")
		s.outcome = &Outcome{Err: err}
		return booking.Booking{}, err
	}

	log.Info().
		Int64("booking_id", created.ID).
		Int64("court_id", created.CourtID).
		Float64("price", created.Price).
		Msg("Booking confirmed")
	s.outcome = &Outcome{Booking: &created}

	// Keep the chosen court so a user booking several slots does not have
	// to reselect it; everything else is transient.
	s.draft = booking.Draft{CourtID: s.draft.CourtID}
	s.invalidateBoundsLocked()
	s.stopTimerLocked()

	return created, nil
}

func (s *Session) buildRequestLocked() (booking.Request, error) {
	if s.draft.CourtID == 0 {
		return booking.Request{}, ErrMissingCourt
	}
	if !s.draft.HasWindowInputs() {
		return booking.Request{}, ErrMissingWindow
	}
	win, err := timewindow.Normalize(s.draft.Date, s.draft.StartTime, s.draft.EndTime, s.loc)
	if err != nil {
		return booking.Request{}, err
	}
	if !win.Start.Before(win.End) {
		return booking.Request{}, ErrInvalidWindow
	}

	request := booking.Request{
		UserName:  s.draft.RequesterName,
		CourtID:   s.draft.CourtID,
		Rackets:   s.draft.RacketCount,
		Shoes:     s.draft.ShoeCount,
		StartTime: win.Start,
		EndTime:   win.End,
	}
	if s.draft.CoachID != 0 {
		coachID := s.draft.CoachID
		request.CoachID = &coachID
	}
	return request, nil
}

// invalidateBoundsLocked resets the trusted bounds to unknown and marks
// the reset as the newest observation, so any response still in flight
// for the old window is discarded by the staleness rule.
func (s *Session) invalidateBoundsLocked() {
	s.bounds = booking.AllUnknown()
	s.adoptedSeq = s.lastSeq
}

func (s *Session) clearFailedOutcomeLocked() {
	if s.outcome != nil && s.outcome.Err != nil {
		s.outcome = nil
	}
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// restartTimerLocked replaces the single quiescence timer; a new change
// always cancels the previous one.
func (s *Session) restartTimerLocked() {
	s.stopTimerLocked()
	s.timer = s.afterFunc(s.delay, s.onQuiesce)
}

// onQuiesce runs when the observed inputs have been stable for the
// configured delay.
func (s *Session) onQuiesce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = nil

	if s.draft.CourtID == 0 || !s.draft.HasWindowInputs() {
		s.invalidateBoundsLocked()
		return
	}

	win, err := timewindow.Normalize(s.draft.Date, s.draft.StartTime, s.draft.EndTime, s.loc)
	if err != nil {
		log.Debug().Err(err).Msg("Availability query skipped: window not parseable")
		s.invalidateBoundsLocked()
		return
	}

	s.lastSeq++
	seq := s.lastSeq
	courtID := s.draft.CourtID
	s.inFlight++

	// The query is read-only, so an outdated one is left to finish; only
	// its result is discarded.
	go s.runQuery(seq, courtID, win)
}

func (s *Session) runQuery(seq uint64, courtID int64, win timewindow.Window) {
	snap, err := s.querier.QueryAvailability(context.Background(), courtID, win)
	s.finishQuery(seq, snap, err)
}

// finishQuery applies the last-issued-wins rule: a response is adopted only
// when its sequence number is higher than every sequence adopted so far,
// regardless of arrival order.
func (s *Session) finishQuery(seq uint64, snap booking.Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight--

	if err != nil {
		// A failed latest query degrades the bounds to unknown; a failed
		// stale query is ignored like any other stale response.
		if seq == s.lastSeq && seq > s.adoptedSeq {
			log.Warn().Err(err).Uint64("seq", seq).Msg("Availability query failed; bounds unknown")
			s.adoptedSeq = seq
			s.bounds = booking.AllUnknown()
			return
		}
		log.Debug().Err(err).Uint64("seq", seq).Msg("Stale availability failure discarded")
		return
	}

	if seq <= s.adoptedSeq {
		log.Debug().
			Uint64("seq", seq).
			Uint64("adopted_seq", s.adoptedSeq).
			Msg("Stale availability response discarded")
		return
	}

	s.adoptedSeq = seq
	s.bounds = snap.Bounds()
	s.draft.RacketCount = booking.Clamp(s.draft.RacketCount, s.bounds.For(booking.KindRacket))
	s.draft.ShoeCount = booking.Clamp(s.draft.ShoeCount, s.bounds.For(booking.KindShoes))
}
