// Package booking holds the domain types shared by the booking form
// session and the remote clients.
package booking

import "time"

// Kind names a finite sub-resource attached to a court.
type Kind string

const (
	KindRacket Kind = "racket"
	KindShoes  Kind = "shoes"
)

// Kinds lists every resource kind observed in this domain.
var Kinds = []Kind{KindRacket, KindShoes}

// Draft is the mutable selection a user is building during one form
// session. Quantities are kept non-negative; CourtID and CoachID use 0
// for "not selected".
type Draft struct {
	RequesterName string
	CourtID       int64
	CoachID       int64
	Date          string // 2006-01-02
	StartTime     string // 15:04
	EndTime       string // 15:04
	RacketCount   int
	ShoeCount     int
}

// HasWindowInputs reports whether every field the availability query
// depends on is present.
func (d Draft) HasWindowInputs() bool {
	return d.Date != "" && d.StartTime != "" && d.EndTime != ""
}

// Request is the payload sent to the booking authority.
type Request struct {
	UserName  string    `json:"userName"`
	CourtID   int64     `json:"courtId"`
	CoachID   *int64    `json:"coachId"`
	Rackets   int       `json:"rackets"`
	Shoes     int       `json:"shoes"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Booking is a committed reservation. Only the booking authority assigns
// ID and Price.
type Booking struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	CourtID   int64     `json:"courtId"`
	CoachID   *int64    `json:"coachId,omitempty"`
	Rackets   int       `json:"rackets"`
	Shoes     int       `json:"shoes"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Price     float64   `json:"price"`
}

// Court is a bookable resource.
type Court struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"` // indoor or outdoor
}

// Coach is an optional sub-resource attached to a booking.
type Coach struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	HourlyRate float64 `json:"hourlyRate"`
}

// Snapshot is the oracle's report for one (court, window) pair at a point
// in time. It is advisory: it may be stale the instant it is read.
// Kinds missing from Available carry no known bound.
type Snapshot struct {
	CourtID   int64        `json:"courtId"`
	Totals    map[Kind]int `json:"totals"`
	Used      map[Kind]int `json:"used"`
	Available map[Kind]int `json:"available"`
}

// Bounds converts a snapshot's available counts into per-kind bounds,
// marking kinds absent from the snapshot as unknown.
func (s Snapshot) Bounds() Bounds {
	bounds := make(Bounds, len(Kinds))
	for _, kind := range Kinds {
		if limit, ok := s.Available[kind]; ok {
			bounds[kind] = KnownBound(limit)
		} else {
			bounds[kind] = UnknownBound()
		}
	}
	return bounds
}
