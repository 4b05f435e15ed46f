// Package timewindow converts user-entered local dates and times of day
// into absolute instants.
package timewindow

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimeInput reports an absent or unparseable date or time of day.
var ErrInvalidTimeInput = errors.New("invalid time input")

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04"
)

// Window is a pair of absolute instants. Start < End is a draft-level
// invariant and is not enforced here.
type Window struct {
	Start time.Time
	End   time.Time
}

// Normalize interprets date ("2006-01-02") and two times of day ("15:04")
// in loc and returns the corresponding absolute instants in UTC. The result
// depends only on the arguments, never on the current time.
func Normalize(date, start, end string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}

	day, err := parsePart(date, dateLayout, "date", loc)
	if err != nil {
		return Window{}, err
	}
	startClock, err := parsePart(start, timeOfDayLayout, "start time", loc)
	if err != nil {
		return Window{}, err
	}
	endClock, err := parsePart(end, timeOfDayLayout, "end time", loc)
	if err != nil {
		return Window{}, err
	}

	return Window{
		Start: combine(day, startClock, loc),
		End:   combine(day, endClock, loc),
	}, nil
}

func parsePart(raw, layout, field string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidTimeInput, field)
	}
	parsed, err := time.ParseInLocation(layout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q", ErrInvalidTimeInput, field, raw)
	}
	return parsed, nil
}

func combine(day, clock time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc).UTC()
}
