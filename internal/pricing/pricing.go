// Package pricing computes the authoritative price of a booking. Only the
// server runs this; clients receive the result and never recompute it.
package pricing

import (
	"math"
	"time"

	"github.com/courtsidehq/courtside/internal/store"
)

const (
	RuleTypePeak      = "peak"
	RuleTypeWeekend   = "weekend"
	RuleTypeCourtType = "courtType"
)

const (
	defaultIndoorHourlyRate  = 500
	defaultOutdoorHourlyRate = 300
)

// Engine prices bookings from base hourly rates plus dynamic rules.
type Engine struct {
	IndoorHourlyRate  float64
	OutdoorHourlyRate float64
}

// NewEngine returns an engine with the given base rates, falling back to
// defaults for non-positive values.
func NewEngine(indoorRate, outdoorRate float64) Engine {
	if indoorRate <= 0 {
		indoorRate = defaultIndoorHourlyRate
	}
	if outdoorRate <= 0 {
		outdoorRate = defaultOutdoorHourlyRate
	}
	return Engine{IndoorHourlyRate: indoorRate, OutdoorHourlyRate: outdoorRate}
}

// Price computes the total for one booking. Rules apply in their stored
// order: peak multiplies, weekend and courtType add a surcharge. A coach,
// when present, adds their hourly rate over the window. Hours are judged
// in UTC, matching the stored instants.
func (e Engine) Price(court store.Court, coach *store.Coach, rules []store.PricingRule, start, end time.Time) float64 {
	hours := end.Sub(start).Hours()
	if hours <= 0 {
		return 0
	}

	rate := e.OutdoorHourlyRate
	if court.Type == "indoor" {
		rate = e.IndoorHourlyRate
	}
	price := rate * hours

	for _, rule := range rules {
		switch rule.Type {
		case RuleTypePeak:
			if overlapsPeakHours(start, end, rule) {
				price *= rule.Value
			}
		case RuleTypeWeekend:
			if isWeekend(start, rule) {
				price += rule.Value
			}
		case RuleTypeCourtType:
			if court.Type == "indoor" {
				price += rule.Value
			}
		}
	}

	if coach != nil {
		price += coach.HourlyRate * hours
	}

	return math.Round(price*100) / 100
}

func overlapsPeakHours(start, end time.Time, rule store.PricingRule) bool {
	if !rule.StartHour.Valid || !rule.EndHour.Valid {
		return false
	}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	peakStart := day.Add(time.Duration(rule.StartHour.Int64) * time.Hour)
	peakEnd := day.Add(time.Duration(rule.EndHour.Int64) * time.Hour)
	return start.Before(peakEnd) && end.After(peakStart)
}

func isWeekend(start time.Time, rule store.PricingRule) bool {
	if rule.DayOfWeek.Valid {
		return int64(start.UTC().Weekday()) == rule.DayOfWeek.Int64
	}
	weekday := start.UTC().Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}
