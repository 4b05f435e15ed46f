// Package store holds the SQL queries behind the booking service.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside
// or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Court struct {
	ID   int64
	Name string
	Type string
}

type Coach struct {
	ID         int64
	Name       string
	HourlyRate float64
}

type Equipment struct {
	ID      int64
	CourtID int64
	Name    string
	Total   int
}

type PricingRule struct {
	ID        int64
	Name      string
	Type      string
	Value     float64
	StartHour sql.NullInt64
	EndHour   sql.NullInt64
	DayOfWeek sql.NullInt64
}

type Booking struct {
	ID        int64
	UserName  string
	CourtID   int64
	CoachID   sql.NullInt64
	Rackets   int
	Shoes     int
	StartTime time.Time
	EndTime   time.Time
	Price     float64
}

func (q *Queries) ListCourts(ctx context.Context) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, type FROM courts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var court Court
		if err := rows.Scan(&court.ID, &court.Name, &court.Type); err != nil {
			return nil, fmt.Errorf("scan court: %w", err)
		}
		courts = append(courts, court)
	}
	return courts, rows.Err()
}

func (q *Queries) GetCourt(ctx context.Context, id int64) (Court, error) {
	var court Court
	err := q.db.QueryRowContext(ctx, `SELECT id, name, type FROM courts WHERE id = ?`, id).
		Scan(&court.ID, &court.Name, &court.Type)
	if err != nil {
		return Court{}, err
	}
	return court, nil
}

func (q *Queries) CreateCourt(ctx context.Context, name, courtType string) (Court, error) {
	result, err := q.db.ExecContext(ctx, `INSERT INTO courts (name, type) VALUES (?, ?)`, name, courtType)
	if err != nil {
		return Court{}, fmt.Errorf("create court: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Court{}, fmt.Errorf("court id: %w", err)
	}
	return Court{ID: id, Name: name, Type: courtType}, nil
}

func (q *Queries) ListCoaches(ctx context.Context) ([]Coach, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, hourly_rate FROM coaches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list coaches: %w", err)
	}
	defer rows.Close()

	var coaches []Coach
	for rows.Next() {
		var coach Coach
		if err := rows.Scan(&coach.ID, &coach.Name, &coach.HourlyRate); err != nil {
			return nil, fmt.Errorf("scan coach: %w", err)
		}
		coaches = append(coaches, coach)
	}
	return coaches, rows.Err()
}

func (q *Queries) GetCoach(ctx context.Context, id int64) (Coach, error) {
	var coach Coach
	err := q.db.QueryRowContext(ctx, `SELECT id, name, hourly_rate FROM coaches WHERE id = ?`, id).
		Scan(&coach.ID, &coach.Name, &coach.HourlyRate)
	if err != nil {
		return Coach{}, err
	}
	return coach, nil
}

func (q *Queries) ListEquipment(ctx context.Context) ([]Equipment, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, court_id, name, total FROM equipment ORDER BY court_id, name`)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()

	var items []Equipment
	for rows.Next() {
		var item Equipment
		if err := rows.Scan(&item.ID, &item.CourtID, &item.Name, &item.Total); err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertEquipment inserts or replaces the configured total for one
// (court, kind) pair. RETURNING is used because last_insert_rowid() is
// not set on the conflict-update path.
func (q *Queries) UpsertEquipment(ctx context.Context, courtID int64, name string, total int) (Equipment, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO equipment (court_id, name, total) VALUES (?, ?, ?)
		ON CONFLICT (court_id, name) DO UPDATE SET total = excluded.total
		RETURNING id`,
		courtID, name, total).Scan(&id)
	if err != nil {
		return Equipment{}, fmt.Errorf("upsert equipment: %w", err)
	}
	return Equipment{ID: id, CourtID: courtID, Name: name, Total: total}, nil
}

// EquipmentTotals returns the configured totals per resource kind for one
// court. Kinds with no row are absent from the map.
func (q *Queries) EquipmentTotals(ctx context.Context, courtID int64) (map[string]int, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT name, total FROM equipment WHERE court_id = ?`, courtID)
	if err != nil {
		return nil, fmt.Errorf("equipment totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var name string
		var total int
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("scan equipment total: %w", err)
		}
		totals[name] = total
	}
	return totals, rows.Err()
}

// EquipmentUsed sums the equipment held by confirmed bookings for courtID
// that overlap [start, end).
func (q *Queries) EquipmentUsed(ctx context.Context, courtID int64, start, end time.Time) (map[string]int, error) {
	var rackets, shoes sql.NullInt64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(rackets), 0), COALESCE(SUM(shoes), 0)
		FROM bookings
		WHERE court_id = ? AND start_time < ? AND end_time > ?`,
		courtID, end.UTC(), start.UTC()).Scan(&rackets, &shoes)
	if err != nil {
		return nil, fmt.Errorf("equipment used: %w", err)
	}
	return map[string]int{
		"racket": int(rackets.Int64),
		"shoes":  int(shoes.Int64),
	}, nil
}

// CountCourtOverlap counts confirmed bookings on courtID overlapping
// [start, end).
func (q *Queries) CountCourtOverlap(ctx context.Context, courtID int64, start, end time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE court_id = ? AND start_time < ? AND end_time > ?`,
		courtID, end.UTC(), start.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count court overlap: %w", err)
	}
	return count, nil
}

// CountCoachOverlap counts confirmed bookings with coachID overlapping
// [start, end).
func (q *Queries) CountCoachOverlap(ctx context.Context, coachID int64, start, end time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE coach_id = ? AND start_time < ? AND end_time > ?`,
		coachID, end.UTC(), start.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count coach overlap: %w", err)
	}
	return count, nil
}

type CreateBookingParams struct {
	UserName  string
	CourtID   int64
	CoachID   sql.NullInt64
	Rackets   int
	Shoes     int
	StartTime time.Time
	EndTime   time.Time
	Price     float64
}

func (q *Queries) CreateBooking(ctx context.Context, params CreateBookingParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO bookings (user_name, court_id, coach_id, rackets, shoes, start_time, end_time, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		params.UserName, params.CourtID, params.CoachID, params.Rackets, params.Shoes,
		params.StartTime.UTC(), params.EndTime.UTC(), params.Price)
	if err != nil {
		return 0, fmt.Errorf("create booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("booking id: %w", err)
	}
	return id, nil
}

func (q *Queries) ListBookings(ctx context.Context) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_name, court_id, coach_id, rackets, shoes, start_time, end_time, price
		FROM bookings ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// ListBookingsStartingBetween returns bookings whose start instant falls in
// [start, end). Used by the reminder job.
func (q *Queries) ListBookingsStartingBetween(ctx context.Context, start, end time.Time) ([]Booking, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_name, court_id, coach_id, rackets, shoes, start_time, end_time, price
		FROM bookings
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("list bookings starting between: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]Booking, error) {
	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.UserName, &b.CourtID, &b.CoachID, &b.Rackets, &b.Shoes,
			&b.StartTime, &b.EndTime, &b.Price); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (q *Queries) ListPricingRules(ctx context.Context) ([]PricingRule, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, name, type, value, start_hour, end_hour, day_of_week
		FROM pricing_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list pricing rules: %w", err)
	}
	defer rows.Close()

	var rules []PricingRule
	for rows.Next() {
		var rule PricingRule
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.Type, &rule.Value,
			&rule.StartHour, &rule.EndHour, &rule.DayOfWeek); err != nil {
			return nil, fmt.Errorf("scan pricing rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

type CreatePricingRuleParams struct {
	Name      string
	Type      string
	Value     float64
	StartHour sql.NullInt64
	EndHour   sql.NullInt64
	DayOfWeek sql.NullInt64
}

func (q *Queries) CreatePricingRule(ctx context.Context, params CreatePricingRuleParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, `
		INSERT INTO pricing_rules (name, type, value, start_hour, end_hour, day_of_week)
		VALUES (?, ?, ?, ?, ?, ?)`,
		params.Name, params.Type, params.Value, params.StartHour, params.EndHour, params.DayOfWeek)
	if err != nil {
		return 0, fmt.Errorf("create pricing rule: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("pricing rule id: %w", err)
	}
	return id, nil
}
