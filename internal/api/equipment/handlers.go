// internal/api/equipment/handlers.go
package equipment

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/booking"
	"github.com/courtsidehq/courtside/internal/store"
)

var (
	queries     *store.Queries
	queriesOnce sync.Once
)

const equipmentQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type equipmentRow struct {
	ID      int64  `json:"id"`
	CourtID int64  `json:"courtId"`
	Name    string `json:"name"`
	Total   int    `json:"total"`
}

// GET /equipment
func HandleListEquipment(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), equipmentQueryTimeout)
	defer cancel()

	rows, err := queries.ListEquipment(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list equipment")
		http.Error(w, "Failed to list equipment", http.StatusInternalServerError)
		return
	}

	items := make([]equipmentRow, 0, len(rows))
	for _, row := range rows {
		items = append(items, equipmentRow{ID: row.ID, CourtID: row.CourtID, Name: row.Name, Total: row.Total})
	}
	apiutil.WriteJSON(w, r, http.StatusOK, items)
}

type upsertEquipmentRequest struct {
	CourtID int64  `json:"courtId"`
	Name    string `json:"name"`
	Total   int    `json:"total"`
}

// POST /equipment/admin
func HandleUpsertEquipment(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req upsertEquipmentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.CourtID <= 0 {
		http.Error(w, "courtId must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.Name != string(booking.KindRacket) && req.Name != string(booking.KindShoes) {
		http.Error(w, "name must be racket or shoes", http.StatusBadRequest)
		return
	}
	if req.Total < 0 {
		http.Error(w, "total must be 0 or greater", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), equipmentQueryTimeout)
	defer cancel()

	if _, err := queries.GetCourt(ctx, req.CourtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", req.CourtID).Msg("Failed to load court")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	saved, err := queries.UpsertEquipment(ctx, req.CourtID, req.Name, req.Total)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", req.CourtID).Msg("Failed to upsert equipment")
		http.Error(w, "Failed to save equipment", http.StatusInternalServerError)
		return
	}

	logger.Info().
		Int64("court_id", saved.CourtID).
		Str("name", saved.Name).
		Int("total", saved.Total).
		Msg("Equipment saved")
	apiutil.WriteJSON(w, r, http.StatusOK, equipmentRow{ID: saved.ID, CourtID: saved.CourtID, Name: saved.Name, Total: saved.Total})
}

// GET /equipment/availability?courtId=&start=&end=
//
// The response is authoritative for the instant it is computed: available
// is totals minus the equipment held by confirmed bookings overlapping
// [start, end). Kinds with no configured total are omitted, which clients
// treat as an unknown bound.
func HandleAvailability(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	courtID, err := apiutil.ParsePositiveInt64Field(r.URL.Query().Get("courtId"), "courtId")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, err := apiutil.ParseInstant(r.URL.Query().Get("start"), "start")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	end, err := apiutil.ParseInstant(r.URL.Query().Get("end"), "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !start.Before(end) {
		http.Error(w, "start must be before end", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), equipmentQueryTimeout)
	defer cancel()

	if _, err := queries.GetCourt(ctx, courtID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "court not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load court")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	totals, err := queries.EquipmentTotals(ctx, courtID)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load equipment totals")
		http.Error(w, "Failed to compute availability", http.StatusInternalServerError)
		return
	}
	used, err := queries.EquipmentUsed(ctx, courtID, start, end)
	if err != nil {
		logger.Error().Err(err).Int64("court_id", courtID).Msg("Failed to load equipment usage")
		http.Error(w, "Failed to compute availability", http.StatusInternalServerError)
		return
	}

	snap := booking.Snapshot{
		CourtID:   courtID,
		Totals:    make(map[booking.Kind]int, len(totals)),
		Used:      make(map[booking.Kind]int, len(totals)),
		Available: make(map[booking.Kind]int, len(totals)),
	}
	for name, total := range totals {
		kind := booking.Kind(name)
		snap.Totals[kind] = total
		snap.Used[kind] = used[name]
		snap.Available[kind] = total - used[name]
	}
	apiutil.WriteJSON(w, r, http.StatusOK, snap)
}
