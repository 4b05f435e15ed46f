// internal/api/courts/handlers.go
package courts

import (
	"context"
	"net/http"
	"strings"
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

const courtsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

// GET /courts
func HandleListCourts(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	rows, err := queries.ListCourts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list courts")
		http.Error(w, "Failed to list courts", http.StatusInternalServerError)
		return
	}

	courts := make([]booking.Court, 0, len(rows))
	for _, row := range rows {
		courts = append(courts, booking.Court{ID: row.ID, Name: row.Name, Type: row.Type})
	}
	apiutil.WriteJSON(w, r, http.StatusOK, courts)
}

type createCourtRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// POST /courts/admin
func HandleCreateCourt(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createCourtRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Type != "indoor" && req.Type != "outdoor" {
		http.Error(w, "type must be indoor or outdoor", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	created, err := queries.CreateCourt(ctx, req.Name, req.Type)
	if err != nil {
		logger.Error().Err(err).Str("name", req.Name).Msg("Failed to create court")
		http.Error(w, "Failed to create court", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("court_id", created.ID).Str("name", created.Name).Msg("Court created")
	apiutil.WriteJSON(w, r, http.StatusCreated, booking.Court{ID: created.ID, Name: created.Name, Type: created.Type})
}
