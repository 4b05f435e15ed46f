// internal/api/coaches/handlers.go
package coaches

import (
	"context"
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

const coachesQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

// GET /coaches
func HandleListCoaches(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), coachesQueryTimeout)
	defer cancel()

	rows, err := queries.ListCoaches(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list coaches")
		http.Error(w, "Failed to list coaches", http.StatusInternalServerError)
		return
	}

	coaches := make([]booking.Coach, 0, len(rows))
	for _, row := range rows {
		coaches = append(coaches, booking.Coach{ID: row.ID, Name: row.Name, HourlyRate: row.HourlyRate})
	}
	apiutil.WriteJSON(w, r, http.StatusOK, coaches)
}
