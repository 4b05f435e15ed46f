// internal/api/pricing/handlers.go
package pricing

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtsidehq/courtside/internal/api/apiutil"
	"github.com/courtsidehq/courtside/internal/pricing"
	"github.com/courtsidehq/courtside/internal/store"
)

var (
	queries     *store.Queries
	queriesOnce sync.Once
)

const pricingQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *store.Queries) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

type ruleResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Value     float64 `json:"value"`
	StartHour *int64  `json:"startHour,omitempty"`
	EndHour   *int64  `json:"endHour,omitempty"`
	DayOfWeek *int64  `json:"dayOfWeek,omitempty"`
}

func toRuleResponse(rule store.PricingRule) ruleResponse {
	resp := ruleResponse{
		ID:    rule.ID,
		Name:  rule.Name,
		Type:  rule.Type,
		Value: rule.Value,
	}
	if rule.StartHour.Valid {
		resp.StartHour = &rule.StartHour.Int64
	}
	if rule.EndHour.Valid {
		resp.EndHour = &rule.EndHour.Int64
	}
	if rule.DayOfWeek.Valid {
		resp.DayOfWeek = &rule.DayOfWeek.Int64
	}
	return resp
}

// GET /pricing
func HandleListRules(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pricingQueryTimeout)
	defer cancel()

	rules, err := queries.ListPricingRules(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list pricing rules")
		http.Error(w, "Failed to list pricing rules", http.StatusInternalServerError)
		return
	}

	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toRuleResponse(rule))
	}
	apiutil.WriteJSON(w, r, http.StatusOK, out)
}

type createRuleRequest struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Value     float64 `json:"value"`
	StartHour *int64  `json:"startHour"`
	EndHour   *int64  `json:"endHour"`
	DayOfWeek *int64  `json:"dayOfWeek"`
}

// POST /pricing/admin
func HandleCreateRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req createRuleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	switch req.Type {
	case pricing.RuleTypePeak:
		if req.StartHour == nil || req.EndHour == nil {
			http.Error(w, "peak rules require startHour and endHour", http.StatusBadRequest)
			return
		}
		if *req.StartHour < 0 || *req.StartHour > 23 || *req.EndHour < 1 || *req.EndHour > 24 || *req.StartHour >= *req.EndHour {
			http.Error(w, "startHour and endHour must form a window within 0..24", http.StatusBadRequest)
			return
		}
	case pricing.RuleTypeWeekend:
		if req.DayOfWeek != nil && (*req.DayOfWeek < 0 || *req.DayOfWeek > 6) {
			http.Error(w, "dayOfWeek must be within 0..6", http.StatusBadRequest)
			return
		}
	case pricing.RuleTypeCourtType:
		// value only
	default:
		http.Error(w, "type must be peak, weekend, or courtType", http.StatusBadRequest)
		return
	}
	if req.Value < 0 {
		http.Error(w, "value must be 0 or greater", http.StatusBadRequest)
		return
	}

	params := store.CreatePricingRuleParams{
		Name:  req.Name,
		Type:  req.Type,
		Value: req.Value,
	}
	if req.StartHour != nil {
		params.StartHour = sql.NullInt64{Int64: *req.StartHour, Valid: true}
	}
	if req.EndHour != nil {
		params.EndHour = sql.NullInt64{Int64: *req.EndHour, Valid: true}
	}
	if req.DayOfWeek != nil {
		params.DayOfWeek = sql.NullInt64{Int64: *req.DayOfWeek, Valid: true}
	}

	ctx, cancel := context.WithTimeout(r.Context(), pricingQueryTimeout)
	defer cancel()

	id, err := queries.CreatePricingRule(ctx, params)
	if err != nil {
		logger.Error().Err(err).Str("name", req.Name).Msg("Failed to create pricing rule")
		http.Error(w, "Failed to create pricing rule", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("rule_id", id).Str("type", req.Type).Msg("Pricing rule created")
	apiutil.WriteJSON(w, r, http.StatusCreated, toRuleResponse(store.PricingRule{
		ID: id, Name: params.Name, Type: params.Type, Value: params.Value,
		StartHour: params.StartHour, EndHour: params.EndHour, DayOfWeek: params.DayOfWeek,
	}))
}
