// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/courtsidehq/courtside/internal/api"
	"github.com/courtsidehq/courtside/internal/api/bookings"
	"github.com/courtsidehq/courtside/internal/api/coaches"
	"github.com/courtsidehq/courtside/internal/api/courts"
	"github.com/courtsidehq/courtside/internal/api/equipment"
	pricingapi "github.com/courtsidehq/courtside/internal/api/pricing"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/db"
	"github.com/courtsidehq/courtside/internal/email"
	"github.com/courtsidehq/courtside/internal/pricing"
)

func newServer(cfg *config.Config, database *db.DB, engine pricing.Engine, notifier *email.BookingNotifier) *http.Server {
	courts.InitHandlers(database.Queries)
	coaches.InitHandlers(database.Queries)
	equipment.InitHandlers(database.Queries)
	pricingapi.InitHandlers(database.Queries)

	var bookingNotifier bookings.Notifier
	if notifier != nil {
		bookingNotifier = notifier
	}
	bookings.InitHandlers(database, engine, bookingNotifier)

	router := http.NewServeMux()
	registerRoutes(router)

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /courts", courts.HandleListCourts)
	mux.HandleFunc("POST /courts/admin", courts.HandleCreateCourt)

	mux.HandleFunc("GET /coaches", coaches.HandleListCoaches)

	mux.HandleFunc("GET /equipment", equipment.HandleListEquipment)
	mux.HandleFunc("POST /equipment/admin", equipment.HandleUpsertEquipment)
	mux.HandleFunc("GET /equipment/availability", equipment.HandleAvailability)

	mux.HandleFunc("GET /pricing", pricingapi.HandleListRules)
	mux.HandleFunc("POST /pricing/admin", pricingapi.HandleCreateRule)

	mux.HandleFunc("GET /bookings", bookings.HandleListBookings)
	mux.HandleFunc("POST /bookings", bookings.HandleCreateBooking)
}
