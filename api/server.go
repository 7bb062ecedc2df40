/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/bills/*     Bill management
  /api/payees/*    Payee management
  /api/options     Run configuration
  /api/shares      Cost-split report
  /api/schedule/*  Projection and CSV export

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/bills", func(r chi.Router) {
			r.Get("/", h.ListBills)
			r.Post("/", h.SaveBill)
			r.Get("/{name}", h.GetBill)
			r.Delete("/{name}", h.DeleteBill)
		})

		r.Route("/payees", func(r chi.Router) {
			r.Get("/", h.ListPayees)
			r.Post("/", h.SavePayee)
			r.Get("/{name}", h.GetPayee)
			r.Delete("/{name}", h.DeletePayee)
		})

		r.Route("/options", func(r chi.Router) {
			r.Get("/", h.GetOptions)
			r.Put("/", h.SaveOptions)
		})

		r.Get("/shares", h.GetShares)

		r.Route("/schedule", func(r chi.Router) {
			r.Get("/", h.GetSchedule)
			r.Get("/export", h.ExportSchedule)
		})
	})

	return r
}
