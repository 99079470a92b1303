// Package router wires every HTTP surface of the platform onto one chi mux.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/catalog"
	"github.com/mentari-health/mentari-platform/internal/consultation"
	"github.com/mentari-health/mentari-platform/internal/diagnosis"
	"github.com/mentari-health/mentari-platform/internal/favorites"
	"github.com/mentari-health/mentari-platform/internal/http/handlers"
	httpmiddleware "github.com/mentari-health/mentari-platform/internal/http/middleware"
	"github.com/mentari-health/mentari-platform/internal/identity"
	"github.com/mentari-health/mentari-platform/internal/payments"
	"github.com/mentari-health/mentari-platform/internal/shell"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	CatalogHandler      *catalog.Handler
	BookingHandler      *booking.Handler
	ConsultationHandler *consultation.Handler
	DiagnosisHandler    *diagnosis.Handler
	FavoritesHandler    *favorites.Handler
	XenditWebhook       *handlers.XenditWebhookHandler
	FakePayments        *payments.FakePaymentsHandler
	MetricsHandler      http.Handler
	AuthSecret          string
	CORSAllowedOrigins  []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}
	// Shell classification runs before the logger so every log line carries it.
	r.Use(shell.Middleware())
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, webhooks, catalog browsing).
	r.Group(func(public chi.Router) {
		public.Get("/health", handleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.XenditWebhook != nil {
			public.Post("/webhooks/xendit", cfg.XenditWebhook.Handle)
		}
		if cfg.FakePayments != nil {
			public.Mount("/payments", cfg.FakePayments.Routes())
		}
		if cfg.CatalogHandler != nil {
			public.Get("/api/practitioners", cfg.CatalogHandler.List)
			public.Get("/api/practitioners/{id}", cfg.CatalogHandler.Get)
		}
	})

	// Authenticated endpoints.
	r.Group(func(authed chi.Router) {
		authed.Use(identity.RequireAuth(cfg.AuthSecret))

		if cfg.BookingHandler != nil {
			authed.Mount("/api/bookings", cfg.BookingHandler.Routes())
			authed.Get("/api/appointments", cfg.BookingHandler.Appointments)
		}
		if cfg.ConsultationHandler != nil {
			authed.Route("/api/consultation", func(r chi.Router) {
				r.Post("/token", cfg.ConsultationHandler.Token)
				r.Post("/end", cfg.ConsultationHandler.End)
			})
		}
		if cfg.DiagnosisHandler != nil {
			authed.Mount("/api/diagnosis", cfg.DiagnosisHandler.Routes())
		}
		if cfg.FavoritesHandler != nil {
			authed.Mount("/api/favorites", cfg.FavoritesHandler.Routes())
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
