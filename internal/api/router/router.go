package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sashasmiles/clinic-backend/internal/appointments"
	"github.com/sashasmiles/clinic-backend/internal/contact"
	httpmiddleware "github.com/sashasmiles/clinic-backend/internal/http/middleware"
	"github.com/sashasmiles/clinic-backend/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *appointments.Handler
	ContactHandler      *contact.Handler
	MetricsHandler      http.Handler
	IntakeLimiter       httpmiddleware.Limiter
	CORSAllowedOrigins  []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		// Public intake endpoints, rate limited.
		api.Group(func(public chi.Router) {
			if cfg.IntakeLimiter != nil {
				public.Use(httpmiddleware.RateLimit(cfg.IntakeLimiter))
			}
			public.Post("/appointments", cfg.AppointmentsHandler.Create)
			if cfg.ContactHandler != nil {
				public.Post("/contact", cfg.ContactHandler.Send)
			}
		})

		// Admin console surface; authentication lives in front of this
		// service and is out of scope here.
		api.Get("/appointments", cfg.AppointmentsHandler.List)
		api.Get("/appointments/{id}", cfg.AppointmentsHandler.Get)
		api.Delete("/appointments/{id}", cfg.AppointmentsHandler.Delete)
	})

	return r
}
