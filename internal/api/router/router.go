package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/voice-receptionist/internal/dashboard"
	httpmiddleware "github.com/wolfman30/voice-receptionist/internal/http/middleware"
	"github.com/wolfman30/voice-receptionist/internal/leads"
	"github.com/wolfman30/voice-receptionist/internal/settings"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	SettingsHandler    *settings.Handler
	DashboardHandler   *dashboard.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// ContactLimiter throttles POST /contact/email per client (optional)
	ContactLimiter *httpmiddleware.RateLimiter

	// HealthChecks are run by /health; /test never runs them
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/test", liveness)
		public.Get("/health", readiness(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.LeadsHandler != nil {
			contact := public.With()
			if cfg.ContactLimiter != nil {
				contact = public.With(httpmiddleware.RateLimit(cfg.ContactLimiter))
			}
			contact.Post("/contact/email", cfg.LeadsHandler.SubmitContact)
		}
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.DashboardHandler != nil {
			api.Route("/dashboard", func(d chi.Router) {
				d.Get("/overview", cfg.DashboardHandler.Overview)
				d.Get("/calls", cfg.DashboardHandler.Calls)
				d.Get("/calendar", cfg.DashboardHandler.Calendar)
			})
		}
		if cfg.SettingsHandler != nil {
			api.Get("/settings", cfg.SettingsHandler.Get)
			api.Put("/settings", cfg.SettingsHandler.Put)
		}

		// Admin routes are registered even without a secret; AdminJWT then
		// rejects every request.
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.DashboardHandler != nil {
				admin.Get("/overview", cfg.DashboardHandler.AdminOverview)
			}
			if cfg.LeadsHandler != nil {
				admin.Get("/leads", cfg.LeadsHandler.ListLeads)
				admin.Get("/leads/{id}", cfg.LeadsHandler.GetLead)
			}
		})
	})

	return r
}
