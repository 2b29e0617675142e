package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/casaondara/booking-platform/internal/availability"
	"github.com/casaondara/booking-platform/internal/blackouts"
	"github.com/casaondara/booking-platform/internal/bookings"
	"github.com/casaondara/booking-platform/internal/http/handlers"
	httpmiddleware "github.com/casaondara/booking-platform/internal/http/middleware"
	"github.com/casaondara/booking-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	AvailabilityHandler *availability.Handler
	BookingsHandler     *bookings.Handler
	BlackoutsHandler    *blackouts.Handler
	AdminCustomers      *handlers.AdminCustomersHandler
	HealthHandler       http.HandlerFunc
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	AdminAllowlist      []string
	CORSAllowedOrigins  []string

	// Requests/sec and burst for the per-IP transport limiter; zero
	// disables it.
	PublicRateLimit float64
	PublicRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		if cfg.PublicRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.PublicRateLimit, cfg.PublicRateBurst))
		}
		if cfg.HealthHandler != nil {
			public.Get("/health", cfg.HealthHandler)
		}
		if cfg.AvailabilityHandler != nil {
			public.Get("/availability", cfg.AvailabilityHandler.Get)
		}
		if cfg.BookingsHandler != nil {
			public.Post("/bookings", cfg.BookingsHandler.Create)
			public.Post("/enquiries", cfg.BookingsHandler.Enquire)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret, cfg.AdminAllowlist))
			if cfg.BlackoutsHandler != nil {
				admin.Get("/blackouts", cfg.BlackoutsHandler.List)
				admin.Post("/blackouts", cfg.BlackoutsHandler.Create)
				admin.Delete("/blackouts/{id}", cfg.BlackoutsHandler.Delete)
			}
			if cfg.AdminCustomers != nil {
				admin.Get("/customers", cfg.AdminCustomers.ListCustomers)
				admin.Get("/customers/stats", cfg.AdminCustomers.GetCustomerStats)
				admin.Patch("/customers/{customerKey}", cfg.AdminCustomers.UpdateCustomerStatus)
			}
		})
	}

	return r
}
