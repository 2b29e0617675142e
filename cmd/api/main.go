package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/casaondara/booking-platform/internal/api/router"
	"github.com/casaondara/booking-platform/internal/availability"
	"github.com/casaondara/booking-platform/internal/blackouts"
	"github.com/casaondara/booking-platform/internal/bookings"
	appconfig "github.com/casaondara/booking-platform/internal/config"
	"github.com/casaondara/booking-platform/internal/http/handlers"
	"github.com/casaondara/booking-platform/internal/notify"
	"github.com/casaondara/booking-platform/internal/observability/metrics"
	"github.com/casaondara/booking-platform/internal/ratelimit"
	"github.com/casaondara/booking-platform/internal/schedule"
	"github.com/casaondara/booking-platform/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pg pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}

	// Separate database/sql handle for the admin read surface.
	adminDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open admin db handle", "error", err)
		os.Exit(1)
	}
	defer func() { _ = adminDB.Close() }()

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(redisOpts)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}

	loc, zoneOK := schedule.ResolveLocationOK(cfg.Timezone)
	if !zoneOK {
		logger.Warn("unparseable timezone, falling back to UTC", "configured", cfg.Timezone)
	}

	m := metrics.NewBookingMetrics(nil)

	// Notifications: SendGrid when configured, stub otherwise.
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		sender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(sender, cfg.BookingNotifyEmail, loc, logger)

	limiter := ratelimit.New(rdb, cfg.RateLimitMax,
		time.Duration(cfg.RateLimitWindowMinutes)*time.Minute, logger)

	bookingRepo := bookings.NewRepository(pool)
	bookingSvc := bookings.NewService(bookingRepo, limiter, notifier, m, logger, bookings.Config{
		Location:     loc,
		BlockMinutes: cfg.BlockMinutes,
		LeadTimeDays: cfg.LeadTimeDays,
	})
	availSvc := availability.NewService(bookingRepo, m, logger, availability.Config{
		Location:          loc,
		Hours:             schedule.DefaultOpeningHours(),
		BlockMinutes:      cfg.BlockMinutes,
		LeadTimeDays:      cfg.LeadTimeDays,
		DefaultWindowDays: cfg.DefaultWindowDays,
	})
	blackoutRepo := blackouts.NewRepository(pool)

	routerCfg := &router.Config{
		Logger:              logger,
		AvailabilityHandler: availability.NewHandler(availSvc, logger),
		BookingsHandler:     bookings.NewHandler(bookingSvc, logger),
		BlackoutsHandler:    blackouts.NewHandler(blackoutRepo, logger),
		AdminCustomers:      handlers.NewAdminCustomersHandler(adminDB, logger),
		HealthHandler:       healthHandler(pool, rdb),
		MetricsHandler:      promhttp.Handler(),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		AdminAllowlist:      cfg.AdminAllowlist,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		PublicRateLimit:     5,
		PublicRateBurst:     20,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// healthHandler reports the API plus its two hard dependencies.
func healthHandler(pool *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		checks := map[string]string{"postgres": "ok", "redis": "ok"}
		if err := pool.Ping(ctx); err != nil {
			status = "degraded"
			checks["postgres"] = err.Error()
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			status = "degraded"
			checks["redis"] = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": checks})
	}
}
