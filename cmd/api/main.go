package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/voice-receptionist/cmd/mainconfig"
	"github.com/wolfman30/voice-receptionist/internal/api/router"
	"github.com/wolfman30/voice-receptionist/internal/app/bootstrap"
	appconfig "github.com/wolfman30/voice-receptionist/internal/config"
	"github.com/wolfman30/voice-receptionist/internal/dashboard"
	httpmiddleware "github.com/wolfman30/voice-receptionist/internal/http/middleware"
	"github.com/wolfman30/voice-receptionist/internal/leads"
	"github.com/wolfman30/voice-receptionist/internal/notify"
	"github.com/wolfman30/voice-receptionist/internal/observability/metrics"
	"github.com/wolfman30/voice-receptionist/internal/settings"
	"github.com/wolfman30/voice-receptionist/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting voice-receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	metricsHandler, contactMetrics := setupMetrics()

	var sesClient *sesv2.Client
	if bootstrap.NeedsSES(cfg) {
		client, err := mainconfig.NewSESClient(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
		} else {
			sesClient = client
		}
	}
	settingsStore := bootstrap.BuildSettingsStore(redisClient)
	notifier := notify.NewService(
		bootstrap.BuildEmailSender(cfg, sesClient, logger),
		[]string{cfg.SalesInbox},
		settings.Preferences{Store: settingsStore},
		logger,
	)

	leadsRepo := bootstrap.BuildLeadRepository(pool, logger)
	contactLimiter := httpmiddleware.NewRateLimiter(cfg.ContactRateLimit, cfg.ContactRateBurst)
	defer contactLimiter.Stop()

	r := router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadsRepo, notifier, contactMetrics, logger),
		SettingsHandler:    settings.NewHandler(settingsStore, logger),
		DashboardHandler:   dashboard.NewHandler(logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ContactLimiter:     contactLimiter,
		HealthChecks:       healthChecks(pool, redisClient),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// setupMetrics registers the contact metrics on a private registry together
// with the Go and process collectors.
func setupMetrics() (http.Handler, *metrics.ContactMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	contactMetrics := metrics.NewContactMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), contactMetrics
}

// connectPostgresPool returns nil when the URL is empty or the database is
// unreachable; leads then fall back to memory.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	pool, err := bootstrap.BuildPgxPool(ctx, databaseURL)
	if err != nil {
		logger.Error("postgres not available", "error", err)
		return nil
	}
	return pool
}

func healthChecks(pool *pgxpool.Pool, redisClient *redis.Client) map[string]router.HealthCheck {
	checks := map[string]router.HealthCheck{}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	return checks
}
