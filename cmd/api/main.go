package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/mentari-health/mentari-platform/internal/api/router"
	"github.com/mentari-health/mentari-platform/internal/booking"
	"github.com/mentari-health/mentari-platform/internal/catalog"
	appconfig "github.com/mentari-health/mentari-platform/internal/config"
	"github.com/mentari-health/mentari-platform/internal/consultation"
	"github.com/mentari-health/mentari-platform/internal/diagnosis"
	"github.com/mentari-health/mentari-platform/internal/events"
	"github.com/mentari-health/mentari-platform/internal/favorites"
	"github.com/mentari-health/mentari-platform/internal/http/handlers"
	"github.com/mentari-health/mentari-platform/internal/notify"
	"github.com/mentari-health/mentari-platform/internal/observability/metrics"
	"github.com/mentari-health/mentari-platform/internal/payments"
	"github.com/mentari-health/mentari-platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting mentari-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}

	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Stores
	catalogRepo := catalog.NewPostgresRepository(pool)
	bookingRepo := booking.NewRepository(pool)
	draftStore := booking.NewDraftStore(redisClient, cfg.DraftTTL)
	processedStore := events.NewProcessedStore(pool)
	favoritesStore := favorites.NewStore(redisClient)

	// Payment gateway
	var gateway payments.Gateway
	if cfg.AllowFakePayments {
		logger.Warn("fake payments enabled; do not use in production")
		gateway = payments.NewFakeGateway(cfg.PublicBaseURL, logger.Component("payments"))
	} else {
		gateway = payments.NewXenditGateway(cfg.XenditAPIKey, logger.Component("payments")).
			WithBaseURL(cfg.XenditBaseURL)
	}

	// Notifications
	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger.Component("notify")); sg != nil {
		emailSender = sg
	} else {
		logger.Warn("sendgrid not configured; booking emails disabled")
		emailSender = notify.NewStubEmailSender(logger.Component("notify"))
	}
	notifyService := notify.NewService(emailSender, logger.Component("notify"))

	// Services and handlers
	bookingService := booking.NewService(draftStore, bookingRepo, catalogRepo, gateway, booking.ServiceConfig{
		SuccessURL:      cfg.SuccessURL(),
		FailureURL:      cfg.FailureURL(),
		InvoiceDuration: cfg.InvoiceDuration,
	}, bookingMetrics, logger.Component("booking"))

	tokenMinter := consultation.NewTokenMinter(cfg.StreamAPIKey, cfg.StreamAPISecret, cfg.StreamTokenTTL)

	// Post-session diagnosis
	var analyzer diagnosis.Analyzer
	if cfg.GeminiAPIKey != "" {
		gemini, err := diagnosis.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create gemini analyzer", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		analyzer = gemini
	} else {
		logger.Warn("gemini not configured; diagnosis uses the stub analyzer")
		analyzer = diagnosis.NewStubAnalyzer()
	}
	diagnosisService := diagnosis.NewService(
		diagnosis.NewRepository(pool),
		bookingRepo,
		analyzer,
		logger.Component("diagnosis"),
	)

	routerCfg := &router.Config{
		Logger:              logger,
		CatalogHandler:      catalog.NewHandler(catalogRepo, logger.Component("catalog")),
		BookingHandler:      booking.NewHandler(bookingService, logger.Component("booking")),
		ConsultationHandler: consultation.NewHandler(tokenMinter, bookingRepo, logger.Component("consultation")),
		DiagnosisHandler:    diagnosis.NewHandler(diagnosisService, logger.Component("diagnosis")),
		FavoritesHandler:    favorites.NewHandler(favoritesStore, catalogRepo, logger.Component("favorites")),
		XenditWebhook: handlers.NewXenditWebhookHandler(
			cfg.XenditCallbackToken,
			bookingRepo,
			processedStore,
			catalogRepo,
			notifyService,
			bookingMetrics,
			logger.Component("webhook"),
		),
		MetricsHandler:     promhttp.Handler(),
		AuthSecret:         cfg.AuthJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	if cfg.AllowFakePayments {
		routerCfg.FakePayments = payments.NewFakePaymentsHandler(bookingRepo, processedStore, logger.Component("payments"))
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
}
