package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"paygate/internal/app"
	"paygate/internal/config"
	"paygate/internal/handler"
	internalRedis "paygate/internal/redis"
	"paygate/internal/repository/postgres"
	"paygate/internal/service"
	"paygate/internal/session"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// The session registry owns the amount locks; its sweeper reclaims
	// expired sessions in the background.
	registry := session.NewRegistry()
	registry.Start()
	defer registry.Stop()

	// Wire dependencies.
	server := wireServer(registry, db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(registry *session.Registry, db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	txnRepo := postgres.NewTransactionRepository(db)

	// Initialize services.
	notifier := service.NewWebhookNotifier(cfg.Payment.ChatWebhookURL)
	qrEncoder := service.NewMockQREncoder()
	intentService := service.NewIntentService(registry, qrEncoder, cfg.Payment)
	reconcileService := service.NewReconcileService(
		registry,
		txnRepo,
		lockStore,
		notifier,
		cfg.Payment.MaxVerificationAttempts,
		cfg.Payment.NotifyTimeout,
	)
	statusService := service.NewStatusService(registry, txnRepo, cacheStore)

	// Initialize handlers.
	intentHandler := handler.NewIntentHandler(intentService)
	webhookHandler := handler.NewWebhookHandler(reconcileService, cfg.Payment.WebhookSecret)
	statusHandler := handler.NewStatusHandler(statusService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		IntentHandler:  intentHandler,
		WebhookHandler: webhookHandler,
		StatusHandler:  statusHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
