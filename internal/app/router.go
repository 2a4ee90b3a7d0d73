package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"paygate/internal/handler"
	"paygate/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	IntentHandler  *handler.IntentHandler
	WebhookHandler *handler.WebhookHandler
	StatusHandler  *handler.StatusHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	startedAt := time.Now()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":         "ok",
			"timestamp":      time.Now().UTC().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
		})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		v1.POST("/intents", deps.IntentHandler.CreateIntent)
		v1.POST("/webhooks/payment", deps.WebhookHandler.HandleConfirmation)
		v1.POST("/payments/status", deps.StatusHandler.CheckStatus)
	}

	return router
}
