package api

import (
	"github.com/Conceptual-Machines/studybuddy-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/studybuddy-api/internal/api/middleware"
	"github.com/Conceptual-Machines/studybuddy-api/internal/config"
	"github.com/Conceptual-Machines/studybuddy-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the HTTP layer calls into
type Dependencies struct {
	Generator handlers.Generator
	Store     handlers.UsageStore // nil when no database is configured
	Recorder  metrics.Recorder
	Stats     handlers.StatsSource // optional, reported by /api/metrics
	Status    handlers.ServiceStatus
	Version   string
}

func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	healthHandler := handlers.NewHealthHandler(deps.Status)
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.Status, deps.Stats)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	if cfg.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}
	{
		chatHandler := handlers.NewChatHandler(deps.Generator, deps.Store)
		v1.POST("/chat", chatHandler.Chat)
		v1.GET("/history", chatHandler.History)
	}

	return router
}
