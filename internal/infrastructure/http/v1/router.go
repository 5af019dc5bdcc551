// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salesdocs/internal/infrastructure/http/v1/handlers"
	"salesdocs/internal/infrastructure/http/v1/middleware"
	"salesdocs/pkg/logger"
)

// RouterConfig holds the router dependencies.
type RouterConfig struct {
	Logger *logger.Logger

	// JWTValidator guards mutating routes. Nil disables authentication.
	JWTValidator middleware.JWTValidator

	// Idempotency replays retried mutating requests. Nil disables it.
	Idempotency middleware.IdempotencyStore

	Documents  handlers.DocumentService
	Projects   handlers.ProjectService
	Warranties handlers.WarrantyService

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handlers.Pinger

	// Metrics is optional; when set, /metrics is served and requests are counted.
	Metrics MetricsProvider

	RequestTimeout time.Duration
	RedirectTLS    bool
	Debug          bool
}

// MetricsProvider exposes request instrumentation and the scrape handler.
type MetricsProvider interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecureHeaders(cfg.RedirectTLS))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	if cfg.JWTValidator != nil {
		api.Use(middleware.RequireAuthFor(cfg.JWTValidator))
	}
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerDocumentRoutes(api, handlers.NewDocumentHandler(base, cfg.Documents))
	registerProjectRoutes(api, handlers.NewProjectHandler(base, cfg.Projects))
	registerWarrantyRoutes(api, handlers.NewWarrantyHandler(base, cfg.Warranties))

	return router
}
