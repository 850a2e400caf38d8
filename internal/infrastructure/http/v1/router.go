// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assetdesk/internal/domain/recyclebin"
	"assetdesk/internal/infrastructure/http/v1/handlers"
	"assetdesk/internal/infrastructure/http/v1/middleware"
	"assetdesk/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// SessionManager owns live view sessions
	SessionManager *recyclebin.Manager

	// Aggregator loads and renders the deleted collections
	Aggregator *recyclebin.Aggregator

	// Coordinator drives the recover/delete workflows
	Coordinator *recyclebin.Coordinator

	// ActionLog serves the activity page; nil disables the route
	ActionLog handlers.ActionLogReader

	// Pool is the optional action log database (health checks only here)
	Pool *pgxpool.Pool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())

	// Health and metrics endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Auth(cfg.JWTValidator))
	{
		baseHandler := handlers.NewBaseHandler()
		recycleBinHandler := handlers.NewRecycleBinHandler(
			baseHandler, cfg.SessionManager, cfg.Aggregator, cfg.Coordinator,
		)

		recycleBin := apiV1.Group("")
		recycleBin.Use(middleware.RequirePermission("recyclebin:access"))
		recycleBinHandler.RegisterRoutes(recycleBin)

		if cfg.ActionLog != nil {
			actionLogHandler := handlers.NewActionLogHandler(baseHandler, cfg.ActionLog)
			apiV1.GET("/actionlog",
				middleware.RequirePermission("actionlog:read"), actionLogHandler.List)
		}
	}

	return router
}
