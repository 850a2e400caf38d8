// Package main is the entry point for the assetdesk console backend.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"assetdesk/internal/core/retention"
	"assetdesk/internal/domain/auth"
	"assetdesk/internal/domain/recyclebin"
	"assetdesk/internal/infrastructure/backend"
	v1 "assetdesk/internal/infrastructure/http/v1"
	"assetdesk/internal/infrastructure/storage/postgres"
	"assetdesk/pkg/logger"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting assetdesk server")

	// --- Collaborator clients ---
	serviceToken := mustEnv("BACKEND_SERVICE_TOKEN")
	backendTimeout := getEnvDuration("BACKEND_TIMEOUT", 30*time.Second)

	inventory := backend.NewInventoryClient(backend.Config{
		BaseURL: mustEnv("INVENTORY_URL"),
		Token:   serviceToken,
		Timeout: backendTimeout,
	})
	settings := backend.NewSettingsClient(backend.Config{
		BaseURL: mustEnv("SETTINGS_URL"),
		Token:   serviceToken,
		Timeout: backendTimeout,
	})
	gateway := backend.NewGateway(inventory, settings)

	// --- Optional action log database ---
	var pool *pgxpool.Pool
	var recorder recyclebin.ActionRecorder
	var actionLog *postgres.ActionLogStore
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Fatalw("failed to ping database", "error", err)
		}

		store, err := postgres.NewActionLogStore(pool)
		if err != nil {
			log.Fatalw("failed to create action log store", "error", err)
		}
		recorder = store
		actionLog = store
		log.Info("action log enabled")
	} else {
		log.Info("no DATABASE_URL set, action log disabled")
	}

	// --- Domain services ---
	windowDays := getEnvInt("RETENTION_WINDOW_DAYS", retention.DefaultWindowDays)
	aggregator := recyclebin.NewAggregator(gateway, windowDays)
	coordinator := recyclebin.NewCoordinator(gateway, windowDays, recorder)

	sessionManager := recyclebin.NewManager(getEnvDuration("SESSION_MAX_IDLE", 30*time.Minute))

	// Periodic idle-session eviction
	evictTicker := time.NewTicker(getEnvDuration("SESSION_EVICT_INTERVAL", 5*time.Minute))
	defer evictTicker.Stop()
	go func() {
		for range evictTicker.C {
			if n := sessionManager.EvictIdle(); n > 0 {
				log.Infow("evicted idle sessions", "count", n)
			}
		}
	}()

	// --- JWT Service ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtConfig := auth.DefaultJWTConfig(jwtSecret)
	jwtService := auth.NewJWTService(jwtConfig)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:         log,
		JWTValidator:   jwtService,
		SessionManager: sessionManager,
		Aggregator:     aggregator,
		Coordinator:    coordinator,
		Pool:           pool,
	}
	// Assign only when present so the router's nil check sees a nil interface.
	if actionLog != nil {
		routerCfg.ActionLog = actionLog
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port, "retention_window_days", windowDays)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
