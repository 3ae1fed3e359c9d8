package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	fiberRecover "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"film-catalog-service/internal/cache"
	"film-catalog-service/internal/config"
	"film-catalog-service/internal/database"
	"film-catalog-service/internal/handler"
	"film-catalog-service/internal/middleware"
	"film-catalog-service/internal/repository"
	"film-catalog-service/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	// Storage backend
	var (
		stores repository.Stores
		db     *sql.DB
	)
	switch cfg.StorageBackend {
	case config.BackendMemory:
		slog.Info("using in-memory storage")
		stores = repository.NewMemory()
	default:
		db, err = database.NewPostgres(cfg.DB)
		if err != nil {
			slog.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		stores = repository.NewPostgres(db)
	}

	// Connect to Redis (non-fatal if unavailable)
	var rdb *redis.Client
	if cfg.Cache.Enabled {
		rdb, err = database.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable, running without cache", "error", err)
			rdb = nil
		}
	}

	strategy, err := service.StrategyByName(cfg.RecommendationStrategy)
	if err != nil {
		slog.Error("invalid recommendation strategy", "error", err)
		os.Exit(1)
	}

	// Initialize layers
	filmCache := cache.New(rdb, cfg.Cache.TTL, cache.DefaultBreakerSettings())
	svc := service.NewFilmService(stores, strategy, filmCache)
	h := handler.NewFilmHandler(svc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Film Catalog Service",
		ServerHeader: "Film-Catalog",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(fiberRecover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.NewRateLimiter(rdb, cfg.RateLimitMax, cfg.RateLimitWindowSeconds).Handler())

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, "Film Catalog", swaggerYAML)
	}

	// Probes and metrics
	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	h.Register(app.Group("/api/v1"))

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.Port
		slog.Info("starting film catalog service",
			"addr", addr,
			"backend", cfg.StorageBackend,
			"strategy", strategy.Name(),
			"cache", filmCache.State(),
		)
		if err := app.Listen(addr); err != nil {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down film catalog service...")

	if err := app.Shutdown(); err != nil {
		slog.Error("error shutting down HTTP server", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing Redis connection", "error", err)
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			slog.Error("error closing PostgreSQL connection", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
