package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/redis/go-redis/v9"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/installed"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.LogLevel)

	if missing := cfg.Validate(); len(missing) > 0 {
		slog.Error("required environment variables are missing", "vars", strings.Join(missing, ", "))
		os.Exit(1)
	}

	registry, err := curriculum.Load(cfg.CategoriesConfigPath)
	if err != nil {
		slog.Error("failed to load categories", "path", cfg.CategoriesConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("categories loaded", "count", len(registry.All()))

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(db); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	plugins := installed.Plugins()
	if err := database.MigrateModels(db, apps.AllModels(plugins)); err != nil {
		slog.Error("plugin migration failed", "error", err)
		os.Exit(1)
	}
	for _, p := range plugins {
		slog.Info("plugin migrated", "plugin", p.ID(), "models", len(p.Models()))
	}

	// system_logs sink (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(db)
	logging.Attach(stdout, dbLogHandler)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Optional Redis for the leaderboard
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = services.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, leaderboard reads from database", "error", err)
			redisClient = nil
		}
	}

	// Services
	adminNotifications := services.NewAdminNotificationService(db)
	authService := services.NewAuthService(db, cfg, adminNotifications)
	notificationService := services.NewNotificationService(db)
	practiceService := services.NewPracticeService(db)
	leaderboard := services.NewLeaderboard(db, redisClient)
	progressService := services.NewProgressService(db, registry, leaderboard, apps.ProgressSources(plugins)...)
	syncer := practicesync.NewSyncer(db, apps.PracticeSources(plugins)...)

	maintenance := services.NewMaintenance(db, adminNotifications, cfg.LogRetentionDays)
	if err := maintenance.Start(); err != nil {
		slog.Error("maintenance scheduler failed to start", "error", err)
		os.Exit(1)
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Health:        handlers.NewHealthHandler(db, registry),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Practice:      handlers.NewPracticeHandler(practiceService, progressService),
		Progress:      handlers.NewProgressHandler(progressService, leaderboard),
		Admin:         handlers.NewAdminHandler(adminNotifications, authService, practiceService, syncer),
	}
	deps := &apps.Deps{
		DB:            db,
		Config:        cfg,
		Registry:      registry,
		Notifications: notificationService,
		Progress:      progressService,
		Syncer:        syncer,
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    8 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	routes.Setup(app, cfg, db, registry, h, plugins, deps)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "plugins", len(plugins))
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	maintenance.Stop()
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
