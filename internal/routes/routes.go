package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

// Handlers groups the shared HTTP handlers mounted next to the plugins.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Notifications *handlers.NotificationHandler
	Practice      *handlers.PracticeHandler
	Progress      *handlers.ProgressHandler
	Admin         *handlers.AdminHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	registry *curriculum.Registry,
	h Handlers,
	plugins []apps.Plugin,
	deps *apps.Deps,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Auth: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)
	auth.Get("/me", middleware.JWTProtected(cfg), h.Auth.Me)
	auth.Put("/profile", middleware.JWTProtected(cfg), h.Auth.UpdateProfile)
	auth.Get("/:provider", h.Auth.SocialLogin)

	jwt := middleware.JWTProtected(cfg)

	practice := api.Group("/practice", jwt)
	practice.Post("/", h.Practice.Create)
	practice.Get("/", h.Practice.List)
	practice.Get("/stats", h.Practice.Stats)

	progress := api.Group("/progress", jwt)
	progress.Get("/", h.Progress.List)
	progress.Get("/:category", middleware.KnownCategory(registry), h.Progress.Get)
	progress.Post("/:category/sync", middleware.KnownCategory(registry), h.Progress.Sync)

	notifications := api.Group("/notifications", jwt)
	notifications.Get("/", h.Notifications.List)
	notifications.Get("/unread-count", h.Notifications.UnreadCount)
	notifications.Post("/read-all", h.Notifications.MarkAllRead)
	notifications.Post("/:id/read", h.Notifications.MarkRead)

	api.Get("/leaderboard/:category", jwt, middleware.KnownCategory(registry), h.Progress.Leaderboard)

	// Admin panel: JWT admin or X-Admin-Token
	admin := api.Group("/admin", middleware.AdminTokenOrJWT(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/notifications", h.Admin.ListNotifications)
	admin.Post("/notifications", h.Admin.CreateNotification)
	admin.Post("/notifications/read-all", h.Admin.MarkAllNotificationsRead)
	admin.Post("/notifications/:id/read", h.Admin.MarkNotificationRead)
	admin.Get("/practice", h.Admin.ListPracticeSessions)
	admin.Get("/practice/export", h.Admin.ExportPracticeSessions)
	admin.Post("/practice/sync", h.Admin.SyncPracticeSessions)
	admin.Get("/users", h.Admin.ListUsers)
	admin.Patch("/users/:id/active", h.Admin.SetUserActive)

	// Each plugin gets /api/<id> behind JWT, and /api/admin/<id> when it has admin routes.
	for _, p := range plugins {
		p.RegisterRoutes(api.Group("/"+p.ID(), jwt), deps)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin.Group("/"+p.ID()), deps)
		}
	}
}
