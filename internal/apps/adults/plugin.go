package adults

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdultsPlugin struct{}

func New() *AdultsPlugin {
	return &AdultsPlugin{}
}

func (p *AdultsPlugin) ID() string { return "adults" }

func (p *AdultsPlugin) Models() []interface{} {
	return []interface{}{
		&AdultLesson{},
		&AdultLessonProgress{},
		&AdultAchievement{},
		&AdultCertificate{},
	}
}

func (p *AdultsPlugin) ProgressSource() services.ProgressSource {
	return progressSource{}
}

func (p *AdultsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewAdultHandler(NewAdultService(deps.DB, deps.Registry, deps.Notifications, deps.Progress))
	router.Use(middleware.TierCategory(deps.Registry, curriculum.TierAdults))

	router.Get("/lessons", handler.ListLessons)
	router.Get("/lessons/:id", handler.GetLesson)
	router.Post("/lessons/:id/complete", handler.CompleteLesson)
	router.Get("/progress", handler.ListProgress)
	router.Get("/achievements", handler.Achievements)
	router.Get("/certificates", handler.Certificates)
	router.Post("/certificates", handler.IssueCertificate)
}

func (p *AdultsPlugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewAdultHandler(NewAdultService(deps.DB, deps.Registry, deps.Notifications, deps.Progress))
	router.Post("/lessons", handler.CreateLesson)
	router.Patch("/lessons/:id", handler.UpdateLesson)
}
