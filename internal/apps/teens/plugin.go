package teens

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TeensPlugin struct{}

func New() *TeensPlugin {
	return &TeensPlugin{}
}

func (p *TeensPlugin) ID() string { return "teens" }

func (p *TeensPlugin) Models() []interface{} {
	return []interface{}{
		&TeenLesson{},
		&TeenLessonProgress{},
		&TeenVocabularyPractice{},
		&TeenPronunciationAttempt{},
		&TeenGameSession{},
		&TeenAchievement{},
		&TeenCertificate{},
	}
}

func (p *TeensPlugin) ProgressSource() services.ProgressSource {
	return progressSource{}
}

func (p *TeensPlugin) PracticeSources() []practicesync.Source {
	return practiceSources()
}

func newHandler(deps *apps.Deps) *TeenHandler {
	return NewTeenHandler(NewTeenService(deps.DB, deps.Registry, deps.Notifications, deps.Progress, deps.Syncer))
}

func (p *TeensPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := newHandler(deps)
	router.Use(middleware.TierCategory(deps.Registry, curriculum.TierTeens))

	// Lessons
	router.Get("/lessons", handler.ListLessons)
	router.Get("/lessons/:id", handler.GetLesson)
	router.Get("/progress", handler.ListProgress)
	router.Post("/lessons/:id/complete", handler.CompleteLesson)

	// Practice
	router.Post("/vocabulary", handler.RecordVocabulary)
	router.Get("/vocabulary", handler.ListVocabulary)
	router.Post("/pronunciation", handler.RecordPronunciation)
	router.Post("/games", handler.RecordGame)
	router.Get("/games", handler.ListGames)

	// Rewards
	router.Get("/achievements", handler.Achievements)
	router.Get("/certificates", handler.Certificates)
	router.Post("/certificates", handler.IssueCertificate)
	router.Get("/summary", handler.Summary)
}

func (p *TeensPlugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	handler := newHandler(deps)
	router.Post("/lessons", handler.CreateLesson)
	router.Patch("/lessons/:id", handler.UpdateLesson)
}
