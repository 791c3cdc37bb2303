package kids

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type KidsPlugin struct{}

func New() *KidsPlugin {
	return &KidsPlugin{}
}

func (p *KidsPlugin) ID() string { return "kids" }

func (p *KidsPlugin) Models() []interface{} {
	return []interface{}{
		&KidsLesson{},
		&KidsLessonProgress{},
		&KidsStoryProgress{},
		&KidsVocabularyPractice{},
		&KidsPronunciationAttempt{},
		&KidsGameSession{},
		&KidsAchievement{},
		&KidsCertificate{},
	}
}

func (p *KidsPlugin) ProgressSource() services.ProgressSource {
	return progressSource{}
}

func (p *KidsPlugin) PracticeSources() []practicesync.Source {
	return practiceSources()
}

func newHandler(deps *apps.Deps) *KidsHandler {
	return NewKidsHandler(NewKidsService(deps.DB, deps.Registry, deps.Notifications, deps.Progress, deps.Syncer))
}

func (p *KidsPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := newHandler(deps)
	router.Use(middleware.TierCategory(deps.Registry, curriculum.TierKids))

	// Lessons
	router.Get("/lessons", handler.ListLessons)
	router.Get("/lessons/:id", handler.GetLesson)
	router.Get("/progress", handler.ListProgress)
	router.Post("/lessons/:id/complete", handler.CompleteLesson)
	router.Post("/stories/complete", handler.CompleteStory)

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

func (p *KidsPlugin) RegisterAdminRoutes(router fiber.Router, deps *apps.Deps) {
	handler := newHandler(deps)
	router.Post("/lessons", handler.CreateLesson)
	router.Patch("/lessons/:id", handler.UpdateLesson)
}
