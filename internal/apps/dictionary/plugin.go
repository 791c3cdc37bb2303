package dictionary

import (
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/gofiber/fiber/v2"
)

type DictionaryPlugin struct{}

func New() *DictionaryPlugin {
	return &DictionaryPlugin{}
}

func (p *DictionaryPlugin) ID() string { return "dictionary" }

func (p *DictionaryPlugin) Models() []interface{} {
	return []interface{}{
		&Flashcard{},
	}
}

func (p *DictionaryPlugin) RegisterRoutes(router fiber.Router, deps *apps.Deps) {
	handler := NewFlashcardHandler(NewFlashcardService(deps.DB))

	router.Get("/flashcards", handler.List)
	router.Post("/flashcards", handler.Create)
	router.Get("/flashcards/due", handler.Due)
	router.Post("/flashcards/import", handler.Import)
	router.Get("/flashcards/:id", handler.Get)
	router.Put("/flashcards/:id", handler.Update)
	router.Delete("/flashcards/:id", handler.Delete)
	router.Post("/flashcards/:id/review", handler.Review)
}
