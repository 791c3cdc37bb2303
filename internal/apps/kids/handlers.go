package kids

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type CompleteLessonRequest struct {
	Score int `json:"score" validate:"min=0,max=100"`
}

type CompleteStoryRequest struct {
	Category string `json:"category" validate:"required"`
	StoryKey string `json:"story_key" validate:"required,max=100"`
	Title    string `json:"title" validate:"max=200"`
	Score    int    `json:"score" validate:"min=0,max=100"`
}

type PracticeRequest struct {
	Category  string `json:"category" validate:"required"`
	Text      string `json:"text" validate:"required,max=255"`
	Attempts  int    `json:"attempts" validate:"min=1"`
	BestScore int    `json:"best_score" validate:"min=0,max=100"`
}

type GameRequest struct {
	Category        string `json:"category" validate:"required"`
	GameType        string `json:"game_type" validate:"required,max=50"`
	Score           int    `json:"score" validate:"min=0"`
	PointsEarned    int    `json:"points_earned" validate:"min=0"`
	Mistakes        int    `json:"mistakes" validate:"min=0"`
	DurationSeconds int    `json:"duration_seconds" validate:"min=0"`
}

type CertificateRequest struct {
	Category string `json:"category" validate:"required"`
}

type LessonRequest struct {
	Category    string                 `json:"category" validate:"required"`
	Title       string                 `json:"title" validate:"required,max=200"`
	Description string                 `json:"description"`
	Order       int                    `json:"order"`
	Content     map[string]interface{} `json:"content"`
	Reward      int                    `json:"reward" validate:"min=0"`
}

type UpdateLessonRequest struct {
	Title       *string                `json:"title" validate:"omitempty,max=200"`
	Description *string                `json:"description"`
	Order       *int                   `json:"order"`
	Content     map[string]interface{} `json:"content"`
	Reward      *int                   `json:"reward" validate:"omitempty,min=0"`
	IsActive    *bool                  `json:"is_active"`
}

type KidsHandler struct {
	service *KidsService
}

func NewKidsHandler(service *KidsService) *KidsHandler {
	return &KidsHandler{service: service}
}

func (h *KidsHandler) ListLessons(c *fiber.Ctx) error {
	lessons, err := h.service.ListLessons(c.UserContext(), c.Query("category"))
	if err != nil {
		return handlers.InternalError(c, "failed to list kids lessons", err)
	}
	return c.JSON(fiber.Map{"data": lessons})
}

func (h *KidsHandler) GetLesson(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid lesson ID")
	}

	lesson, err := h.service.GetLesson(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return handlers.NotFound(c, "Lesson not found")
		}
		return handlers.InternalError(c, "failed to get kids lesson", err)
	}
	return c.JSON(lesson)
}

func (h *KidsHandler) ListProgress(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	rows, err := h.service.ListLessonProgress(c.UserContext(), userID, c.Query("category"))
	if err != nil {
		return handlers.InternalError(c, "failed to list kids lesson progress", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *KidsHandler) CompleteLesson(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid lesson ID")
	}

	var req CompleteLessonRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	progress, err := h.service.CompleteLesson(c.UserContext(), userID, id, req.Score)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return handlers.NotFound(c, "Lesson not found")
		}
		return handlers.InternalError(c, "failed to complete kids lesson", err)
	}
	return c.JSON(progress)
}

func (h *KidsHandler) CompleteStory(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req CompleteStoryRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	story, err := h.service.CompleteStory(c.UserContext(), userID, req.Category, req.StoryKey, req.Title, req.Score)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCategory):
			return handlers.BadRequest(c, err.Error())
		case errors.Is(err, ErrStoryAlreadyDone):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: "Story already completed",
			})
		}
		return handlers.InternalError(c, "failed to complete kids story", err)
	}
	return c.Status(fiber.StatusCreated).JSON(story)
}

func (h *KidsHandler) RecordVocabulary(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req PracticeRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	row, err := h.service.RecordVocabulary(c.UserContext(), userID, req.Category, req.Text, req.Attempts, req.BestScore)
	if err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			return handlers.BadRequest(c, err.Error())
		}
		return handlers.InternalError(c, "failed to record kids vocabulary", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *KidsHandler) ListVocabulary(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	limit, offset := handlers.Pagination(c)
	rows, total, err := h.service.ListVocabulary(c.UserContext(), userID, c.Query("category"), limit, offset)
	if err != nil {
		return handlers.InternalError(c, "failed to list kids vocabulary", err)
	}
	return c.JSON(dto.ListResponse{Data: rows, Total: total, Limit: limit, Offset: offset})
}

func (h *KidsHandler) RecordPronunciation(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req PracticeRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	row, err := h.service.RecordPronunciation(c.UserContext(), userID, req.Category, req.Text, req.Attempts, req.BestScore)
	if err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			return handlers.BadRequest(c, err.Error())
		}
		return handlers.InternalError(c, "failed to record kids pronunciation", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *KidsHandler) RecordGame(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req GameRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	row := &KidsGameSession{
		UserID:          userID,
		Category:        req.Category,
		GameType:        req.GameType,
		Score:           req.Score,
		PointsEarned:    req.PointsEarned,
		Mistakes:        req.Mistakes,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.service.RecordGame(c.UserContext(), row); err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			return handlers.BadRequest(c, err.Error())
		}
		return handlers.InternalError(c, "failed to record kids game", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *KidsHandler) ListGames(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	limit, offset := handlers.Pagination(c)
	rows, total, err := h.service.ListGames(c.UserContext(), userID, c.Query("category"), limit, offset)
	if err != nil {
		return handlers.InternalError(c, "failed to list kids games", err)
	}
	return c.JSON(dto.ListResponse{Data: rows, Total: total, Limit: limit, Offset: offset})
}

// Achievements re-evaluates the rules so the list reflects the latest activity.
func (h *KidsHandler) Achievements(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	rows, err := h.service.EvaluateAchievements(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to load kids achievements", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *KidsHandler) Certificates(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	certs, err := h.service.ListCertificates(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to list kids certificates", err)
	}
	return c.JSON(fiber.Map{"data": certs})
}

func (h *KidsHandler) IssueCertificate(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req CertificateRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	cert, created, err := h.service.IssueCertificate(c.UserContext(), userID, req.Category)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCategory):
			return handlers.BadRequest(c, err.Error())
		case errors.Is(err, tierkit.ErrNotEligible):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: "Complete every lesson in this category first",
			})
		}
		return handlers.InternalError(c, "failed to issue kids certificate", err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(cert)
}

func (h *KidsHandler) Summary(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	summary, err := h.service.Summary(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to build kids summary", err)
	}
	return c.JSON(summary)
}

// =============================================================================
// ADMIN
// =============================================================================

func (h *KidsHandler) CreateLesson(c *fiber.Ctx) error {
	var req LessonRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	lesson := &KidsLesson{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		Order:       req.Order,
		Content:     datatypes.JSONMap(req.Content),
		Reward:      req.Reward,
		IsActive:    true,
	}
	if lesson.Reward == 0 {
		lesson.Reward = 50
	}
	if err := h.service.CreateLesson(c.UserContext(), lesson); err != nil {
		if errors.Is(err, ErrInvalidCategory) {
			return handlers.BadRequest(c, err.Error())
		}
		return handlers.InternalError(c, "failed to create kids lesson", err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *KidsHandler) UpdateLesson(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid lesson ID")
	}

	var req UpdateLessonRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
	}
	if req.Content != nil {
		updates["content"] = datatypes.JSONMap(req.Content)
	}
	if req.Reward != nil {
		updates["reward"] = *req.Reward
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return handlers.BadRequest(c, "Nothing to update")
	}

	lesson, err := h.service.UpdateLesson(c.UserContext(), id, updates)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return handlers.NotFound(c, "Lesson not found")
		}
		return handlers.InternalError(c, "failed to update kids lesson", err)
	}
	return c.JSON(lesson)
}
