package teens

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
	Rounds          int    `json:"rounds" validate:"min=0"`
	Difficulty      string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
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

type TeenHandler struct {
	service *TeenService
}

func NewTeenHandler(service *TeenService) *TeenHandler {
	return &TeenHandler{service: service}
}

func (h *TeenHandler) ListLessons(c *fiber.Ctx) error {
	lessons, err := h.service.ListLessons(c.UserContext(), c.Query("category"))
	if err != nil {
		return handlers.InternalError(c, "failed to list teen lessons", err)
	}
	return c.JSON(fiber.Map{"data": lessons})
}

func (h *TeenHandler) GetLesson(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid lesson ID")
	}

	lesson, err := h.service.GetLesson(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return handlers.NotFound(c, "Lesson not found")
		}
		return handlers.InternalError(c, "failed to get teen lesson", err)
	}
	return c.JSON(lesson)
}

func (h *TeenHandler) ListProgress(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	rows, err := h.service.ListLessonProgress(c.UserContext(), userID, c.Query("category"))
	if err != nil {
		return handlers.InternalError(c, "failed to list teen lesson progress", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *TeenHandler) CompleteLesson(c *fiber.Ctx) error {
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
		return handlers.InternalError(c, "failed to complete teen lesson", err)
	}
	return c.JSON(progress)
}

func (h *TeenHandler) RecordVocabulary(c *fiber.Ctx) error {
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
		return handlers.InternalError(c, "failed to record teen vocabulary", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *TeenHandler) ListVocabulary(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	limit, offset := handlers.Pagination(c)
	rows, total, err := h.service.ListVocabulary(c.UserContext(), userID, c.Query("category"), limit, offset)
	if err != nil {
		return handlers.InternalError(c, "failed to list teen vocabulary", err)
	}
	return c.JSON(dto.ListResponse{Data: rows, Total: total, Limit: limit, Offset: offset})
}

func (h *TeenHandler) RecordPronunciation(c *fiber.Ctx) error {
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
		return handlers.InternalError(c, "failed to record teen pronunciation", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *TeenHandler) RecordGame(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req GameRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	row := &TeenGameSession{
		UserID:          userID,
		Category:        req.Category,
		GameType:        req.GameType,
		Score:           req.Score,
		PointsEarned:    req.PointsEarned,
		Mistakes:        req.Mistakes,
		Rounds:          req.Rounds,
		Difficulty:      req.Difficulty,
		DurationSeconds: req.DurationSeconds,
	}
	if err := h.service.RecordGame(c.UserContext(), row); err != nil {
		if errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrInvalidDifficulty) {
			return handlers.BadRequest(c, err.Error())
		}
		return handlers.InternalError(c, "failed to record teen game", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

func (h *TeenHandler) ListGames(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	limit, offset := handlers.Pagination(c)
	rows, total, err := h.service.ListGames(c.UserContext(), userID, c.Query("category"), limit, offset)
	if err != nil {
		return handlers.InternalError(c, "failed to list teen games", err)
	}
	return c.JSON(dto.ListResponse{Data: rows, Total: total, Limit: limit, Offset: offset})
}

// Achievements re-evaluates the rules so the list reflects the latest activity.
func (h *TeenHandler) Achievements(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	rows, err := h.service.EvaluateAchievements(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to load teen achievements", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *TeenHandler) Certificates(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	certs, err := h.service.ListCertificates(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to list teen certificates", err)
	}
	return c.JSON(fiber.Map{"data": certs})
}

func (h *TeenHandler) IssueCertificate(c *fiber.Ctx) error {
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
		return handlers.InternalError(c, "failed to issue teen certificate", err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(cert)
}

func (h *TeenHandler) Summary(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	summary, err := h.service.Summary(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to build teen summary", err)
	}
	return c.JSON(summary)
}

// =============================================================================
// ADMIN
// =============================================================================

func (h *TeenHandler) CreateLesson(c *fiber.Ctx) error {
	var req LessonRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	lesson := &TeenLesson{
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
		return handlers.InternalError(c, "failed to create teen lesson", err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *TeenHandler) UpdateLesson(c *fiber.Ctx) error {
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
		return handlers.InternalError(c, "failed to update teen lesson", err)
	}
	return c.JSON(lesson)
}
