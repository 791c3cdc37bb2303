package adults

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
	Score            int `json:"score" validate:"min=0,max=100"`
	TimeSpentMinutes int `json:"time_spent_minutes" validate:"min=0"`
}

type CertificateRequest struct {
	Category string `json:"category" validate:"required"`
}

type LessonRequest struct {
	Category         string                 `json:"category" validate:"required"`
	Title            string                 `json:"title" validate:"required,max=200"`
	Description      string                 `json:"description"`
	Level            string                 `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
	Order            int                    `json:"order"`
	EstimatedMinutes int                    `json:"estimated_minutes" validate:"min=0"`
	Content          map[string]interface{} `json:"content"`
	Reward           int                    `json:"reward" validate:"min=0"`
}

type UpdateLessonRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	Level    *string `json:"level" validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
	Order    *int    `json:"order"`
	Reward   *int    `json:"reward" validate:"omitempty,min=0"`
	IsActive *bool   `json:"is_active"`
}

type AdultHandler struct {
	service *AdultService
}

func NewAdultHandler(service *AdultService) *AdultHandler {
	return &AdultHandler{service: service}
}

func (h *AdultHandler) ListLessons(c *fiber.Ctx) error {
	lessons, err := h.service.ListLessons(c.UserContext(), c.Query("category"), c.Query("level"))
	if err != nil {
		return handlers.InternalError(c, "failed to list adult lessons", err)
	}
	return c.JSON(fiber.Map{"data": lessons})
}

func (h *AdultHandler) GetLesson(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return handlers.BadRequest(c, "Invalid lesson ID")
	}
	lesson, err := h.service.GetLesson(c.UserContext(), id)
	if errors.Is(err, ErrLessonNotFound) {
		return handlers.NotFound(c, "Lesson not found")
	}
	if err != nil {
		return handlers.InternalError(c, "failed to get adult lesson", err)
	}
	return c.JSON(lesson)
}

func (h *AdultHandler) ListProgress(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	rows, err := h.service.ListLessonProgress(c.UserContext(), userID, c.Query("category"))
	if err != nil {
		return handlers.InternalError(c, "failed to list adult lesson progress", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *AdultHandler) CompleteLesson(c *fiber.Ctx) error {
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

	progress, err := h.service.CompleteLesson(c.UserContext(), userID, id, req.Score, req.TimeSpentMinutes)
	if errors.Is(err, ErrLessonNotFound) {
		return handlers.NotFound(c, "Lesson not found")
	}
	if err != nil {
		return handlers.InternalError(c, "failed to complete adult lesson", err)
	}
	return c.JSON(progress)
}

func (h *AdultHandler) Achievements(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	rows, err := h.service.EvaluateAchievements(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to load adult achievements", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

func (h *AdultHandler) Certificates(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}
	certs, err := h.service.ListCertificates(c.UserContext(), userID)
	if err != nil {
		return handlers.InternalError(c, "failed to list adult certificates", err)
	}
	return c.JSON(fiber.Map{"data": certs})
}

func (h *AdultHandler) IssueCertificate(c *fiber.Ctx) error {
	userID, err := handlers.CurrentUser(c)
	if err != nil {
		return handlers.Unauthorized(c)
	}

	var req CertificateRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	cert, created, err := h.service.IssueCertificate(c.UserContext(), userID, req.Category)
	switch {
	case errors.Is(err, ErrInvalidCategory):
		return handlers.BadRequest(c, err.Error())
	case errors.Is(err, tierkit.ErrNotEligible):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "Complete every lesson in this category first",
		})
	case err != nil:
		return handlers.InternalError(c, "failed to issue adult certificate", err)
	}

	if created {
		return c.Status(fiber.StatusCreated).JSON(cert)
	}
	return c.JSON(cert)
}

func (h *AdultHandler) CreateLesson(c *fiber.Ctx) error {
	var req LessonRequest
	if ok, err := handlers.ParseBody(c, &req); !ok {
		return err
	}

	lesson := &AdultLesson{
		Category:         req.Category,
		Title:            req.Title,
		Description:      req.Description,
		Level:            req.Level,
		Order:            req.Order,
		EstimatedMinutes: req.EstimatedMinutes,
		Content:          datatypes.JSONMap(req.Content),
		Reward:           req.Reward,
		IsActive:         true,
	}
	if lesson.Reward == 0 {
		lesson.Reward = 100
	}
	if lesson.EstimatedMinutes == 0 {
		lesson.EstimatedMinutes = 15
	}

	err := h.service.CreateLesson(c.UserContext(), lesson)
	if errors.Is(err, ErrInvalidCategory) || errors.Is(err, ErrInvalidLevel) {
		return handlers.BadRequest(c, err.Error())
	}
	if err != nil {
		return handlers.InternalError(c, "failed to create adult lesson", err)
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *AdultHandler) UpdateLesson(c *fiber.Ctx) error {
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
	if req.Level != nil {
		updates["level"] = *req.Level
	}
	if req.Order != nil {
		updates["sort_order"] = *req.Order
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
	switch {
	case errors.Is(err, ErrLessonNotFound):
		return handlers.NotFound(c, "Lesson not found")
	case errors.Is(err, ErrInvalidLevel):
		return handlers.BadRequest(c, err.Error())
	case err != nil:
		return handlers.InternalError(c, "failed to update adult lesson", err)
	}
	return c.JSON(lesson)
}
