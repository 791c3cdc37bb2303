package handlers

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PracticeHandler struct {
	practice *services.PracticeService
	progress *services.ProgressService
}

func NewPracticeHandler(practice *services.PracticeService, progress *services.ProgressService) *PracticeHandler {
	return &PracticeHandler{practice: practice, progress: progress}
}

func (h *PracticeHandler) Create(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	var req dto.CreatePracticeRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}
	if req.Category != "" && !h.progress.Registry().Exists(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Validation failed",
			Errors:  map[string][]string{"category": {"Unknown category."}},
		})
	}

	session, err := h.practice.Create(c.UserContext(), userID, req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSessionType) {
			return BadRequest(c, err.Error())
		}
		return InternalError(c, "failed to create practice session", err)
	}

	if session.Category != "" {
		if cat := h.progress.Registry().Get(session.Category); cat != nil {
			h.progress.SyncTier(c.UserContext(), userID, cat.Tier, cat.ID)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *PracticeHandler) List(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	filter, err := practiceFilter(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	filter.UserID = &userID

	limit, offset := Pagination(c)
	sessions, total, err := h.practice.List(c.UserContext(), filter, limit, offset)
	if err != nil {
		return InternalError(c, "failed to list practice sessions", err)
	}
	return c.JSON(dto.ListResponse{Data: sessions, Total: total, Limit: limit, Offset: offset})
}

func (h *PracticeHandler) Stats(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	stats, err := h.practice.Stats(c.UserContext(), userID)
	if err != nil {
		return InternalError(c, "failed to aggregate practice sessions", err)
	}
	return c.JSON(stats)
}

// practiceFilter reads session_type, category, source, from and to (YYYY-MM-DD).
func practiceFilter(c *fiber.Ctx) (dto.PracticeFilter, error) {
	f := dto.PracticeFilter{
		SessionType: c.Query("session_type"),
		Category:    c.Query("category"),
		Source:      c.Query("source"),
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return f, errors.New("from must be YYYY-MM-DD")
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return f, errors.New("to must be YYYY-MM-DD")
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	return f, nil
}
