package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ProgressHandler struct {
	progress    *services.ProgressService
	leaderboard *services.Leaderboard
}

func NewProgressHandler(progress *services.ProgressService, leaderboard *services.Leaderboard) *ProgressHandler {
	return &ProgressHandler{progress: progress, leaderboard: leaderboard}
}

func (h *ProgressHandler) List(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	rows, err := h.progress.List(c.UserContext(), userID)
	if err != nil {
		return InternalError(c, "failed to list progress", err)
	}
	return c.JSON(fiber.Map{"data": rows})
}

// Get recomputes the category before returning it, so the row is never stale.
func (h *ProgressHandler) Get(c *fiber.Ctx) error {
	return h.sync(c)
}

func (h *ProgressHandler) Sync(c *fiber.Ctx) error {
	return h.sync(c)
}

func (h *ProgressHandler) sync(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	row, err := h.progress.SyncCategoryProgress(c.UserContext(), userID, c.Params("category"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownCategory):
			return NotFound(c, "Unknown category")
		case errors.Is(err, services.ErrNoProgressSource):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Progress for this category is not available",
			})
		}
		return InternalError(c, "failed to sync progress", err)
	}
	return c.JSON(row)
}

func (h *ProgressHandler) Leaderboard(c *fiber.Ctx) error {
	category := c.Params("category")
	if !h.progress.Registry().Exists(category) {
		return NotFound(c, "Unknown category")
	}

	entries, err := h.leaderboard.Top(c.UserContext(), category, c.QueryInt("limit", 20))
	if err != nil {
		return InternalError(c, "failed to load leaderboard", err)
	}
	return c.JSON(fiber.Map{"category": category, "entries": entries})
}
