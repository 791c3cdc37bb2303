package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	limit, offset := Pagination(c)
	items, total, err := h.notifications.List(c.UserContext(), userID, c.QueryBool("unread"), limit, offset)
	if err != nil {
		return InternalError(c, "failed to list notifications", err)
	}
	return c.JSON(dto.ListResponse{Data: items, Total: total, Limit: limit, Offset: offset})
}

func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	count, err := h.notifications.UnreadCount(c.UserContext(), userID)
	if err != nil {
		return InternalError(c, "failed to count notifications", err)
	}
	return c.JSON(dto.UnreadCountResponse{Count: count})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return BadRequest(c, "Invalid notification ID")
	}

	if err := h.notifications.MarkRead(c.UserContext(), userID, id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			return NotFound(c, "Notification not found")
		}
		return InternalError(c, "failed to mark notification read", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return Unauthorized(c)
	}

	updated, err := h.notifications.MarkAllRead(c.UserContext(), userID)
	if err != nil {
		return InternalError(c, "failed to mark notifications read", err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "updated": updated})
}
