package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AdminHandler struct {
	admins   *services.AdminNotificationService
	auth     *services.AuthService
	practice *services.PracticeService
	syncer   *practicesync.Syncer
}

func NewAdminHandler(admins *services.AdminNotificationService, auth *services.AuthService, practice *services.PracticeService, syncer *practicesync.Syncer) *AdminHandler {
	return &AdminHandler{admins: admins, auth: auth, practice: practice, syncer: syncer}
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (h *AdminHandler) ListNotifications(c *fiber.Ctx) error {
	limit, offset := Pagination(c)
	items, total, err := h.admins.List(c.UserContext(), middleware.AdminID(c), c.QueryBool("unread"), c.Query("priority"), limit, offset)
	if err != nil {
		return InternalError(c, "failed to list admin notifications", err)
	}
	return c.JSON(dto.ListResponse{Data: items, Total: total, Limit: limit, Offset: offset})
}

func (h *AdminHandler) CreateNotification(c *fiber.Ctx) error {
	var req dto.CreateAdminNotificationRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	n := &models.AdminNotification{
		Type:      models.AdminNotificationInfo,
		Priority:  req.Priority,
		Title:     req.Title,
		Message:   req.Message,
		Metadata:  datatypes.JSONMap(req.Metadata),
		ExpiresAt: req.ExpiresAt,
	}
	if err := h.admins.Create(c.UserContext(), n); err != nil {
		if errors.Is(err, services.ErrInvalidPriority) {
			return BadRequest(c, err.Error())
		}
		return InternalError(c, "failed to create admin notification", err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

func (h *AdminHandler) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return BadRequest(c, "Invalid notification ID")
	}

	if err := h.admins.MarkRead(c.UserContext(), middleware.AdminID(c), id); err != nil {
		if errors.Is(err, services.ErrAdminNotificationNotFound) {
			return NotFound(c, "Notification not found")
		}
		return InternalError(c, "failed to mark admin notification read", err)
	}
	return c.JSON(dto.MessageResponse{Message: "Notification marked as read"})
}

func (h *AdminHandler) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := h.admins.MarkAllRead(c.UserContext(), middleware.AdminID(c))
	if err != nil {
		return InternalError(c, "failed to mark admin notifications read", err)
	}
	return c.JSON(fiber.Map{"message": "All notifications marked as read", "updated": updated})
}

// =============================================================================
// PRACTICE SESSIONS
// =============================================================================

func (h *AdminHandler) ListPracticeSessions(c *fiber.Ctx) error {
	filter, err := practiceFilter(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}
	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return BadRequest(c, "Invalid user_id")
		}
		filter.UserID = &id
	}

	limit, offset := Pagination(c)
	sessions, total, err := h.practice.List(c.UserContext(), filter, limit, offset)
	if err != nil {
		return InternalError(c, "failed to list practice sessions", err)
	}
	return c.JSON(dto.ListResponse{Data: sessions, Total: total, Limit: limit, Offset: offset})
}

func (h *AdminHandler) ExportPracticeSessions(c *fiber.Ctx) error {
	filter, err := practiceFilter(c)
	if err != nil {
		return BadRequest(c, err.Error())
	}

	ctx := c.UserContext()
	rows := func(fn func(*models.PracticeSession) error) error {
		return h.practice.Each(ctx, filter, fn)
	}
	// The body is buffered, so a failed export can still be replaced by a JSON error.
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="practice-sessions-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	if _, err := export.PracticeSessions(c.Response().BodyWriter(), rows); err != nil {
		c.Response().ResetBody()
		c.Set(fiber.HeaderContentDisposition, "")
		return InternalError(c, "practice export failed", err)
	}
	return nil
}

// SyncPracticeSessions runs the backfill. ?dry_run=true reports without writing and
// ?source=a,b limits the run to those sources.
func (h *AdminHandler) SyncPracticeSessions(c *fiber.Ctx) error {
	opts := practicesync.Options{DryRun: c.QueryBool("dry_run")}
	if v := c.Query("source"); v != "" {
		opts.Only = strings.Split(v, ",")
	}

	report, err := h.syncer.Run(c.UserContext(), opts)
	if err != nil {
		return InternalError(c, "practice sync failed", err)
	}
	if report.Failed > 0 && !opts.DryRun {
		services.ReportSyncFailures(c.UserContext(), h.admins, report)
	}
	return c.JSON(report)
}

// =============================================================================
// USERS
// =============================================================================

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := Pagination(c)
	users, total, err := h.auth.ListUsers(c.UserContext(), c.Query("search"), limit, offset)
	if err != nil {
		return InternalError(c, "failed to list users", err)
	}
	return c.JSON(dto.ListResponse{Data: users, Total: total, Limit: limit, Offset: offset})
}

func (h *AdminHandler) SetUserActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return BadRequest(c, "Invalid user ID")
	}

	var req dto.SetActiveRequest
	if ok, err := ParseBody(c, &req); !ok {
		return err
	}

	if err := h.auth.SetActive(c.UserContext(), id, *req.IsActive); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return NotFound(c, "User not found")
		}
		return InternalError(c, "failed to update user", err)
	}

	state := "disabled"
	if *req.IsActive {
		state = "enabled"
	}
	return c.JSON(dto.MessageResponse{Message: "User " + state})
}
