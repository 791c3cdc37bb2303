package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAdminNotificationNotFound = errors.New("admin notification not found")
	ErrInvalidPriority           = errors.New("invalid priority: must be low, medium, high, or urgent")
)

type AdminNotificationService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdminNotificationService(db *gorm.DB) *AdminNotificationService {
	return &AdminNotificationService{db: db, now: time.Now}
}

func (s *AdminNotificationService) Create(ctx context.Context, n *models.AdminNotification) error {
	if n.Priority == "" {
		n.Priority = models.PriorityMedium
	}
	if !validPriority(n.Priority) {
		return ErrInvalidPriority
	}
	if n.Type == "" {
		n.Type = models.AdminNotificationInfo
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create admin notification: %w", err)
	}
	return nil
}

// NotifyNewUser tells every admin about a signup. Failures are logged, never returned,
// so registration does not depend on it.
func (s *AdminNotificationService) NotifyNewUser(ctx context.Context, user *models.User) {
	expires := s.now().AddDate(0, 0, 30)
	err := s.Create(ctx, &models.AdminNotification{
		Type:     models.AdminNotificationNewUser,
		Priority: models.PriorityLow,
		Title:    "New user registered",
		Message:  fmt.Sprintf("%s (%s) created an account.", user.Name, user.Email),
		Metadata: datatypes.JSONMap{
			"user_id": user.ID.String(),
			"email":   user.Email,
		},
		ExpiresAt: &expires,
	})
	if err != nil {
		slog.Error("failed to notify admins of new user", "user_id", user.ID.String(), "error", err)
	}
}

// NotifySystem raises a high-priority global alert.
func (s *AdminNotificationService) NotifySystem(ctx context.Context, title, message string, metadata map[string]interface{}) error {
	return s.Create(ctx, &models.AdminNotification{
		Type:     models.AdminNotificationSystem,
		Priority: models.PriorityHigh,
		Title:    title,
		Message:  message,
		Metadata: datatypes.JSONMap(metadata),
	})
}

// visibleTo limits a query to unexpired rows addressed to everyone or to adminID.
func (s *AdminNotificationService) visibleTo(adminID *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("expires_at IS NULL OR expires_at > ?", s.now())
		if adminID == nil {
			return db.Where("admin_id IS NULL")
		}
		return db.Where("admin_id IS NULL OR admin_id = ?", *adminID)
	}
}

func (s *AdminNotificationService) List(ctx context.Context, adminID *uuid.UUID, unreadOnly bool, priority string, limit, offset int) ([]models.AdminNotification, int64, error) {
	var items []models.AdminNotification
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AdminNotification{}).Scopes(s.visibleTo(adminID))
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count admin notifications: %w", err)
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list admin notifications: %w", err)
	}
	return items, total, nil
}

func (s *AdminNotificationService) MarkRead(ctx context.Context, adminID *uuid.UUID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.AdminNotification{}).
		Scopes(s.visibleTo(adminID)).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	if result.Error != nil {
		return fmt.Errorf("failed to mark admin notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAdminNotificationNotFound
	}
	return nil
}

func (s *AdminNotificationService) MarkAllRead(ctx context.Context, adminID *uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.AdminNotification{}).
		Scopes(s.visibleTo(adminID)).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": s.now()})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark admin notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeExpired deletes notifications whose expiry has passed.
func (s *AdminNotificationService) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&models.AdminNotification{})
	return result.RowsAffected, result.Error
}

func validPriority(p string) bool {
	for _, v := range models.Priorities {
		if v == p {
			return true
		}
	}
	return false
}
