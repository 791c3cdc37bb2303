package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// Notify stores n unless a notification with the same (user, event key) exists.
// It returns the stored row and whether this call created it. Notifications
// without an event key are always created.
func (s *NotificationService) Notify(ctx context.Context, n *models.UserNotification) (*models.UserNotification, bool, error) {
	db := s.db.WithContext(ctx)

	if n.EventKey == nil {
		if err := db.Create(n).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create notification: %w", err)
		}
		return n, true, nil
	}

	if existing, err := s.findByEvent(db, n.UserID, *n.EventKey); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(n)
	if result.Error != nil {
		return nil, false, fmt.Errorf("failed to create notification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Lost a race with a concurrent writer; the unique index kept one row.
		existing, err := s.findByEvent(db, n.UserID, *n.EventKey)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	return n, true, nil
}

func (s *NotificationService) findByEvent(db *gorm.DB, userID uuid.UUID, eventKey string) (*models.UserNotification, error) {
	var existing models.UserNotification
	err := db.Scopes(identity.ForUser(userID)).Where("event_key = ?", eventKey).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up notification: %w", err)
	}
	return &existing, nil
}

// NotifyCertificate announces an issued certificate once per certificate id.
func (s *NotificationService) NotifyCertificate(ctx context.Context, userID, certificateID uuid.UUID, title string) (*models.UserNotification, bool, error) {
	key := CertificateEventKey(certificateID)
	return s.Notify(ctx, &models.UserNotification{
		UserID:   userID,
		EventKey: &key,
		Type:     models.NotificationCertificate,
		Title:    "New certificate earned!",
		Message:  fmt.Sprintf("Congratulations! You earned the certificate \"%s\".", title),
		Link:     "/certificates/" + certificateID.String(),
	})
}

// NotifyAchievement announces an unlocked achievement once per achievement name.
func (s *NotificationService) NotifyAchievement(ctx context.Context, userID uuid.UUID, name, description string) (*models.UserNotification, bool, error) {
	key := AchievementEventKey(name)
	message := fmt.Sprintf("You unlocked \"%s\".", name)
	if description != "" {
		message += " " + description
	}
	return s.Notify(ctx, &models.UserNotification{
		UserID:   userID,
		EventKey: &key,
		Type:     models.NotificationAchievement,
		Title:    "Achievement unlocked!",
		Message:  message,
		Link:     "/achievements",
	})
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.UserNotification, int64, error) {
	var items []models.UserNotification
	var total int64

	query := s.db.WithContext(ctx).Model(&models.UserNotification{}).Scopes(identity.ForUser(userID))
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, total, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.UserNotification{}).
		Scopes(identity.ForUser(userID)).
		Where("is_read = ?", false).
		Count(&n).Error
	return n, err
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.UserNotification{}).
		Scopes(identity.ForUser(userID)).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&models.UserNotification{}).
		Scopes(identity.ForUser(userID)).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{"is_read": true, "read_at": time.Now()})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}
