package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationAchievement = "achievement"
	NotificationCertificate = "certificate"
	NotificationGeneral     = "general"
)

// UserNotification is one entry in a learner's feed. EventKey identifies the
// real-world event; (user_id, event_key) is unique so an event notifies at most once.
type UserNotification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_notification_event,priority:1" json:"user_id"`
	EventKey  *string    `gorm:"size:150;uniqueIndex:idx_user_notification_event,priority:2" json:"event_key,omitempty"`
	Type      string     `gorm:"size:30;not null;default:'general'" json:"type"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Link      string     `gorm:"size:255" json:"link,omitempty"`
	IsRead    bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

const (
	AdminNotificationNewUser = "new_user"
	AdminNotificationSystem  = "system"
	AdminNotificationInfo    = "info"
)

// AdminNotification is an alert for staff. A nil AdminID means every admin sees it.
type AdminNotification struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID   *uuid.UUID        `gorm:"type:uuid;index" json:"admin_id,omitempty"`
	Type      string            `gorm:"size:30;not null;default:'info'" json:"type"`
	Priority  string            `gorm:"size:10;not null;default:'medium'" json:"priority"`
	Title     string            `gorm:"size:200;not null" json:"title"`
	Message   string            `gorm:"type:text" json:"message"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	IsRead    bool              `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	ExpiresAt *time.Time        `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}
