package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryProgress is a denormalized rollup per (user, category). It is always
// recomputed from the tier source tables and never edited directly.
type CategoryProgress struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_category_progress_user_category,priority:1" json:"user_id"`
	Category           string          `gorm:"size:50;not null;uniqueIndex:idx_category_progress_user_category,priority:2;index" json:"category"`
	TotalPoints        int             `gorm:"not null;default:0" json:"total_points"`
	CurrentStreak      int             `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak      int             `gorm:"not null;default:0" json:"longest_streak"`
	LessonsCompleted   int             `gorm:"not null;default:0" json:"lessons_completed"`
	TotalLessons       int             `gorm:"not null;default:0" json:"total_lessons"`
	StoriesCompleted   int             `gorm:"not null;default:0" json:"stories_completed"`
	AverageScore       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"average_score"`
	Level              int             `gorm:"not null;default:1" json:"level"`
	ProgressPercentage int             `gorm:"not null;default:0" json:"progress_percentage"`
	LastActivityAt     *time.Time      `json:"last_activity_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (CategoryProgress) TableName() string {
	return "category_progress"
}
