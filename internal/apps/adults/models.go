package adults

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CEFR levels an adult lesson can target.
var Levels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

type AdultLesson struct {
	ID               uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Category         string            `gorm:"size:50;not null;index" json:"category"`
	Title            string            `gorm:"size:200;not null" json:"title"`
	Description      string            `gorm:"type:text" json:"description"`
	Level            string            `gorm:"size:2;not null;default:'B1'" json:"level"`
	Order            int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	EstimatedMinutes int               `gorm:"not null;default:15" json:"estimated_minutes"`
	Content          datatypes.JSONMap `json:"content"`
	Reward           int               `gorm:"not null;default:100" json:"reward"`
	IsActive         bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

type AdultLessonProgress struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_adult_lesson_progress_user_lesson,priority:1" json:"user_id"`
	LessonID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_adult_lesson_progress_user_lesson,priority:2" json:"lesson_id"`
	Category     string     `gorm:"size:50;not null;index" json:"category"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	Score        int        `gorm:"not null;default:0" json:"score"`
	PointsEarned int        `gorm:"not null;default:0" json:"points_earned"`
	TimeSpent    int        `gorm:"not null;default:0" json:"time_spent_minutes"`
	Attempts     int        `gorm:"not null;default:0" json:"attempts"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdultLessonProgress) TableName() string {
	return "adult_lesson_progress"
}

type AdultAchievement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_adult_achievement_user_name,priority:1" json:"user_id"`
	Name        string     `gorm:"size:100;not null;uniqueIndex:idx_adult_achievement_user_name,priority:2" json:"name"`
	Description string     `gorm:"size:255" json:"description"`
	Icon        string     `gorm:"size:50" json:"icon"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Target      int        `gorm:"not null;default:1" json:"target"`
	Unlocked    bool       `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *AdultAchievement) AchievementName() string { return a.Name }
func (a *AdultAchievement) IsUnlocked() bool        { return a.Unlocked }

func (a *AdultAchievement) Apply(userID uuid.UUID, r tierkit.Result, now time.Time) {
	a.UserID = userID
	a.Name = r.Rule.Name
	a.Description = r.Rule.Description
	a.Icon = r.Rule.Icon
	a.Target = r.Rule.Target
	if !a.Unlocked {
		a.Progress = r.Progress
	}
	if r.Unlocked && !a.Unlocked {
		a.Unlocked = true
		a.UnlockedAt = &now
	}
}

type AdultCertificate struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_adult_certificate_user_category,priority:1" json:"user_id"`
	Category         string    `gorm:"size:50;not null;uniqueIndex:idx_adult_certificate_user_category,priority:2" json:"category"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	Level            string    `gorm:"size:2" json:"level"`
	LessonsCompleted int       `gorm:"not null;default:0" json:"lessons_completed"`
	AverageScore     int       `gorm:"not null;default:0" json:"average_score"`
	IssuedAt         time.Time `gorm:"not null" json:"issued_at"`
}

func (c *AdultCertificate) CertificateID() uuid.UUID  { return c.ID }
func (c *AdultCertificate) CertificateTitle() string { return c.Title }
