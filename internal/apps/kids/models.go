package kids

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Source tags stored in practice_sessions.source for mirrored kids rows.
const (
	SourceVocabulary    = "kids_vocabulary"
	SourcePronunciation = "kids_pronunciation"
	SourceGame          = "kids_game"
)

type KidsLesson struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Category    string            `gorm:"size:50;not null;index" json:"category"`
	Title       string            `gorm:"size:200;not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Order       int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	Content     datatypes.JSONMap `json:"content"`
	Reward      int               `gorm:"not null;default:50" json:"reward"`
	IsActive    bool              `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type KidsLessonProgress struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_kids_lesson_progress_user_lesson,priority:1" json:"user_id"`
	LessonID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_kids_lesson_progress_user_lesson,priority:2" json:"lesson_id"`
	Category     string     `gorm:"size:50;not null;index" json:"category"`
	Completed    bool       `gorm:"not null;default:false" json:"completed"`
	Score        int        `gorm:"not null;default:0" json:"score"`
	Stars        int        `gorm:"not null;default:0" json:"stars"`
	PointsEarned int        `gorm:"not null;default:0" json:"points_earned"`
	Attempts     int        `gorm:"not null;default:0" json:"attempts"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (KidsLessonProgress) TableName() string {
	return "kids_lesson_progress"
}

type KidsStoryProgress struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_kids_story_progress_user_story,priority:1" json:"user_id"`
	StoryKey     string    `gorm:"size:100;not null;uniqueIndex:idx_kids_story_progress_user_story,priority:2" json:"story_key"`
	Category     string    `gorm:"size:50;not null;index" json:"category"`
	Title        string    `gorm:"size:200" json:"title"`
	Score        int       `gorm:"not null;default:0" json:"score"`
	PointsEarned int       `gorm:"not null;default:0" json:"points_earned"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (KidsStoryProgress) TableName() string {
	return "kids_story_progress"
}

type KidsVocabularyPractice struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Category  string    `gorm:"size:50;not null;index" json:"category"`
	Word      string    `gorm:"size:100;not null" json:"word"`
	Attempts  int       `gorm:"not null;default:1" json:"attempts"`
	BestScore int       `gorm:"not null;default:0" json:"best_score"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (KidsVocabularyPractice) TableName() string {
	return "kids_vocabulary_practice"
}

type KidsPronunciationAttempt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Category  string    `gorm:"size:50;not null;index" json:"category"`
	Phrase    string    `gorm:"size:255;not null" json:"phrase"`
	Attempts  int       `gorm:"not null;default:1" json:"attempts"`
	BestScore int       `gorm:"not null;default:0" json:"best_score"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type KidsGameSession struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Category        string    `gorm:"size:50;not null;index" json:"category"`
	GameType        string    `gorm:"size:50;not null" json:"game_type"`
	Score           int       `gorm:"not null;default:0" json:"score"`
	PointsEarned    int       `gorm:"not null;default:0" json:"points_earned"`
	Mistakes        int       `gorm:"not null;default:0" json:"mistakes"`
	DurationSeconds int       `gorm:"not null;default:0" json:"duration_seconds"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

type KidsAchievement struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_kids_achievement_user_name,priority:1" json:"user_id"`
	Name        string     `gorm:"size:100;not null;uniqueIndex:idx_kids_achievement_user_name,priority:2" json:"name"`
	Description string     `gorm:"size:255" json:"description"`
	Icon        string     `gorm:"size:50" json:"icon"`
	Progress    int        `gorm:"not null;default:0" json:"progress"`
	Target      int        `gorm:"not null;default:1" json:"target"`
	Unlocked    bool       `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (a *KidsAchievement) AchievementName() string { return a.Name }
func (a *KidsAchievement) IsUnlocked() bool        { return a.Unlocked }

func (a *KidsAchievement) Apply(userID uuid.UUID, r tierkit.Result, now time.Time) {
	a.UserID = userID
	a.Name = r.Rule.Name
	a.Description = r.Rule.Description
	a.Icon = r.Rule.Icon
	a.Target = r.Rule.Target
	if r.Progress > a.Progress || !a.Unlocked {
		a.Progress = r.Progress
	}
	if r.Unlocked && !a.Unlocked {
		a.Unlocked = true
		a.UnlockedAt = &now
	}
}

type KidsCertificate struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_kids_certificate_user_category,priority:1" json:"user_id"`
	Category         string    `gorm:"size:50;not null;uniqueIndex:idx_kids_certificate_user_category,priority:2" json:"category"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	LessonsCompleted int       `gorm:"not null;default:0" json:"lessons_completed"`
	TotalPoints      int       `gorm:"not null;default:0" json:"total_points"`
	IssuedAt         time.Time `gorm:"not null" json:"issued_at"`
}

func (c *KidsCertificate) CertificateID() uuid.UUID  { return c.ID }
func (c *KidsCertificate) CertificateTitle() string { return c.Title }
