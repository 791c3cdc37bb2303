package adults

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type progressSource struct{}

func (progressSource) Tier() string { return curriculum.TierAdults }

func (progressSource) Collect(ctx context.Context, db *gorm.DB, userID uuid.UUID, category string) (services.ProgressTotals, error) {
	return collect(db.WithContext(ctx), userID, category)
}

// collect sums one adult category: lesson progress plus sessions the user reported
// directly. Mirrored sessions belong to the kids and teens tiers and are skipped.
func collect(db *gorm.DB, userID uuid.UUID, category string) (services.ProgressTotals, error) {
	var t services.ProgressTotals

	active, err := tierkit.ActiveLessons(db, &AdultLesson{}, category)
	if err != nil {
		return t, err
	}
	t.TotalLessons = len(active)

	var lessons []AdultLessonProgress
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ? AND completed = ?", category, true).Find(&lessons).Error; err != nil {
		return t, err
	}
	// Points from deactivated lessons stay earned, but only active lessons count
	// toward completion.
	for _, l := range lessons {
		if active[l.LessonID] {
			t.LessonsCompleted++
		}
		t.Points += l.PointsEarned
		t.AddScore(l.Score)
		t.AddActivity(l.UpdatedAt)
	}

	var sessions []models.PracticeSession
	err = db.Scopes(identity.ForUser(userID)).
		Where("category = ? AND source IS NULL", category).
		Select("points_earned", "score", "practiced_at").
		Find(&sessions).Error
	if err != nil {
		return t, err
	}
	for _, s := range sessions {
		t.Points += s.PointsEarned
		t.AddScore(s.Score)
		t.AddActivity(s.PracticedAt)
	}
	return t, nil
}
