package tierkit

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonSet holds the ids of a category's active lessons.
type LessonSet map[uuid.UUID]bool

// ActiveLessons loads the active lessons of category from a tier lesson table.
func ActiveLessons(db *gorm.DB, lessonModel interface{}, category string) (LessonSet, error) {
	var ids []uuid.UUID
	if err := db.Model(lessonModel).Where("category = ? AND is_active = ?", category, true).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load active lessons: %w", err)
	}
	set := make(LessonSet, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// CompletedBy reports whether every lesson in the set appears in done. An empty set
// is never completed.
func (s LessonSet) CompletedBy(done []uuid.UUID) bool {
	if len(s) == 0 {
		return false
	}
	seen := make(map[uuid.UUID]bool, len(done))
	for _, id := range done {
		if s[id] {
			seen[id] = true
		}
	}
	return len(seen) == len(s)
}

// CompletedLessons returns the lesson ids the user has completed in category.
func CompletedLessons(db *gorm.DB, progressModel interface{}, userID uuid.UUID, category string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(progressModel).
		Where("user_id = ? AND category = ? AND completed = ?", userID, category, true).
		Pluck("lesson_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load completed lessons: %w", err)
	}
	return ids, nil
}

// RequireAllCompleted returns ErrNotEligible unless the user completed every active
// lesson of category.
func RequireAllCompleted(db *gorm.DB, lessonModel, progressModel interface{}, userID uuid.UUID, category string) error {
	active, err := ActiveLessons(db, lessonModel, category)
	if err != nil {
		return err
	}
	done, err := CompletedLessons(db, progressModel, userID, category)
	if err != nil {
		return err
	}
	if !active.CompletedBy(done) {
		return ErrNotEligible
	}
	return nil
}
