package adults

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrInvalidCategory = errors.New("category does not belong to the adults tier")
	ErrInvalidLevel    = errors.New("level must be one of A1, A2, B1, B2, C1, C2")
)

var Rules = []tierkit.Rule{
	{Name: "First Lesson", Description: "Complete your first lesson.", Icon: "flag", Target: 1,
		Metric: func(s tierkit.Stats) int { return s.LessonsCompleted }},
	{Name: "Committed", Description: "Complete 25 lessons.", Icon: "calendar", Target: 25,
		Metric: func(s tierkit.Stats) int { return s.LessonsCompleted }},
	{Name: "Wordsmith", Description: "Practice 500 words.", Icon: "pen", Target: 500,
		Metric: func(s tierkit.Stats) int { return s.WordsPracticed }},
	{Name: "Fluent Speaker", Description: "Practice 100 sentences.", Icon: "speech", Target: 100,
		Metric: func(s tierkit.Stats) int { return s.PhrasesPracticed }},
	{Name: "Point Master", Description: "Earn 5000 points.", Icon: "medal", Target: 5000,
		Metric: func(s tierkit.Stats) int { return s.TotalPoints }},
}

type AdultService struct {
	db            *gorm.DB
	registry      *curriculum.Registry
	notifications *services.NotificationService
	progress      *services.ProgressService
}

func NewAdultService(db *gorm.DB, registry *curriculum.Registry, notifications *services.NotificationService, progress *services.ProgressService) *AdultService {
	return &AdultService{db: db, registry: registry, notifications: notifications, progress: progress}
}

func (s *AdultService) checkCategory(category string) error {
	if cat := s.registry.Get(category); cat == nil || cat.Tier != curriculum.TierAdults {
		return ErrInvalidCategory
	}
	return nil
}

func validLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

func (s *AdultService) ListLessons(ctx context.Context, category, level string) ([]AdultLesson, error) {
	var lessons []AdultLesson
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if level != "" {
		query = query.Where("level = ?", level)
	}
	if err := query.Order("category ASC, sort_order ASC, created_at ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *AdultService) GetLesson(ctx context.Context, id uuid.UUID) (*AdultLesson, error) {
	var lesson AdultLesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ? AND is_active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (s *AdultService) CreateLesson(ctx context.Context, lesson *AdultLesson) error {
	if err := s.checkCategory(lesson.Category); err != nil {
		return err
	}
	if lesson.Level == "" {
		lesson.Level = "B1"
	}
	if !validLevel(lesson.Level) {
		return ErrInvalidLevel
	}
	return s.db.WithContext(ctx).Create(lesson).Error
}

func (s *AdultService) UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*AdultLesson, error) {
	if level, ok := updates["level"].(string); ok && !validLevel(level) {
		return nil, ErrInvalidLevel
	}
	result := s.db.WithContext(ctx).Model(&AdultLesson{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLessonNotFound
	}
	var lesson AdultLesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (s *AdultService) ListLessonProgress(ctx context.Context, userID uuid.UUID, category string) ([]AdultLessonProgress, error) {
	var rows []AdultLessonProgress
	query := s.db.WithContext(ctx).Scopes(identity.ForUser(userID))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}
	return rows, nil
}

// CompleteLesson records an attempt. Time spent accumulates; score and points keep
// the best attempt.
func (s *AdultService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, score, minutes int) (*AdultLessonProgress, error) {
	lesson, err := s.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	seed := AdultLessonProgress{UserID: userID, LessonID: lessonID, Category: lesson.Category}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("failed to start lesson progress: %w", err)
	}

	var progress AdultLessonProgress
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to load lesson progress: %w", err)
	}

	now := time.Now()
	progress.Attempts++
	progress.TimeSpent += minutes
	progress.Completed = true
	if progress.CompletedAt == nil {
		progress.CompletedAt = &now
	}
	if score > progress.Score {
		progress.Score = score
		progress.PointsEarned = tierkit.LessonPoints(lesson.Reward, score)
	}
	if err := db.Save(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to save lesson progress: %w", err)
	}

	if s.progress != nil {
		s.progress.SyncTier(ctx, userID, curriculum.TierAdults, lesson.Category)
	}
	if _, err := s.EvaluateAchievements(ctx, userID); err != nil {
		slog.Error("adult achievement evaluation failed", "user_id", userID.String(), "error", err)
	}
	return &progress, nil
}

// Stats combines lesson progress with the user's direct practice sessions in adult
// categories.
func (s *AdultService) Stats(ctx context.Context, userID uuid.UUID) (tierkit.Stats, error) {
	db := s.db.WithContext(ctx)
	var st tierkit.Stats

	var categories []string
	for _, c := range s.registry.ByTier(curriculum.TierAdults) {
		categories = append(categories, c.ID)
	}
	if len(categories) == 0 {
		return st, nil
	}

	var practice struct {
		Words     int
		Sentences int
	}
	err := db.Model(&models.PracticeSession{}).Scopes(identity.ForUser(userID)).
		Where("category IN ? AND source IS NULL", categories).
		Select("COALESCE(SUM(words_practiced), 0) AS words, COALESCE(SUM(sentences_practiced), 0) AS sentences").
		Scan(&practice).Error
	if err != nil {
		return st, err
	}
	st.WordsPracticed = practice.Words
	st.PhrasesPracticed = practice.Sentences

	for _, category := range categories {
		totals, err := collect(db, userID, category)
		if err != nil {
			return st, err
		}
		st.LessonsCompleted += totals.LessonsCompleted
		st.TotalPoints += totals.Points
	}
	return st, nil
}

func (s *AdultService) EvaluateAchievements(ctx context.Context, userID uuid.UUID) ([]AdultAchievement, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute adult stats: %w", err)
	}
	return tierkit.SyncAchievements[AdultAchievement](ctx, s.db, s.notifications, userID, tierkit.Evaluate(Rules, stats))
}

func (s *AdultService) ListCertificates(ctx context.Context, userID uuid.UUID) ([]AdultCertificate, error) {
	var certs []AdultCertificate
	if err := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).Order("issued_at DESC").Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// IssueCertificate certifies a category once every active lesson in it is
// completed. The certificate carries the highest lesson level of the category.
func (s *AdultService) IssueCertificate(ctx context.Context, userID uuid.UUID, category string) (*AdultCertificate, bool, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, false, err
	}

	db := s.db.WithContext(ctx)
	var lessons []AdultLesson
	if err := db.Where("category = ? AND is_active = ?", category, true).Find(&lessons).Error; err != nil {
		return nil, false, err
	}
	if len(lessons) == 0 {
		return nil, false, tierkit.ErrNotEligible
	}

	var progress []AdultLessonProgress
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ? AND completed = ?", category, true).Find(&progress).Error; err != nil {
		return nil, false, err
	}
	done := make(map[uuid.UUID]int, len(progress))
	for _, p := range progress {
		done[p.LessonID] = p.Score
	}

	level, sum := "", 0
	for _, l := range lessons {
		score, ok := done[l.ID]
		if !ok {
			return nil, false, tierkit.ErrNotEligible
		}
		sum += score
		if l.Level > level {
			level = l.Level
		}
	}

	title := s.registry.Get(category).Name + " " + level + " Certificate"
	return tierkit.IssueCertificate[AdultCertificate](ctx, s.db, s.notifications, userID, category, func() *AdultCertificate {
		return &AdultCertificate{
			UserID:           userID,
			Category:         category,
			Title:            title,
			Level:            level,
			LessonsCompleted: len(lessons),
			AverageScore:     sum / len(lessons),
			IssuedAt:         time.Now(),
		}
	})
}
