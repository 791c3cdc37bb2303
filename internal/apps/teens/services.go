package teens

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
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrInvalidCategory   = errors.New("category does not belong to the teens tier")
	ErrInvalidDifficulty = errors.New("difficulty must be easy, medium or hard")
)

// Rules are the teen achievements, evaluated across all teen categories.
var Rules = []tierkit.Rule{
	{Name: "Getting Started", Description: "Complete your first lesson.", Icon: "rocket", Target: 1,
		Metric: func(s tierkit.Stats) int { return s.LessonsCompleted }},
	{Name: "Dedicated Learner", Description: "Complete 15 lessons.", Icon: "books", Target: 15,
		Metric: func(s tierkit.Stats) int { return s.LessonsCompleted }},
	{Name: "Vocabulary Builder", Description: "Practice 100 words.", Icon: "abc", Target: 100,
		Metric: func(s tierkit.Stats) int { return s.WordsPracticed }},
	{Name: "Sharp Memory", Description: "Get 50 words right on the first try.", Icon: "brain", Target: 50,
		Metric: func(s tierkit.Stats) int { return s.WordsFirstTry }},
	{Name: "Clear Voice", Description: "Nail 25 phrases on the first try.", Icon: "microphone", Target: 25,
		Metric: func(s tierkit.Stats) int { return s.PhrasesFirstTry }},
	{Name: "Flawless", Description: "Score 100 in 5 games.", Icon: "diamond", Target: 5,
		Metric: func(s tierkit.Stats) int { return s.PerfectGames }},
	{Name: "High Scorer", Description: "Earn 2500 points.", Icon: "fire", Target: 2500,
		Metric: func(s tierkit.Stats) int { return s.TotalPoints }},
}

type TeenService struct {
	db            *gorm.DB
	registry      *curriculum.Registry
	notifications *services.NotificationService
	progress      *services.ProgressService
	syncer        *practicesync.Syncer
}

func NewTeenService(db *gorm.DB, registry *curriculum.Registry, notifications *services.NotificationService, progress *services.ProgressService, syncer *practicesync.Syncer) *TeenService {
	return &TeenService{
		db:            db,
		registry:      registry,
		notifications: notifications,
		progress:      progress,
		syncer:        syncer,
	}
}

func (s *TeenService) checkCategory(category string) error {
	cat := s.registry.Get(category)
	if cat == nil || cat.Tier != curriculum.TierTeens {
		return ErrInvalidCategory
	}
	return nil
}

// =============================================================================
// LESSONS
// =============================================================================

func (s *TeenService) ListLessons(ctx context.Context, category string) ([]TeenLesson, error) {
	var lessons []TeenLesson
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("category ASC, sort_order ASC, created_at ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *TeenService) GetLesson(ctx context.Context, id uuid.UUID) (*TeenLesson, error) {
	var lesson TeenLesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ? AND is_active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (s *TeenService) CreateLesson(ctx context.Context, lesson *TeenLesson) error {
	if err := s.checkCategory(lesson.Category); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (s *TeenService) UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*TeenLesson, error) {
	result := s.db.WithContext(ctx).Model(&TeenLesson{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLessonNotFound
	}
	var lesson TeenLesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload lesson: %w", err)
	}
	return &lesson, nil
}

func (s *TeenService) ListLessonProgress(ctx context.Context, userID uuid.UUID, category string) ([]TeenLessonProgress, error) {
	var rows []TeenLessonProgress
	query := s.db.WithContext(ctx).Scopes(identity.ForUser(userID))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("updated_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}
	return rows, nil
}

// CompleteLesson records an attempt. The best score and its points are kept across
// attempts.
func (s *TeenService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, score int) (*TeenLessonProgress, error) {
	lesson, err := s.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	seed := TeenLessonProgress{UserID: userID, LessonID: lessonID, Category: lesson.Category}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("failed to start lesson progress: %w", err)
	}

	var progress TeenLessonProgress
	if err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to load lesson progress: %w", err)
	}

	now := time.Now()
	progress.Attempts++
	progress.Completed = true
	if progress.CompletedAt == nil {
		progress.CompletedAt = &now
	}
	if score > progress.Score {
		progress.Score = score
		progress.Stars = tierkit.StarsFor(score)
		progress.PointsEarned = tierkit.LessonPoints(lesson.Reward, score)
	}
	if err := db.Save(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to save lesson progress: %w", err)
	}

	s.afterActivity(ctx, userID, lesson.Category)
	return &progress, nil
}

// =============================================================================
// PRACTICE
// =============================================================================

func (s *TeenService) RecordVocabulary(ctx context.Context, userID uuid.UUID, category, word string, attempts, bestScore int) (*TeenVocabularyPractice, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, err
	}
	row := TeenVocabularyPractice{UserID: userID, Category: category, Word: word, Attempts: attempts, BestScore: bestScore}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to record vocabulary practice: %w", err)
	}
	s.mirror(ctx, vocabularySession(&row))
	s.afterActivity(ctx, userID, category)
	return &row, nil
}

func (s *TeenService) RecordPronunciation(ctx context.Context, userID uuid.UUID, category, phrase string, attempts, bestScore int) (*TeenPronunciationAttempt, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, err
	}
	row := TeenPronunciationAttempt{UserID: userID, Category: category, Phrase: phrase, Attempts: attempts, BestScore: bestScore}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to record pronunciation attempt: %w", err)
	}
	s.mirror(ctx, pronunciationSession(&row))
	s.afterActivity(ctx, userID, category)
	return &row, nil
}

func (s *TeenService) RecordGame(ctx context.Context, row *TeenGameSession) error {
	if err := s.checkCategory(row.Category); err != nil {
		return err
	}
	if row.Difficulty == "" {
		row.Difficulty = "medium"
	}
	if !validDifficulty(row.Difficulty) {
		return ErrInvalidDifficulty
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to record game session: %w", err)
	}
	s.mirror(ctx, gameSession(row))
	s.afterActivity(ctx, row.UserID, row.Category)
	return nil
}

func (s *TeenService) ListVocabulary(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]TeenVocabularyPractice, int64, error) {
	return listOwned[TeenVocabularyPractice](ctx, s.db, userID, category, limit, offset)
}

func (s *TeenService) ListGames(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]TeenGameSession, int64, error) {
	return listOwned[TeenGameSession](ctx, s.db, userID, category, limit, offset)
}

func validDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

func listOwned[T any](ctx context.Context, db *gorm.DB, userID uuid.UUID, category string, limit, offset int) ([]T, int64, error) {
	var rows []T
	var total int64

	query := db.WithContext(ctx).Model(new(T)).Scopes(identity.ForUser(userID))
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// mirror copies a freshly recorded row into practice_sessions. The backfill picks up
// anything missed here.
func (s *TeenService) mirror(ctx context.Context, session models.PracticeSession) {
	if s.syncer == nil {
		return
	}
	if _, err := s.syncer.Merge(ctx, session); err != nil {
		slog.Error("practice session mirror failed", "source", *session.Source, "source_id", *session.SourceID, "error", err)
	}
}

func (s *TeenService) afterActivity(ctx context.Context, userID uuid.UUID, category string) {
	if s.progress != nil {
		s.progress.SyncTier(ctx, userID, curriculum.TierTeens, category)
	}
	if _, err := s.EvaluateAchievements(ctx, userID); err != nil {
		slog.Error("teen achievement evaluation failed", "user_id", userID.String(), "error", err)
	}
}

// =============================================================================
// ACHIEVEMENTS & CERTIFICATES
// =============================================================================

// Stats counts a user's teen activity across all teen categories.
func (s *TeenService) Stats(ctx context.Context, userID uuid.UUID) (tierkit.Stats, error) {
	db := s.db.WithContext(ctx)
	mine := identity.ForUser(userID)
	var st tierkit.Stats

	var practice struct {
		Total    int
		FirstTry int
	}
	firstTry := "COUNT(*) AS total, COALESCE(SUM(CASE WHEN attempts = 1 THEN 1 ELSE 0 END), 0) AS first_try"

	if err := db.Model(&TeenVocabularyPractice{}).Scopes(mine).Select(firstTry).Scan(&practice).Error; err != nil {
		return st, err
	}
	st.WordsPracticed, st.WordsFirstTry = practice.Total, practice.FirstTry

	if err := db.Model(&TeenPronunciationAttempt{}).Scopes(mine).Select(firstTry).Scan(&practice).Error; err != nil {
		return st, err
	}
	st.PhrasesPracticed, st.PhrasesFirstTry = practice.Total, practice.FirstTry

	var games struct {
		Total   int
		Perfect int
	}
	err := db.Model(&TeenGameSession{}).Scopes(mine).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN score >= 100 THEN 1 ELSE 0 END), 0) AS perfect").
		Scan(&games).Error
	if err != nil {
		return st, err
	}
	st.GamesPlayed, st.PerfectGames = games.Total, games.Perfect

	for _, cat := range s.registry.ByTier(curriculum.TierTeens) {
		totals, err := collect(db, userID, cat.ID)
		if err != nil {
			return st, err
		}
		st.LessonsCompleted += totals.LessonsCompleted
		st.TotalPoints += totals.Points
	}
	return st, nil
}

func (s *TeenService) EvaluateAchievements(ctx context.Context, userID uuid.UUID) ([]TeenAchievement, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute teen stats: %w", err)
	}
	return tierkit.SyncAchievements[TeenAchievement](ctx, s.db, s.notifications, userID, tierkit.Evaluate(Rules, stats))
}

func (s *TeenService) ListCertificates(ctx context.Context, userID uuid.UUID) ([]TeenCertificate, error) {
	var certs []TeenCertificate
	if err := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).Order("issued_at DESC").Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// IssueCertificate awards the category certificate once every active lesson in it
// is completed.
func (s *TeenService) IssueCertificate(ctx context.Context, userID uuid.UUID, category string) (*TeenCertificate, bool, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, false, err
	}

	db := s.db.WithContext(ctx)
	if err := tierkit.RequireAllCompleted(db, &TeenLesson{}, &TeenLessonProgress{}, userID, category); err != nil {
		return nil, false, err
	}
	totals, err := collect(db, userID, category)
	if err != nil {
		return nil, false, err
	}

	title := s.registry.Get(category).Name + " Certificate"
	cert, created, err := tierkit.IssueCertificate[TeenCertificate](ctx, s.db, s.notifications, userID, category, func() *TeenCertificate {
		return &TeenCertificate{
			UserID:           userID,
			Category:         category,
			Title:            title,
			LessonsCompleted: totals.LessonsCompleted,
			TotalPoints:      totals.Points,
			IssuedAt:         time.Now(),
		}
	})
	if err != nil {
		return nil, false, err
	}
	return cert, created, nil
}

type Summary struct {
	Progress             []models.CategoryProgress `json:"progress"`
	AchievementsUnlocked int                       `json:"achievements_unlocked"`
	AchievementsTotal    int                       `json:"achievements_total"`
	Certificates         int                       `json:"certificates"`
	Stats                tierkit.Stats             `json:"stats"`
}

func (s *TeenService) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	out := &Summary{}
	for _, cat := range s.registry.ByTier(curriculum.TierTeens) {
		row, err := s.progress.SyncCategoryProgress(ctx, userID, cat.ID)
		if err != nil {
			return nil, err
		}
		out.Progress = append(out.Progress, *row)
	}

	achievements, err := s.EvaluateAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	out.AchievementsTotal = len(achievements)
	for _, a := range achievements {
		if a.Unlocked {
			out.AchievementsUnlocked++
		}
	}

	certs, err := s.ListCertificates(ctx, userID)
	if err != nil {
		return nil, err
	}
	out.Certificates = len(certs)

	if out.Stats, err = s.Stats(ctx, userID); err != nil {
		return nil, err
	}
	return out, nil
}
