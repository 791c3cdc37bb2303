package kids

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
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrInvalidCategory  = errors.New("category does not belong to the kids tier")
	ErrStoryAlreadyDone = errors.New("story already completed")
)

// Rules are the kids achievements, evaluated across all kids categories.
var Rules = []tierkit.Rule{
	{Name: "First Steps", Description: "Complete your first lesson.", Icon: "footprints", Target: 1,
		Metric: func(s tierkit.Stats) int { return s.LessonsCompleted }},
	{Name: "Lesson Explorer", Description: "Complete 10 lessons.", Icon: "compass", Target: 10,
		Metric: func(s tierkit.Stats) int { return s.LessonsCompleted }},
	{Name: "Story Time", Description: "Finish 3 stories.", Icon: "book", Target: 3,
		Metric: func(s tierkit.Stats) int { return s.StoriesCompleted }},
	{Name: "Word Wizard", Description: "Get 50 words right on the first try.", Icon: "wand", Target: 50,
		Metric: func(s tierkit.Stats) int { return s.WordsFirstTry }},
	{Name: "Super Speaker", Description: "Say 20 phrases right on the first try.", Icon: "microphone", Target: 20,
		Metric: func(s tierkit.Stats) int { return s.PhrasesFirstTry }},
	{Name: "Game Champion", Description: "Play 10 games.", Icon: "trophy", Target: 10,
		Metric: func(s tierkit.Stats) int { return s.GamesPlayed }},
	{Name: "Point Collector", Description: "Earn 1000 points.", Icon: "star", Target: 1000,
		Metric: func(s tierkit.Stats) int { return s.TotalPoints }},
}

type KidsService struct {
	db            *gorm.DB
	registry      *curriculum.Registry
	notifications *services.NotificationService
	progress      *services.ProgressService
	syncer        *practicesync.Syncer
}

func NewKidsService(db *gorm.DB, registry *curriculum.Registry, notifications *services.NotificationService, progress *services.ProgressService, syncer *practicesync.Syncer) *KidsService {
	return &KidsService{
		db:            db,
		registry:      registry,
		notifications: notifications,
		progress:      progress,
		syncer:        syncer,
	}
}

func (s *KidsService) checkCategory(category string) error {
	cat := s.registry.Get(category)
	if cat == nil || cat.Tier != curriculum.TierKids {
		return ErrInvalidCategory
	}
	return nil
}

// =============================================================================
// LESSONS
// =============================================================================

func (s *KidsService) ListLessons(ctx context.Context, category string) ([]KidsLesson, error) {
	var lessons []KidsLesson
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Order("category ASC, sort_order ASC, created_at ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (s *KidsService) GetLesson(ctx context.Context, id uuid.UUID) (*KidsLesson, error) {
	var lesson KidsLesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ? AND is_active = ?", id, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &lesson, nil
}

func (s *KidsService) CreateLesson(ctx context.Context, lesson *KidsLesson) error {
	if err := s.checkCategory(lesson.Category); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (s *KidsService) UpdateLesson(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*KidsLesson, error) {
	result := s.db.WithContext(ctx).Model(&KidsLesson{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrLessonNotFound
	}
	var lesson KidsLesson
	if err := s.db.WithContext(ctx).First(&lesson, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload lesson: %w", err)
	}
	return &lesson, nil
}

func (s *KidsService) ListLessonProgress(ctx context.Context, userID uuid.UUID, category string) ([]KidsLessonProgress, error) {
	var rows []KidsLessonProgress
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
func (s *KidsService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, score int) (*KidsLessonProgress, error) {
	lesson, err := s.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	seed := KidsLessonProgress{UserID: userID, LessonID: lessonID, Category: lesson.Category}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("failed to start lesson progress: %w", err)
	}

	var progress KidsLessonProgress
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

// CompleteStory records a finished story once per story key.
func (s *KidsService) CompleteStory(ctx context.Context, userID uuid.UUID, category, storyKey, title string, score int) (*KidsStoryProgress, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, err
	}

	story := KidsStoryProgress{
		UserID:       userID,
		StoryKey:     storyKey,
		Category:     category,
		Title:        title,
		Score:        score,
		PointsEarned: tierkit.LessonPoints(StoryReward, score),
		CompletedAt:  time.Now(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&story)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to save story progress: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrStoryAlreadyDone
	}

	s.afterActivity(ctx, userID, category)
	return &story, nil
}

// =============================================================================
// PRACTICE
// =============================================================================

func (s *KidsService) RecordVocabulary(ctx context.Context, userID uuid.UUID, category, word string, attempts, bestScore int) (*KidsVocabularyPractice, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, err
	}
	row := KidsVocabularyPractice{UserID: userID, Category: category, Word: word, Attempts: attempts, BestScore: bestScore}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to record vocabulary practice: %w", err)
	}
	s.mirror(ctx, vocabularySession(&row))
	s.afterActivity(ctx, userID, category)
	return &row, nil
}

func (s *KidsService) RecordPronunciation(ctx context.Context, userID uuid.UUID, category, phrase string, attempts, bestScore int) (*KidsPronunciationAttempt, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, err
	}
	row := KidsPronunciationAttempt{UserID: userID, Category: category, Phrase: phrase, Attempts: attempts, BestScore: bestScore}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to record pronunciation attempt: %w", err)
	}
	s.mirror(ctx, pronunciationSession(&row))
	s.afterActivity(ctx, userID, category)
	return &row, nil
}

func (s *KidsService) RecordGame(ctx context.Context, row *KidsGameSession) error {
	if err := s.checkCategory(row.Category); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("failed to record game session: %w", err)
	}
	s.mirror(ctx, gameSession(row))
	s.afterActivity(ctx, row.UserID, row.Category)
	return nil
}

func (s *KidsService) ListVocabulary(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]KidsVocabularyPractice, int64, error) {
	return listOwned[KidsVocabularyPractice](ctx, s.db, userID, category, limit, offset)
}

func (s *KidsService) ListGames(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]KidsGameSession, int64, error) {
	return listOwned[KidsGameSession](ctx, s.db, userID, category, limit, offset)
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
func (s *KidsService) mirror(ctx context.Context, session models.PracticeSession) {
	if s.syncer == nil {
		return
	}
	if _, err := s.syncer.Merge(ctx, session); err != nil {
		slog.Error("practice session mirror failed", "source", *session.Source, "source_id", *session.SourceID, "error", err)
	}
}

func (s *KidsService) afterActivity(ctx context.Context, userID uuid.UUID, category string) {
	if s.progress != nil {
		s.progress.SyncTier(ctx, userID, curriculum.TierKids, category)
	}
	if _, err := s.EvaluateAchievements(ctx, userID); err != nil {
		slog.Error("kids achievement evaluation failed", "user_id", userID.String(), "error", err)
	}
}

// =============================================================================
// ACHIEVEMENTS & CERTIFICATES
// =============================================================================

// Stats counts a user's kids activity across all kids categories.
func (s *KidsService) Stats(ctx context.Context, userID uuid.UUID) (tierkit.Stats, error) {
	db := s.db.WithContext(ctx)
	var st tierkit.Stats
	var n int64

	if err := db.Model(&KidsLessonProgress{}).Scopes(identity.ForUser(userID)).Where("completed = ?", true).Count(&n).Error; err != nil {
		return st, err
	}
	st.LessonsCompleted = int(n)

	if err := db.Model(&KidsStoryProgress{}).Scopes(identity.ForUser(userID)).Count(&n).Error; err != nil {
		return st, err
	}
	st.StoriesCompleted = int(n)

	if err := db.Model(&KidsVocabularyPractice{}).Scopes(identity.ForUser(userID)).Count(&n).Error; err != nil {
		return st, err
	}
	st.WordsPracticed = int(n)
	if err := db.Model(&KidsVocabularyPractice{}).Scopes(identity.ForUser(userID)).Where("attempts = 1").Count(&n).Error; err != nil {
		return st, err
	}
	st.WordsFirstTry = int(n)

	if err := db.Model(&KidsPronunciationAttempt{}).Scopes(identity.ForUser(userID)).Count(&n).Error; err != nil {
		return st, err
	}
	st.PhrasesPracticed = int(n)
	if err := db.Model(&KidsPronunciationAttempt{}).Scopes(identity.ForUser(userID)).Where("attempts = 1").Count(&n).Error; err != nil {
		return st, err
	}
	st.PhrasesFirstTry = int(n)

	if err := db.Model(&KidsGameSession{}).Scopes(identity.ForUser(userID)).Count(&n).Error; err != nil {
		return st, err
	}
	st.GamesPlayed = int(n)
	if err := db.Model(&KidsGameSession{}).Scopes(identity.ForUser(userID)).Where("score >= 100").Count(&n).Error; err != nil {
		return st, err
	}
	st.PerfectGames = int(n)

	for _, cat := range s.registry.ByTier(curriculum.TierKids) {
		totals, err := collect(db, userID, cat.ID)
		if err != nil {
			return st, err
		}
		st.TotalPoints += totals.Points
	}
	return st, nil
}

func (s *KidsService) EvaluateAchievements(ctx context.Context, userID uuid.UUID) ([]KidsAchievement, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute kids stats: %w", err)
	}
	return tierkit.SyncAchievements[KidsAchievement](ctx, s.db, s.notifications, userID, tierkit.Evaluate(Rules, stats))
}

func (s *KidsService) ListCertificates(ctx context.Context, userID uuid.UUID) ([]KidsCertificate, error) {
	var certs []KidsCertificate
	if err := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).Order("issued_at DESC").Find(&certs).Error; err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

// IssueCertificate awards the category certificate once every active lesson in it
// is completed.
func (s *KidsService) IssueCertificate(ctx context.Context, userID uuid.UUID, category string) (*KidsCertificate, bool, error) {
	if err := s.checkCategory(category); err != nil {
		return nil, false, err
	}

	db := s.db.WithContext(ctx)
	if err := tierkit.RequireAllCompleted(db, &KidsLesson{}, &KidsLessonProgress{}, userID, category); err != nil {
		return nil, false, err
	}
	totals, err := collect(db, userID, category)
	if err != nil {
		return nil, false, err
	}

	title := s.registry.Get(category).Name + " Certificate"
	cert, created, err := tierkit.IssueCertificate[KidsCertificate](ctx, s.db, s.notifications, userID, category, func() *KidsCertificate {
		return &KidsCertificate{
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

func (s *KidsService) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	out := &Summary{}
	for _, cat := range s.registry.ByTier(curriculum.TierKids) {
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
