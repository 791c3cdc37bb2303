package kids

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryReward is the base point value of a finished story.
const StoryReward = 30

func vocabularySession(r *KidsVocabularyPractice) models.PracticeSession {
	return practicesync.FromVocabulary(SourceVocabulary, practicesync.VocabularyRecord{
		ID: r.ID, UserID: r.UserID, Category: r.Category, Word: r.Word,
		Attempts: r.Attempts, BestScore: r.BestScore, PracticedAt: r.CreatedAt,
	})
}

func pronunciationSession(r *KidsPronunciationAttempt) models.PracticeSession {
	return practicesync.FromPronunciation(SourcePronunciation, practicesync.PronunciationRecord{
		ID: r.ID, UserID: r.UserID, Category: r.Category, Phrase: r.Phrase,
		Attempts: r.Attempts, BestScore: r.BestScore, PracticedAt: r.CreatedAt,
	})
}

func gameSession(r *KidsGameSession) models.PracticeSession {
	return practicesync.FromGame(SourceGame, practicesync.GameRecord{
		ID: r.ID, UserID: r.UserID, Category: r.Category, GameType: r.GameType,
		Score: r.Score, PointsEarned: r.PointsEarned, Mistakes: r.Mistakes,
		DurationSeconds: r.DurationSeconds, PlayedAt: r.CreatedAt,
	})
}

// practiceSources lists the kids tables mirrored into practice_sessions.
func practiceSources() []practicesync.Source {
	return []practicesync.Source{
		practicesync.NewTableSource(SourceVocabulary, vocabularySession),
		practicesync.NewTableSource(SourcePronunciation, pronunciationSession),
		practicesync.NewTableSource(SourceGame, gameSession),
	}
}

type progressSource struct{}

func (progressSource) Tier() string { return curriculum.TierKids }

func (progressSource) Collect(ctx context.Context, db *gorm.DB, userID uuid.UUID, category string) (services.ProgressTotals, error) {
	return collect(db.WithContext(ctx), userID, category)
}

// collect sums one kids category. Practice rows score the same way their mirrored
// practice sessions do.
func collect(db *gorm.DB, userID uuid.UUID, category string) (services.ProgressTotals, error) {
	var t services.ProgressTotals

	active, err := tierkit.ActiveLessons(db, &KidsLesson{}, category)
	if err != nil {
		return t, err
	}
	t.TotalLessons = len(active)

	var lessons []KidsLessonProgress
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
		if l.CompletedAt != nil {
			t.AddActivity(*l.CompletedAt)
		}
		t.AddActivity(l.UpdatedAt)
	}

	var stories []KidsStoryProgress
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ?", category).Find(&stories).Error; err != nil {
		return t, err
	}
	for _, s := range stories {
		t.StoriesCompleted++
		t.Points += s.PointsEarned
		t.AddScore(s.Score)
		t.AddActivity(s.CompletedAt)
	}

	var words []KidsVocabularyPractice
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ?", category).Find(&words).Error; err != nil {
		return t, err
	}
	for i := range words {
		s := vocabularySession(&words[i])
		t.Points += s.PointsEarned
		t.AddActivity(s.PracticedAt)
	}

	var phrases []KidsPronunciationAttempt
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ?", category).Find(&phrases).Error; err != nil {
		return t, err
	}
	for i := range phrases {
		s := pronunciationSession(&phrases[i])
		t.Points += s.PointsEarned
		t.AddActivity(s.PracticedAt)
	}

	var games []KidsGameSession
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ?", category).Find(&games).Error; err != nil {
		return t, err
	}
	for _, g := range games {
		t.Points += g.PointsEarned
		t.AddScore(g.Score)
		t.AddActivity(g.CreatedAt)
	}
	return t, nil
}
