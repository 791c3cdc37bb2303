package adults

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*AdultService, *services.ProgressService, *gorm.DB, uuid.UUID) {
	t.Helper()
	db := dbtest.New(t, New().Models()...)
	registry := curriculum.Default()
	progress := services.NewProgressService(db, registry, services.NewLeaderboard(db, nil), progressSource{})

	user := models.User{Name: "Adult", Email: "adult@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	return NewAdultService(db, registry, services.NewNotificationService(db), progress), progress, db, user.ID
}

func TestProgressCountsDirectSessionsOnly(t *testing.T) {
	svc, progress, db, userID := newService(t)
	ctx := context.Background()

	lesson := AdultLesson{Category: "business_english", Title: "Meetings", Level: "B2", Reward: 100, IsActive: true}
	require.NoError(t, db.Create(&lesson).Error)
	_, err := svc.CompleteLesson(ctx, userID, lesson.ID, 80, 20)
	require.NoError(t, err)

	_, err = services.NewPracticeService(db).Create(ctx, userID, dto.CreatePracticeRequest{
		SessionType: models.SessionConversation, Category: "business_english",
		DurationMinutes: 10, Score: 60, PointsEarned: 15, SentencesPracticed: 12,
	})
	require.NoError(t, err)

	source, sourceID := "kids_game", uuid.NewString()
	require.NoError(t, db.Create(&models.PracticeSession{
		UserID: userID, SessionType: models.SessionVocabulary, Category: "business_english",
		PointsEarned: 999, Source: &source, SourceID: &sourceID, PracticedAt: time.Now(),
	}).Error)

	row, err := progress.SyncCategoryProgress(ctx, userID, "business_english")
	require.NoError(t, err)
	assert.Equal(t, 95, row.TotalPoints)
	assert.Equal(t, 1, row.LessonsCompleted)
	assert.Equal(t, 100, row.ProgressPercentage)
	assert.True(t, decimal.NewFromInt(70).Equal(row.AverageScore), row.AverageScore.String())

	st, err := svc.Stats(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 12, st.PhrasesPracticed)
	assert.Equal(t, 0, st.WordsPracticed)
}

func TestCompleteLessonAccumulatesTime(t *testing.T) {
	svc, _, db, userID := newService(t)
	ctx := context.Background()

	lesson := AdultLesson{Category: "everyday_english", Title: "Shopping", Level: "A2", Reward: 100, IsActive: true}
	require.NoError(t, db.Create(&lesson).Error)

	_, err := svc.CompleteLesson(ctx, userID, lesson.ID, 90, 12)
	require.NoError(t, err)
	p, err := svc.CompleteLesson(ctx, userID, lesson.ID, 50, 8)
	require.NoError(t, err)
	assert.Equal(t, 20, p.TimeSpent)
	assert.Equal(t, 90, p.Score)
	assert.Equal(t, 90, p.PointsEarned)
	assert.Equal(t, 2, p.Attempts)

	achievements, err := svc.EvaluateAchievements(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, achievements)
	assert.Equal(t, "First Lesson", achievements[0].Name)
	assert.True(t, achievements[0].Unlocked)
}

func TestIssueCertificateUsesHighestLevel(t *testing.T) {
	svc, _, db, userID := newService(t)
	ctx := context.Background()

	a := AdultLesson{Category: "ielts_pte", Title: "Essay", Level: "B2", Reward: 100, IsActive: true}
	b := AdultLesson{Category: "ielts_pte", Title: "Listening", Level: "C1", Reward: 100, IsActive: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	_, err := svc.CompleteLesson(ctx, userID, a.ID, 70, 30)
	require.NoError(t, err)
	_, _, err = svc.IssueCertificate(ctx, userID, "ielts_pte")
	assert.ErrorIs(t, err, tierkit.ErrNotEligible)

	_, err = svc.CompleteLesson(ctx, userID, b.ID, 90, 30)
	require.NoError(t, err)

	cert, created, err := svc.IssueCertificate(ctx, userID, "ielts_pte")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "C1", cert.Level)
	assert.Equal(t, 80, cert.AverageScore)
	assert.Equal(t, "IELTS & PTE Preparation C1 Certificate", cert.Title)

	_, created, err = svc.IssueCertificate(ctx, userID, "ielts_pte")
	require.NoError(t, err)
	assert.False(t, created)

	var n int64
	require.NoError(t, db.Model(&models.UserNotification{}).
		Where("user_id = ? AND event_key = ?", userID, services.CertificateEventKey(cert.ID)).
		Count(&n).Error)
	assert.Equal(t, int64(1), n)

	_, _, err = svc.IssueCertificate(ctx, userID, "young_kids")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestCreateLessonValidatesLevel(t *testing.T) {
	svc, _, _, _ := newService(t)
	ctx := context.Background()

	err := svc.CreateLesson(ctx, &AdultLesson{Category: "everyday_english", Title: "Bad", Level: "D9", IsActive: true})
	assert.ErrorIs(t, err, ErrInvalidLevel)

	lesson := &AdultLesson{Category: "everyday_english", Title: "Greetings", IsActive: true}
	require.NoError(t, svc.CreateLesson(ctx, lesson))
	assert.Equal(t, "B1", lesson.Level)

	_, err = svc.UpdateLesson(ctx, lesson.ID, map[string]interface{}{"level": "Z1"})
	assert.ErrorIs(t, err, ErrInvalidLevel)

	lessons, err := svc.ListLessons(ctx, "everyday_english", "B1")
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}
