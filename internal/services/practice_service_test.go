package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPracticeCreateAndStats(t *testing.T) {
	db := dbtest.New(t)
	svc := NewPracticeService(db)
	ctx := context.Background()
	user := uuid.New()

	for _, req := range []dto.CreatePracticeRequest{
		{SessionType: models.SessionVocabulary, DurationMinutes: 10, Score: 80, PointsEarned: 20},
		{SessionType: models.SessionVocabulary, DurationMinutes: 5, Score: 90, PointsEarned: 10},
		{SessionType: models.SessionReading, DurationMinutes: 15, Score: 70, PointsEarned: 30},
	} {
		s, err := svc.Create(ctx, user, req)
		require.NoError(t, err)
		assert.Nil(t, s.Source)
		assert.False(t, s.PracticedAt.IsZero())
	}
	_, err := svc.Create(ctx, uuid.New(), dto.CreatePracticeRequest{SessionType: models.SessionGrammar, DurationMinutes: 99})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSessions)
	assert.Equal(t, int64(30), stats.TotalMinutes)
	assert.Equal(t, int64(60), stats.TotalPoints)
	require.Len(t, stats.ByType, 2)
	assert.Equal(t, models.SessionReading, stats.ByType[0].SessionType)
	assert.Equal(t, models.SessionVocabulary, stats.ByType[1].SessionType)
	assert.Equal(t, "85.00", stats.ByType[1].AverageScore.StringFixed(2))

	_, err = svc.Create(ctx, user, dto.CreatePracticeRequest{SessionType: "karaoke"})
	assert.ErrorIs(t, err, ErrInvalidSessionType)
}

func TestPracticeListFilters(t *testing.T) {
	db := dbtest.New(t)
	svc := NewPracticeService(db)
	ctx := context.Background()
	user := uuid.New()
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		at := base.AddDate(0, 0, i)
		sessionType := models.SessionVocabulary
		if i%2 == 1 {
			sessionType = models.SessionPronunciation
		}
		_, err := svc.Create(ctx, user, dto.CreatePracticeRequest{SessionType: sessionType, Category: "young_kids", PracticedAt: &at})
		require.NoError(t, err)
	}

	all, total, err := svc.List(ctx, dto.PracticeFilter{UserID: &user}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, all, 2)
	assert.True(t, all[0].PracticedAt.After(all[1].PracticedAt), "newest first")

	_, total, err = svc.List(ctx, dto.PracticeFilter{UserID: &user, SessionType: models.SessionPronunciation}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var seen int
	require.NoError(t, svc.Each(ctx, dto.PracticeFilter{Category: "young_kids"}, func(*models.PracticeSession) error {
		seen++
		return nil
	}))
	assert.Equal(t, 5, seen)
}
