package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubSource struct {
	tier   string
	totals map[string]ProgressTotals
	calls  int
}

func (s *stubSource) Tier() string { return s.tier }

func (s *stubSource) Collect(_ context.Context, _ *gorm.DB, _ uuid.UUID, category string) (ProgressTotals, error) {
	s.calls++
	return s.totals[category], nil
}

var fixedNow = time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)

func newProgressService(t *testing.T, src *stubSource) (*ProgressService, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t)
	svc := NewProgressService(db, curriculum.Default(), NewLeaderboard(db, nil), src)
	svc.now = func() time.Time { return fixedNow }
	return svc, db
}

func TestSyncCategoryProgress_ComputesRollup(t *testing.T) {
	totals := ProgressTotals{LessonsCompleted: 3, TotalLessons: 8, StoriesCompleted: 1, Points: 320}
	totals.AddScore(90)
	totals.AddScore(85)
	totals.AddScore(70)
	totals.AddActivity(fixedNow.Add(-2 * time.Hour))
	totals.AddActivity(fixedNow.Add(-26 * time.Hour))
	totals.AddActivity(fixedNow.Add(-50 * time.Hour))

	src := &stubSource{tier: curriculum.TierKids, totals: map[string]ProgressTotals{"young_kids": totals}}
	svc, _ := newProgressService(t, src)

	row, err := svc.SyncCategoryProgress(context.Background(), uuid.New(), "young_kids")
	require.NoError(t, err)

	assert.Equal(t, 320, row.TotalPoints)
	assert.Equal(t, 3, row.LessonsCompleted)
	assert.Equal(t, 8, row.TotalLessons)
	assert.Equal(t, 1, row.StoriesCompleted)
	assert.True(t, decimal.RequireFromString("81.67").Equal(row.AverageScore), "got %s", row.AverageScore)
	assert.Equal(t, 3, row.Level)
	assert.Equal(t, 37, row.ProgressPercentage)
	assert.Equal(t, 3, row.CurrentStreak)
	assert.Equal(t, 3, row.LongestStreak)
	require.NotNil(t, row.LastActivityAt)
}

func TestSyncCategoryProgress_Idempotent(t *testing.T) {
	totals := ProgressTotals{LessonsCompleted: 2, TotalLessons: 4, Points: 50}
	totals.AddScore(80)
	src := &stubSource{tier: curriculum.TierTeens, totals: map[string]ProgressTotals{"teen_pro": totals}}
	svc, db := newProgressService(t, src)
	ctx := context.Background()
	user := uuid.New()

	first, err := svc.SyncCategoryProgress(ctx, user, "teen_pro")
	require.NoError(t, err)
	second, err := svc.SyncCategoryProgress(ctx, user, "teen_pro")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalPoints, second.TotalPoints)
	assert.Equal(t, first.ProgressPercentage, second.ProgressPercentage)
	assert.True(t, first.AverageScore.Equal(second.AverageScore))

	var n int64
	require.NoError(t, db.Model(&models.CategoryProgress{}).Where("user_id = ?", user).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSyncCategoryProgress_EmptyCategoryGivesZeroRow(t *testing.T) {
	src := &stubSource{tier: curriculum.TierKids, totals: map[string]ProgressTotals{}}
	svc, _ := newProgressService(t, src)

	row, err := svc.SyncCategoryProgress(context.Background(), uuid.New(), "older_kids")
	require.NoError(t, err)
	assert.Zero(t, row.TotalPoints)
	assert.Zero(t, row.ProgressPercentage)
	assert.Zero(t, row.CurrentStreak)
	assert.True(t, row.AverageScore.IsZero())
	assert.Equal(t, 1, row.Level)
	assert.Nil(t, row.LastActivityAt)
}

func TestSyncCategoryProgress_Errors(t *testing.T) {
	src := &stubSource{tier: curriculum.TierKids}
	svc, _ := newProgressService(t, src)
	ctx := context.Background()

	_, err := svc.SyncCategoryProgress(ctx, uuid.New(), "klingon")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = svc.SyncCategoryProgress(ctx, uuid.New(), "business_english")
	assert.ErrorIs(t, err, ErrNoProgressSource)
}

func TestSyncAllForUser_OnlyTiersWithSources(t *testing.T) {
	src := &stubSource{tier: curriculum.TierKids, totals: map[string]ProgressTotals{"young_kids": {Points: 10}}}
	svc, _ := newProgressService(t, src)
	ctx := context.Background()
	user := uuid.New()

	rows, err := svc.SyncAllForUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, src.calls)

	listed, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "older_kids", listed[0].Category)
	assert.Equal(t, "young_kids", listed[1].Category)
}

func TestProgressPercentage(t *testing.T) {
	assert.Equal(t, 0, ProgressPercentage(3, 0))
	assert.Equal(t, 0, ProgressPercentage(0, 10))
	assert.Equal(t, 50, ProgressPercentage(5, 10))
	assert.Equal(t, 100, ProgressPercentage(12, 10))
}

func TestAverageScore(t *testing.T) {
	assert.True(t, AverageScore(0, 0).IsZero())
	assert.Equal(t, "66.67", AverageScore(200, 3).StringFixed(2))
	assert.Equal(t, "90.00", AverageScore(90, 1).StringFixed(2))
}

func TestComputeStreaks(t *testing.T) {
	day := func(offset int) time.Time { return fixedNow.AddDate(0, 0, offset) }

	current, longest := ComputeStreaks(nil, fixedNow)
	assert.Zero(t, current)
	assert.Zero(t, longest)

	// Same-day duplicates count once; streak runs through yesterday.
	current, longest = ComputeStreaks([]time.Time{day(-1), day(-1), day(-2), day(-3)}, fixedNow)
	assert.Equal(t, 3, current)
	assert.Equal(t, 3, longest)

	// Gap of two days breaks the current streak but keeps the longest.
	current, longest = ComputeStreaks([]time.Time{day(-10), day(-9), day(-8), day(-7), day(-3)}, fixedNow)
	assert.Zero(t, current)
	assert.Equal(t, 4, longest)

	current, longest = ComputeStreaks([]time.Time{day(0), day(-2), day(-3)}, fixedNow)
	assert.Equal(t, 1, current)
	assert.Equal(t, 2, longest)
}

func TestLeaderboard_FallsBackToDatabase(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	lb := NewLeaderboard(db, nil)

	alice := models.User{Name: "Alice", Email: "alice@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	bob := models.User{Name: "Bob", Email: "bob@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)
	require.NoError(t, db.Create(&models.CategoryProgress{UserID: alice.ID, Category: "young_kids", TotalPoints: 150, Level: 2}).Error)
	require.NoError(t, db.Create(&models.CategoryProgress{UserID: bob.ID, Category: "young_kids", TotalPoints: 400, Level: 3}).Error)
	require.NoError(t, db.Create(&models.CategoryProgress{UserID: bob.ID, Category: "teen_pro", TotalPoints: 5, Level: 1}).Error)

	require.NoError(t, lb.Record(ctx, "young_kids", alice.ID, 150))

	entries, err := lb.Top(ctx, "young_kids", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bob", entries[0].Name)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 400, entries[0].TotalPoints)
	assert.Equal(t, "Alice", entries[1].Name)
	assert.Equal(t, 2, entries[1].Level)
}

func TestLeaderboard_ZeroPointUsersAreNotRanked(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	lb := NewLeaderboard(db, nil)

	carol := models.User{Name: "Carol", Email: "carol@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	dave := models.User{Name: "Dave", Email: "dave@example.com", Password: "x", Role: models.RoleUser, IsActive: true}
	require.NoError(t, db.Create(&carol).Error)
	require.NoError(t, db.Create(&dave).Error)
	require.NoError(t, db.Create(&models.CategoryProgress{UserID: carol.ID, Category: "teen_pro", TotalPoints: 30, Level: 1}).Error)
	require.NoError(t, db.Create(&models.CategoryProgress{UserID: dave.ID, Category: "teen_pro", TotalPoints: 0, Level: 1}).Error)

	fromDB, err := lb.Top(ctx, "teen_pro", 10)
	require.NoError(t, err)
	require.Len(t, fromDB, 1)
	assert.Equal(t, "Carol", fromDB[0].Name)

	// The cached ranking applies the same rule.
	names := map[uuid.UUID]string{carol.ID: "Carol", dave.ID: "Dave"}
	fromCache := rankMembers([]redis.Z{
		{Score: 30, Member: carol.ID.String()},
		{Score: 0, Member: dave.ID.String()},
		{Score: 12, Member: uuid.NewString()},
	}, names, map[uuid.UUID]int{carol.ID: 1})
	require.Len(t, fromCache, 1)
	assert.Equal(t, fromDB[0].UserID, fromCache[0].UserID)
	assert.Equal(t, 1, fromCache[0].Rank)
	assert.Equal(t, 30, fromCache[0].TotalPoints)

	seeded := seedMembers(fromDB)
	require.Len(t, seeded, 1)
	assert.Equal(t, carol.ID.String(), seeded[0].Member)
	assert.Equal(t, float64(30), seeded[0].Score)
}
