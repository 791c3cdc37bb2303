package kids

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/tierkit"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	svc    *KidsService
	syncer *practicesync.Syncer
	deps   *apps.Deps
	user   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t, New().Models()...)
	registry := curriculum.Default()
	notifications := services.NewNotificationService(db)
	progress := services.NewProgressService(db, registry, services.NewLeaderboard(db, nil), progressSource{})
	syncer := practicesync.NewSyncer(db, practiceSources()...)

	user := models.User{Name: "Kid", Email: "kid@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	return &fixture{
		db:     db,
		svc:    NewKidsService(db, registry, notifications, progress, syncer),
		syncer: syncer,
		deps: &apps.Deps{
			DB: db, Registry: registry, Notifications: notifications, Progress: progress, Syncer: syncer,
		},
		user: user.ID,
	}
}

func (f *fixture) lesson(t *testing.T, category, title string) KidsLesson {
	t.Helper()
	l := KidsLesson{Category: category, Title: title, Reward: 50, IsActive: true}
	require.NoError(t, f.db.Create(&l).Error)
	return l
}

func (f *fixture) sessions(t *testing.T, source string) []models.PracticeSession {
	t.Helper()
	var out []models.PracticeSession
	require.NoError(t, f.db.Where("source = ?", source).Find(&out).Error)
	return out
}

func TestRecordVocabulary_MirrorsIntoPracticeSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.RecordVocabulary(ctx, f.user, "young_kids", "apple", 1, 95)
	require.NoError(t, err)
	_, err = f.svc.RecordVocabulary(ctx, f.user, "young_kids", "banana", 3, 70)
	require.NoError(t, err)

	sessions := f.sessions(t, SourceVocabulary)
	require.Len(t, sessions, 2)

	byID := map[string]models.PracticeSession{}
	for _, s := range sessions {
		byID[*s.SourceID] = s
	}
	s := byID[first.ID.String()]
	assert.Equal(t, models.SessionVocabulary, s.SessionType)
	assert.Equal(t, 25, s.PointsEarned)
	assert.Equal(t, 2, s.DurationMinutes)
	assert.Equal(t, 95, s.Score)
	assert.Equal(t, 0, s.MistakesCount)

	// The backfill finds nothing new after the endpoint already mirrored.
	report, err := f.syncer.Run(ctx, practicesync.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 2, report.Skipped)

	row, err := f.deps.Progress.SyncCategoryProgress(ctx, f.user, "young_kids")
	require.NoError(t, err)
	assert.Equal(t, 25, row.TotalPoints)
}

func TestBackfill_MapsGameDurations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Written straight to the table, as older clients did, so only the backfill sees them.
	quick := KidsGameSession{UserID: f.user, Category: "young_kids", GameType: "word_match", Score: 80, PointsEarned: 15}
	long := KidsGameSession{UserID: f.user, Category: "young_kids", GameType: "role_play", Score: 60, PointsEarned: 10, DurationSeconds: 185}
	require.NoError(t, f.db.Create(&quick).Error)
	require.NoError(t, f.db.Create(&long).Error)

	dry, err := f.syncer.Run(ctx, practicesync.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, dry.Created)
	assert.Empty(t, f.sessions(t, SourceGame))

	report, err := f.syncer.Run(ctx, practicesync.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Created)

	byID := map[string]models.PracticeSession{}
	for _, s := range f.sessions(t, SourceGame) {
		byID[*s.SourceID] = s
	}
	assert.Equal(t, 5, byID[quick.ID.String()].DurationMinutes)
	assert.Equal(t, models.SessionVocabulary, byID[quick.ID.String()].SessionType)
	assert.Equal(t, 3, byID[long.ID.String()].DurationMinutes)
	assert.Equal(t, models.SessionConversation, byID[long.ID.String()].SessionType)
}

func TestCompleteLesson_KeepsBestScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lesson := f.lesson(t, "young_kids", "Colors")
	f.lesson(t, "young_kids", "Animals")

	p, err := f.svc.CompleteLesson(ctx, f.user, lesson.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stars)
	assert.Equal(t, 40, p.PointsEarned)

	p, err = f.svc.CompleteLesson(ctx, f.user, lesson.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, 80, p.Score)
	assert.Equal(t, 2, p.Attempts)

	row, err := f.deps.Progress.SyncCategoryProgress(ctx, f.user, "young_kids")
	require.NoError(t, err)
	assert.Equal(t, 1, row.LessonsCompleted)
	assert.Equal(t, 2, row.TotalLessons)
	assert.Equal(t, 50, row.ProgressPercentage)
	assert.Equal(t, 40, row.TotalPoints)
	assert.Equal(t, 1, row.CurrentStreak)

	_, err = f.svc.CompleteLesson(ctx, f.user, uuid.New(), 80)
	assert.ErrorIs(t, err, ErrLessonNotFound)
}

func TestAchievementUnlockNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.lesson(t, "young_kids", "Colors")
	b := f.lesson(t, "young_kids", "Animals")

	_, err := f.svc.CompleteLesson(ctx, f.user, a.ID, 90)
	require.NoError(t, err)
	_, err = f.svc.CompleteLesson(ctx, f.user, b.ID, 90)
	require.NoError(t, err)

	achievements, err := f.svc.EvaluateAchievements(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, achievements, len(Rules))
	assert.Equal(t, "First Steps", achievements[0].Name)
	assert.True(t, achievements[0].Unlocked)

	var n int64
	require.NoError(t, f.db.Model(&models.UserNotification{}).
		Where("user_id = ? AND event_key = ?", f.user, services.AchievementEventKey("First Steps")).
		Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestIssueCertificate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.lesson(t, "older_kids", "Verbs")
	b := f.lesson(t, "older_kids", "Nouns")

	_, err := f.svc.CompleteLesson(ctx, f.user, a.ID, 100)
	require.NoError(t, err)

	_, _, err = f.svc.IssueCertificate(ctx, f.user, "older_kids")
	assert.ErrorIs(t, err, tierkit.ErrNotEligible)

	_, err = f.svc.CompleteLesson(ctx, f.user, b.ID, 70)
	require.NoError(t, err)

	cert, created, err := f.svc.IssueCertificate(ctx, f.user, "older_kids")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Older Kids Certificate", cert.Title)
	assert.Equal(t, 2, cert.LessonsCompleted)

	again, created, err := f.svc.IssueCertificate(ctx, f.user, "older_kids")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, cert.ID, again.ID)

	var n int64
	require.NoError(t, f.db.Model(&models.UserNotification{}).
		Where("user_id = ? AND event_key = ?", f.user, services.CertificateEventKey(cert.ID)).
		Count(&n).Error)
	assert.Equal(t, int64(1), n)

	_, _, err = f.svc.IssueCertificate(ctx, f.user, "teen_pro")
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestCertificateIgnoresDeactivatedLessons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.lesson(t, "older_kids", "Colors")
	b := f.lesson(t, "older_kids", "Shapes")
	c := f.lesson(t, "older_kids", "Numbers")
	d := f.lesson(t, "older_kids", "Animals")

	for _, l := range []KidsLesson{a, b, d} {
		_, err := f.svc.CompleteLesson(ctx, f.user, l.ID, 100)
		require.NoError(t, err)
	}
	_, err := f.svc.UpdateLesson(ctx, d.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)

	row, err := f.deps.Progress.SyncCategoryProgress(ctx, f.user, "older_kids")
	require.NoError(t, err)
	assert.Equal(t, 3, row.TotalLessons)
	assert.Equal(t, 2, row.LessonsCompleted)
	assert.Equal(t, 66, row.ProgressPercentage)
	assert.Equal(t, 150, row.TotalPoints)

	_, _, err = f.svc.IssueCertificate(ctx, f.user, "older_kids")
	assert.ErrorIs(t, err, tierkit.ErrNotEligible)

	_, err = f.svc.CompleteLesson(ctx, f.user, c.ID, 90)
	require.NoError(t, err)

	cert, created, err := f.svc.IssueCertificate(ctx, f.user, "older_kids")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, cert.LessonsCompleted)
}

func TestCompleteStory_OncePerKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	story, err := f.svc.CompleteStory(ctx, f.user, "young_kids", "three-bears", "Three Bears", 100)
	require.NoError(t, err)
	assert.Equal(t, StoryReward, story.PointsEarned)

	_, err = f.svc.CompleteStory(ctx, f.user, "young_kids", "three-bears", "Three Bears", 50)
	assert.ErrorIs(t, err, ErrStoryAlreadyDone)

	row, err := f.deps.Progress.SyncCategoryProgress(ctx, f.user, "young_kids")
	require.NoError(t, err)
	assert.Equal(t, 1, row.StoriesCompleted)
}

func TestRoutes(t *testing.T) {
	f := newFixture(t)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": f.user.String()}))
		return c.Next()
	})
	New().RegisterRoutes(app.Group("/api/kids"), f.deps)

	body := `{"category":"young_kids","game_type":"say_it","score":90,"points_earned":20,"duration_seconds":120}`
	req := httptest.NewRequest("POST", "/api/kids/games", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/kids/games", strings.NewReader(`{"category":"teen_pro","game_type":"say_it"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/kids/games?category=teen_pro", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/kids/games", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, int64(1), list.Total)

	sessions := f.sessions(t, SourceGame)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionPronunciation, sessions[0].SessionType)
	assert.Equal(t, 2, sessions[0].DurationMinutes)
}
