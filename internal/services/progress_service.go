package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/curriculum"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrNoProgressSource = errors.New("no progress source for tier")
)

// ProgressTotals is what a tier contributes to one (user, category) rollup.
type ProgressTotals struct {
	LessonsCompleted int
	TotalLessons     int
	StoriesCompleted int
	Points           int
	ScoreSum         int
	ScoreCount       int
	Activity         []time.Time
}

func (t *ProgressTotals) AddScore(score int) {
	t.ScoreSum += score
	t.ScoreCount++
}

func (t *ProgressTotals) AddActivity(at time.Time) {
	if !at.IsZero() {
		t.Activity = append(t.Activity, at)
	}
}

// ProgressSource reads a tier's own tables. Each tier plugin provides one.
type ProgressSource interface {
	Tier() string
	Collect(ctx context.Context, db *gorm.DB, userID uuid.UUID, category string) (ProgressTotals, error)
}

type ProgressService struct {
	db          *gorm.DB
	registry    *curriculum.Registry
	leaderboard *Leaderboard
	sources     map[string]ProgressSource
	now         func() time.Time
}

func NewProgressService(db *gorm.DB, registry *curriculum.Registry, leaderboard *Leaderboard, sources ...ProgressSource) *ProgressService {
	s := &ProgressService{
		db:          db,
		registry:    registry,
		leaderboard: leaderboard,
		sources:     make(map[string]ProgressSource, len(sources)),
		now:         time.Now,
	}
	for _, src := range sources {
		s.sources[src.Tier()] = src
	}
	return s
}

func (s *ProgressService) Registry() *curriculum.Registry {
	return s.registry
}

// SyncCategoryProgress recomputes the (user, category) rollup from the tier tables and
// overwrites the stored counters. Calling it again without new activity yields the
// same row. A category without any activity gets a zero row.
func (s *ProgressService) SyncCategoryProgress(ctx context.Context, userID uuid.UUID, category string) (*models.CategoryProgress, error) {
	cat := s.registry.Get(category)
	if cat == nil {
		return nil, ErrUnknownCategory
	}
	src, ok := s.sources[cat.Tier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProgressSource, cat.Tier)
	}

	db := s.db.WithContext(ctx)

	totals, err := src.Collect(ctx, db, userID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to collect %s progress: %w", category, err)
	}

	row, err := s.getOrCreate(db, userID, category)
	if err != nil {
		return nil, err
	}

	current, longest := ComputeStreaks(totals.Activity, s.now())
	updates := map[string]interface{}{
		"total_points":        totals.Points,
		"current_streak":      current,
		"longest_streak":      longest,
		"lessons_completed":   totals.LessonsCompleted,
		"total_lessons":       totals.TotalLessons,
		"stories_completed":   totals.StoriesCompleted,
		"average_score":       AverageScore(totals.ScoreSum, totals.ScoreCount),
		"level":               cat.LevelFor(totals.Points),
		"progress_percentage": ProgressPercentage(totals.LessonsCompleted, totals.TotalLessons),
		"last_activity_at":    latest(totals.Activity),
	}
	if err := db.Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category progress: %w", err)
	}
	if err := db.First(row, "id = ?", row.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload category progress: %w", err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Record(ctx, category, userID, row.TotalPoints); err != nil {
			slog.Warn("leaderboard update failed", "category", category, "user_id", userID.String(), "error", err)
		}
	}
	return row, nil
}

// SyncAllForUser recomputes every category of every tier with a registered source.
func (s *ProgressService) SyncAllForUser(ctx context.Context, userID uuid.UUID) ([]models.CategoryProgress, error) {
	var rows []models.CategoryProgress
	for _, cat := range s.registry.All() {
		if _, ok := s.sources[cat.Tier]; !ok {
			continue
		}
		row, err := s.SyncCategoryProgress(ctx, userID, cat.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}

// SyncTier recomputes the categories of one tier, e.g. after a tier endpoint wrote
// new activity. Errors are logged; the write that triggered it already succeeded.
func (s *ProgressService) SyncTier(ctx context.Context, userID uuid.UUID, tier, category string) {
	if category != "" {
		if _, err := s.SyncCategoryProgress(ctx, userID, category); err != nil {
			slog.Error("category progress sync failed", "user_id", userID.String(), "category", category, "error", err)
		}
		return
	}
	for _, cat := range s.registry.ByTier(tier) {
		if _, err := s.SyncCategoryProgress(ctx, userID, cat.ID); err != nil {
			slog.Error("category progress sync failed", "user_id", userID.String(), "category", cat.ID, "error", err)
		}
	}
}

func (s *ProgressService) List(ctx context.Context, userID uuid.UUID) ([]models.CategoryProgress, error) {
	var rows []models.CategoryProgress
	err := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).Order("category ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list category progress: %w", err)
	}
	return rows, nil
}

func (s *ProgressService) getOrCreate(db *gorm.DB, userID uuid.UUID, category string) (*models.CategoryProgress, error) {
	row := models.CategoryProgress{UserID: userID, Category: category, Level: 1, AverageScore: decimal.Zero}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create category progress: %w", err)
	}

	var stored models.CategoryProgress
	if err := db.Scopes(identity.ForUser(userID)).Where("category = ?", category).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load category progress: %w", err)
	}
	return &stored, nil
}

// AverageScore rounds sum/count to two places; zero when there is nothing to average.
func AverageScore(sum, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count))).Round(2)
}

// ProgressPercentage is completed/total as a whole percentage capped at 100.
func ProgressPercentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	pct := completed * 100 / total
	if pct > 100 {
		return 100
	}
	return pct
}

// ComputeStreaks counts consecutive UTC days with activity. The current streak is
// the run ending today, or yesterday if nothing happened yet today.
func ComputeStreaks(activity []time.Time, now time.Time) (current, longest int) {
	if len(activity) == 0 {
		return 0, 0
	}

	seen := make(map[time.Time]struct{}, len(activity))
	days := make([]time.Time, 0, len(activity))
	for _, at := range activity {
		d := at.UTC().Truncate(24 * time.Hour)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := now.UTC().Truncate(24 * time.Hour)
	last := days[len(days)-1]
	if !last.Equal(today) && !last.Equal(today.Add(-24*time.Hour)) {
		return 0, longest
	}
	return run, longest
}

func latest(times []time.Time) *time.Time {
	var out *time.Time
	for i := range times {
		if out == nil || times[i].After(*out) {
			t := times[i]
			out = &t
		}
	}
	return out
}
