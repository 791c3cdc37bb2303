package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	leaderboardKeyPrefix = "leaderboard:points:"
	leaderboardTTL       = 7 * 24 * time.Hour
	MaxLeaderboardSize   = 100
)

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	TotalPoints int       `json:"total_points"`
	Level       int       `json:"level"`
}

// Leaderboard ranks users per category by total points. Redis holds a sorted set per
// category; without Redis, or when it fails, the ranking is read from category_progress.
type Leaderboard struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewLeaderboard(db *gorm.DB, client *redis.Client) *Leaderboard {
	return &Leaderboard{db: db, redis: client}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func leaderboardKey(category string) string {
	return leaderboardKeyPrefix + category
}

// Record stores the user's current total. No-op without Redis. A missing set is seeded
// from category_progress first so a cold cache never ranks a lone user.
func (l *Leaderboard) Record(ctx context.Context, category string, userID uuid.UUID, points int) error {
	if l.redis == nil {
		return nil
	}
	key := leaderboardKey(category)
	if err := l.seedIfMissing(ctx, category); err != nil {
		return err
	}
	pipe := l.redis.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(points), Member: userID.String()})
	pipe.Expire(ctx, key, leaderboardTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (l *Leaderboard) Top(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	if l.redis != nil {
		entries, err := l.topFromRedis(ctx, category, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			slog.Warn("leaderboard redis read failed, using database", "category", category, "error", err)
		}
	}
	return l.topFromDB(ctx, category, limit)
}

// seedIfMissing loads the database ranking into an absent set. GT keeps any newer score
// written by a concurrent Record.
func (l *Leaderboard) seedIfMissing(ctx context.Context, category string) error {
	key := leaderboardKey(category)
	n, err := l.redis.Exists(ctx, key).Result()
	if err != nil || n > 0 {
		return err
	}
	entries, err := l.topFromDB(ctx, category, MaxLeaderboardSize)
	if err != nil || len(entries) == 0 {
		return err
	}
	pipe := l.redis.Pipeline()
	pipe.ZAddArgs(ctx, key, redis.ZAddArgs{GT: true, Members: seedMembers(entries)})
	pipe.Expire(ctx, key, leaderboardTTL)
	_, err = pipe.Exec(ctx)
	return err
}

func seedMembers(entries []LeaderboardEntry) []redis.Z {
	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.TotalPoints), Member: e.UserID.String()}
	}
	return members
}

func (l *Leaderboard) topFromRedis(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	if err := l.seedIfMissing(ctx, category); err != nil {
		return nil, err
	}
	// Same rule as the database ranking: users without points are not listed.
	members, err := l.redis.ZRevRangeByScoreWithScores(ctx, leaderboardKey(category), &redis.ZRangeBy{
		Min:   "(0",
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(fmt.Sprint(m.Member))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	var users []models.User
	if err := l.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var progress []models.CategoryProgress
	if err := l.db.WithContext(ctx).Select("user_id", "level").
		Where("category = ? AND user_id IN ?", category, ids).Find(&progress).Error; err != nil {
		return nil, err
	}
	levels := make(map[uuid.UUID]int, len(progress))
	for _, p := range progress {
		levels[p.UserID] = p.Level
	}

	return rankMembers(members, names, levels), nil
}

// rankMembers turns sorted-set members into contiguous ranks, dropping members without a
// live user or without points.
func rankMembers(members []redis.Z, names map[uuid.UUID]string, levels map[uuid.UUID]int) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(members))
	for _, m := range members {
		if m.Score <= 0 {
			continue
		}
		id, err := uuid.Parse(fmt.Sprint(m.Member))
		if err != nil {
			continue
		}
		name, ok := names[id]
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:        len(entries) + 1,
			UserID:      id,
			Name:        name,
			TotalPoints: int(m.Score),
			Level:       levels[id],
		})
	}
	return entries
}

func (l *Leaderboard) topFromDB(ctx context.Context, category string, limit int) ([]LeaderboardEntry, error) {
	var rows []struct {
		UserID      uuid.UUID
		Name        string
		TotalPoints int
		Level       int
	}
	err := l.db.WithContext(ctx).
		Table("category_progress AS cp").
		Select("cp.user_id, u.name, cp.total_points, cp.level").
		Joins("JOIN users u ON u.id = cp.user_id AND u.deleted_at IS NULL").
		Where("cp.category = ? AND cp.total_points > 0", category).
		Order("cp.total_points DESC, cp.updated_at ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		entries[i] = LeaderboardEntry{
			Rank:        i + 1,
			UserID:      r.UserID,
			Name:        r.Name,
			TotalPoints: r.TotalPoints,
			Level:       r.Level,
		}
	}
	return entries, nil
}
