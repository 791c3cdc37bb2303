package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrInvalidSessionType = errors.New("invalid session type")

type PracticeService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPracticeService(db *gorm.DB) *PracticeService {
	return &PracticeService{db: db, now: time.Now}
}

// Create records a session reported directly by a client. Direct sessions have no
// source key and are never deduplicated.
func (s *PracticeService) Create(ctx context.Context, userID uuid.UUID, req dto.CreatePracticeRequest) (*models.PracticeSession, error) {
	if !models.IsSessionType(req.SessionType) {
		return nil, ErrInvalidSessionType
	}

	practicedAt := s.now()
	if req.PracticedAt != nil && !req.PracticedAt.IsZero() {
		practicedAt = *req.PracticedAt
	}

	session := models.PracticeSession{
		UserID:             userID,
		SessionType:        req.SessionType,
		Category:           req.Category,
		DurationMinutes:    req.DurationMinutes,
		Score:              req.Score,
		PointsEarned:       req.PointsEarned,
		WordsPracticed:     req.WordsPracticed,
		SentencesPracticed: req.SentencesPracticed,
		MistakesCount:      req.MistakesCount,
		Details:            datatypes.JSONMap(req.Details),
		PracticedAt:        practicedAt,
	}
	if session.Details == nil {
		session.Details = datatypes.JSONMap{}
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create practice session: %w", err)
	}
	return &session, nil
}

func filtered(f dto.PracticeFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.UserID != nil {
			db = db.Scopes(identity.ForUser(*f.UserID))
		}
		if f.SessionType != "" {
			db = db.Where("session_type = ?", f.SessionType)
		}
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Source != "" {
			db = db.Where("source = ?", f.Source)
		}
		if f.From != nil {
			db = db.Where("practiced_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("practiced_at < ?", *f.To)
		}
		return db
	}
}

func (s *PracticeService) List(ctx context.Context, f dto.PracticeFilter, limit, offset int) ([]models.PracticeSession, int64, error) {
	var sessions []models.PracticeSession
	var total int64

	query := s.db.WithContext(ctx).Model(&models.PracticeSession{}).Scopes(filtered(f))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count practice sessions: %w", err)
	}
	if err := query.Order("practiced_at DESC, id DESC").Limit(limit).Offset(offset).Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list practice sessions: %w", err)
	}
	return sessions, total, nil
}

// Each streams every session matching f, oldest first, in pages.
func (s *PracticeService) Each(ctx context.Context, f dto.PracticeFilter, fn func(*models.PracticeSession) error) error {
	const page = 500
	for offset := 0; ; offset += page {
		var batch []models.PracticeSession
		err := s.db.WithContext(ctx).Scopes(filtered(f)).
			Order("practiced_at ASC, id ASC").Limit(page).Offset(offset).
			Find(&batch).Error
		if err != nil {
			return fmt.Errorf("failed to read practice sessions: %w", err)
		}
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
		}
		if len(batch) < page {
			return nil
		}
	}
}

// Stats aggregates a user's sessions per session type.
func (s *PracticeService) Stats(ctx context.Context, userID uuid.UUID) (*dto.PracticeStatsResponse, error) {
	var rows []struct {
		SessionType string
		Sessions    int64
		Minutes     int64
		Points      int64
		ScoreSum    int64
	}
	err := s.db.WithContext(ctx).Model(&models.PracticeSession{}).
		Scopes(identity.ForUser(userID)).
		Select("session_type, COUNT(*) AS sessions, COALESCE(SUM(duration_minutes), 0) AS minutes, " +
			"COALESCE(SUM(points_earned), 0) AS points, COALESCE(SUM(score), 0) AS score_sum").
		Group("session_type").
		Order("session_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate practice sessions: %w", err)
	}

	resp := &dto.PracticeStatsResponse{ByType: make([]dto.PracticeTypeStats, 0, len(rows))}
	for _, r := range rows {
		avg := decimal.Zero
		if r.Sessions > 0 {
			avg = decimal.NewFromInt(r.ScoreSum).Div(decimal.NewFromInt(r.Sessions)).Round(2)
		}
		resp.ByType = append(resp.ByType, dto.PracticeTypeStats{
			SessionType:  r.SessionType,
			Sessions:     r.Sessions,
			Minutes:      r.Minutes,
			Points:       r.Points,
			AverageScore: avg,
		})
		resp.TotalSessions += r.Sessions
		resp.TotalMinutes += r.Minutes
		resp.TotalPoints += r.Points
	}
	return resp, nil
}
