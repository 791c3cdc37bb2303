package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreatePracticeRequest struct {
	SessionType        string                 `json:"session_type" validate:"required,oneof=vocabulary pronunciation conversation grammar reading"`
	Category           string                 `json:"category" validate:"omitempty,max=50"`
	DurationMinutes    int                    `json:"duration_minutes" validate:"min=0,max=600"`
	Score              int                    `json:"score" validate:"min=0,max=100"`
	PointsEarned       int                    `json:"points_earned" validate:"min=0,max=10000"`
	WordsPracticed     int                    `json:"words_practiced" validate:"min=0"`
	SentencesPracticed int                    `json:"sentences_practiced" validate:"min=0"`
	MistakesCount      int                    `json:"mistakes_count" validate:"min=0"`
	Details            map[string]interface{} `json:"details,omitempty"`
	PracticedAt        *time.Time             `json:"practiced_at,omitempty"`
}

type PracticeTypeStats struct {
	SessionType  string          `json:"session_type"`
	Sessions     int64           `json:"sessions"`
	Minutes      int64           `json:"minutes"`
	Points       int64           `json:"points"`
	AverageScore decimal.Decimal `json:"average_score"`
}

type PracticeStatsResponse struct {
	TotalSessions int64               `json:"total_sessions"`
	TotalMinutes  int64               `json:"total_minutes"`
	TotalPoints   int64               `json:"total_points"`
	ByType        []PracticeTypeStats `json:"by_type"`
}

// PracticeFilter narrows admin and user practice listings.
type PracticeFilter struct {
	UserID      *uuid.UUID
	SessionType string
	Category    string
	Source      string
	From        *time.Time
	To          *time.Time
}

type ListResponse struct {
	Data   interface{} `json:"data"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
