package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SessionVocabulary    = "vocabulary"
	SessionPronunciation = "pronunciation"
	SessionConversation  = "conversation"
	SessionGrammar       = "grammar"
	SessionReading       = "reading"
)

var SessionTypes = []string{
	SessionVocabulary,
	SessionPronunciation,
	SessionConversation,
	SessionGrammar,
	SessionReading,
}

func IsSessionType(s string) bool {
	for _, t := range SessionTypes {
		if t == s {
			return true
		}
	}
	return false
}

// PracticeSession is the unified cross-tier record of one practice activity.
//
// Rows mirrored from a tier table carry Source (the source tag, e.g.
// "kids_vocabulary") and SourceID (the source row id). The composite unique index on
// (user_id, source, source_id) makes mirroring idempotent. Sessions created directly
// leave both NULL and are never deduplicated.
type PracticeSession struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_practice_source_record,priority:1" json:"user_id"`
	SessionType        string            `gorm:"size:20;not null;index" json:"session_type"`
	Category           string            `gorm:"size:50;index" json:"category"`
	DurationMinutes    int               `gorm:"not null;default:0" json:"duration_minutes"`
	Score              int               `gorm:"not null;default:0" json:"score"`
	PointsEarned       int               `gorm:"not null;default:0" json:"points_earned"`
	WordsPracticed     int               `gorm:"not null;default:0" json:"words_practiced"`
	SentencesPracticed int               `gorm:"not null;default:0" json:"sentences_practiced"`
	MistakesCount      int               `gorm:"not null;default:0" json:"mistakes_count"`
	Details            datatypes.JSONMap `json:"details"`
	Source             *string           `gorm:"size:50;uniqueIndex:idx_practice_source_record,priority:2" json:"source,omitempty"`
	SourceID           *string           `gorm:"size:36;uniqueIndex:idx_practice_source_record,priority:3" json:"source_id,omitempty"`
	PracticedAt        time.Time         `gorm:"not null;index" json:"practiced_at"`
	CreatedAt          time.Time         `json:"created_at"`
}
