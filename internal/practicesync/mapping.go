package practicesync

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	VocabularyMinutes    = 2
	VocabularyPoints     = 25
	PronunciationMinutes = 3
	PronunciationPoints  = 30
	GameFallbackMinutes  = 5
)

// gameCategories classifies a game_type into a practice category. Unknown games are
// conversation practice.
var gameCategories = map[string]string{
	"word_match":       models.SessionVocabulary,
	"memory_cards":     models.SessionVocabulary,
	"spelling_bee":     models.SessionVocabulary,
	"picture_quiz":     models.SessionVocabulary,
	"word_scramble":    models.SessionVocabulary,
	"say_it":           models.SessionPronunciation,
	"echo_challenge":   models.SessionPronunciation,
	"tongue_twister":   models.SessionPronunciation,
	"phonics_pop":      models.SessionPronunciation,
	"sentence_builder": models.SessionGrammar,
	"grammar_quest":    models.SessionGrammar,
	"fix_the_sentence": models.SessionGrammar,
	"story_reading":    models.SessionReading,
	"reading_race":     models.SessionReading,
	"comprehension":    models.SessionReading,
	"role_play":        models.SessionConversation,
	"chat_buddy":       models.SessionConversation,
}

// GameSessionType returns the practice category for a game type.
func GameSessionType(gameType string) string {
	if t, ok := gameCategories[gameType]; ok {
		return t
	}
	return models.SessionConversation
}

// GameDurationMinutes converts a recorded game length to whole minutes. A zero
// length means the client never reported one.
func GameDurationMinutes(seconds int) int {
	if seconds <= 0 {
		return GameFallbackMinutes
	}
	if m := seconds / 60; m > 1 {
		return m
	}
	return 1
}

// VocabularyRecord is the tier-neutral shape of a vocabulary practice row.
type VocabularyRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Category    string
	Word        string
	Attempts    int
	BestScore   int
	PracticedAt time.Time
}

// PronunciationRecord is the tier-neutral shape of a pronunciation attempt row.
type PronunciationRecord struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Category    string
	Phrase      string
	Attempts    int
	BestScore   int
	PracticedAt time.Time
}

// GameRecord is the tier-neutral shape of a game session row.
type GameRecord struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Category        string
	GameType        string
	Score           int
	PointsEarned    int
	Mistakes        int
	Rounds          int
	Difficulty      string
	DurationSeconds int
	PlayedAt        time.Time
}

// FromVocabulary maps a vocabulary row. Points are only awarded for a first-try
// success.
func FromVocabulary(source string, r VocabularyRecord) models.PracticeSession {
	points := 0
	if r.Attempts == 1 {
		points = VocabularyPoints
	}
	return models.PracticeSession{
		UserID:          r.UserID,
		SessionType:     models.SessionVocabulary,
		Category:        r.Category,
		DurationMinutes: VocabularyMinutes,
		Score:           r.BestScore,
		PointsEarned:    points,
		WordsPracticed:  1,
		MistakesCount:   mistakes(r.Attempts),
		Details: datatypes.JSONMap{
			"source":      source,
			"practice_id": r.ID.String(),
			"synced_from": source,
			"word":        r.Word,
			"attempts":    r.Attempts,
		},
		Source:      strPtr(source),
		SourceID:    strPtr(r.ID.String()),
		PracticedAt: r.PracticedAt,
	}
}

// FromPronunciation maps a pronunciation row with the same first-try rule.
func FromPronunciation(source string, r PronunciationRecord) models.PracticeSession {
	points := 0
	if r.Attempts == 1 {
		points = PronunciationPoints
	}
	return models.PracticeSession{
		UserID:             r.UserID,
		SessionType:        models.SessionPronunciation,
		Category:           r.Category,
		DurationMinutes:    PronunciationMinutes,
		Score:              r.BestScore,
		PointsEarned:       points,
		SentencesPracticed: 1,
		MistakesCount:      mistakes(r.Attempts),
		Details: datatypes.JSONMap{
			"source":      source,
			"practice_id": r.ID.String(),
			"synced_from": source,
			"phrase":      r.Phrase,
			"attempts":    r.Attempts,
		},
		Source:      strPtr(source),
		SourceID:    strPtr(r.ID.String()),
		PracticedAt: r.PracticedAt,
	}
}

// FromGame maps a game session row.
func FromGame(source string, r GameRecord) models.PracticeSession {
	sessionType := GameSessionType(r.GameType)
	s := models.PracticeSession{
		UserID:          r.UserID,
		SessionType:     sessionType,
		Category:        r.Category,
		DurationMinutes: GameDurationMinutes(r.DurationSeconds),
		Score:           r.Score,
		PointsEarned:    r.PointsEarned,
		MistakesCount:   r.Mistakes,
		Details: datatypes.JSONMap{
			"source":          source,
			"game_session_id": r.ID.String(),
			"synced_from":     source,
			"game_type":       r.GameType,
			"rounds":          r.Rounds,
			"difficulty":      r.Difficulty,
		},
		Source:      strPtr(source),
		SourceID:    strPtr(r.ID.String()),
		PracticedAt: r.PlayedAt,
	}
	switch sessionType {
	case models.SessionVocabulary:
		s.WordsPracticed = r.Rounds
	case models.SessionPronunciation, models.SessionGrammar, models.SessionReading:
		s.SentencesPracticed = r.Rounds
	}
	return s
}

func mistakes(attempts int) int {
	if attempts <= 1 {
		return 0
	}
	return attempts - 1
}

func strPtr(s string) *string {
	return &s
}
