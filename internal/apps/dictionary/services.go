package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/identity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCardNotFound  = errors.New("flashcard not found")
	ErrDuplicateWord = errors.New("flashcard for this word already exists")
	ErrEmptyWord     = errors.New("word cannot be empty")
)

type CardInput struct {
	Word        string `json:"word" validate:"required,max=100"`
	Translation string `json:"translation" validate:"max=255"`
	Definition  string `json:"definition"`
	Example     string `json:"example"`
}

type FlashcardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewFlashcardService(db *gorm.DB) *FlashcardService {
	return &FlashcardService{db: db, now: time.Now}
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

func (s *FlashcardService) Create(ctx context.Context, userID uuid.UUID, in CardInput) (*Flashcard, error) {
	word := normalizeWord(in.Word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	card := Flashcard{
		UserID:       userID,
		Word:         word,
		Translation:  strings.TrimSpace(in.Translation),
		Definition:   in.Definition,
		Example:      in.Example,
		Box:          1,
		NextReviewAt: s.now(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&card)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create flashcard: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrDuplicateWord
	}
	return &card, nil
}

func (s *FlashcardService) Get(ctx context.Context, userID, id uuid.UUID) (*Flashcard, error) {
	var card Flashcard
	err := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).First(&card, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flashcard: %w", err)
	}
	return &card, nil
}

func (s *FlashcardService) List(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]Flashcard, int64, error) {
	var cards []Flashcard
	var total int64

	query := s.db.WithContext(ctx).Model(&Flashcard{}).Scopes(identity.ForUser(userID))
	if search != "" {
		like := "%" + normalizeWord(search) + "%"
		query = query.Where("word LIKE ? OR LOWER(translation) LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count flashcards: %w", err)
	}
	if err := query.Order("word ASC").Limit(limit).Offset(offset).Find(&cards).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list flashcards: %w", err)
	}
	return cards, total, nil
}

// Due returns the cards whose review time has passed, most overdue first.
func (s *FlashcardService) Due(ctx context.Context, userID uuid.UUID, limit int) ([]Flashcard, error) {
	var cards []Flashcard
	err := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).
		Where("next_review_at <= ?", s.now()).
		Order("next_review_at ASC, box ASC").
		Limit(limit).
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due flashcards: %w", err)
	}
	return cards, nil
}

func (s *FlashcardService) Update(ctx context.Context, userID, id uuid.UUID, in CardInput) (*Flashcard, error) {
	card, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	word := normalizeWord(in.Word)
	if word == "" {
		return nil, ErrEmptyWord
	}

	if word != card.Word {
		var n int64
		err := s.db.WithContext(ctx).Model(&Flashcard{}).
			Where("user_id = ? AND word = ? AND id <> ?", userID, word, id).
			Count(&n).Error
		if err != nil {
			return nil, fmt.Errorf("failed to check flashcard: %w", err)
		}
		if n > 0 {
			return nil, ErrDuplicateWord
		}
	}

	card.Word = word
	card.Translation = strings.TrimSpace(in.Translation)
	card.Definition = in.Definition
	card.Example = in.Example
	if err := s.db.WithContext(ctx).Save(card).Error; err != nil {
		return nil, fmt.Errorf("failed to update flashcard: %w", err)
	}
	return card, nil
}

func (s *FlashcardService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Scopes(identity.ForUser(userID)).Delete(&Flashcard{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete flashcard: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (s *FlashcardService) Review(ctx context.Context, userID, id uuid.UUID, correct bool) (*Flashcard, error) {
	card, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	card.Review(correct, s.now())
	if err := s.db.WithContext(ctx).Save(card).Error; err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}
	return card, nil
}

// Upsert writes an imported card. An existing word keeps its review schedule and
// gets the new texts.
func (s *FlashcardService) Upsert(ctx context.Context, userID uuid.UUID, in CardInput) (created bool, err error) {
	word := normalizeWord(in.Word)
	if word == "" {
		return false, ErrEmptyWord
	}

	card := Flashcard{
		UserID:       userID,
		Word:         word,
		Translation:  strings.TrimSpace(in.Translation),
		Definition:   in.Definition,
		Example:      in.Example,
		Box:          1,
		NextReviewAt: s.now(),
	}
	db := s.db.WithContext(ctx)
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&card)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	updates := map[string]interface{}{"translation": card.Translation}
	if card.Definition != "" {
		updates["definition"] = card.Definition
	}
	if card.Example != "" {
		updates["example"] = card.Example
	}
	err = db.Model(&Flashcard{}).Where("user_id = ? AND word = ?", userID, word).Updates(updates).Error
	return false, err
}
