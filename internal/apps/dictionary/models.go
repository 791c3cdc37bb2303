package dictionary

import (
	"time"

	"github.com/google/uuid"
)

// MaxBox is the last Leitner box. Cards there are reviewed least often.
const MaxBox = 5

// boxIntervals is the wait before a card in box i is due again.
var boxIntervals = [MaxBox + 1]time.Duration{
	1: 24 * time.Hour,
	2: 3 * 24 * time.Hour,
	3: 7 * 24 * time.Hour,
	4: 14 * 24 * time.Hour,
	5: 30 * 24 * time.Hour,
}

type Flashcard struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_flashcard_user_word,priority:1;index:idx_flashcard_user_due,priority:1" json:"user_id"`
	Word         string    `gorm:"size:100;not null;uniqueIndex:idx_flashcard_user_word,priority:2" json:"word"`
	Translation  string    `gorm:"size:255" json:"translation"`
	Definition   string    `gorm:"type:text" json:"definition"`
	Example      string    `gorm:"type:text" json:"example"`
	Box          int       `gorm:"not null;default:1" json:"box"`
	NextReviewAt time.Time `gorm:"not null;index:idx_flashcard_user_due,priority:2" json:"next_review_at"`
	ReviewCount  int       `gorm:"not null;default:0" json:"review_count"`
	CorrectCount int       `gorm:"not null;default:0" json:"correct_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Review moves the card between boxes. A correct answer promotes it one box, a
// miss sends it back to the first.
func (f *Flashcard) Review(correct bool, now time.Time) {
	f.ReviewCount++
	if correct {
		f.CorrectCount++
		if f.Box < MaxBox {
			f.Box++
		}
	} else {
		f.Box = 1
	}
	f.NextReviewAt = now.Add(boxIntervals[f.Box])
}
