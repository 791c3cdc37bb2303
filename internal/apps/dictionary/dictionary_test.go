package dictionary

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*FlashcardService, *gorm.DB) {
	t.Helper()
	db := dbtest.New(t, New().Models()...)
	svc := NewFlashcardService(db)
	svc.now = func() time.Time { return now }
	return svc, db
}

func TestFlashcardReviewMovesBoxes(t *testing.T) {
	card := Flashcard{Box: 1}

	card.Review(true, now)
	assert.Equal(t, 2, card.Box)
	assert.Equal(t, now.Add(3*24*time.Hour), card.NextReviewAt)

	for i := 0; i < 10; i++ {
		card.Review(true, now)
	}
	assert.Equal(t, MaxBox, card.Box)

	card.Review(false, now)
	assert.Equal(t, 1, card.Box)
	assert.Equal(t, now.Add(24*time.Hour), card.NextReviewAt)
	assert.Equal(t, 12, card.ReviewCount)
	assert.Equal(t, 11, card.CorrectCount)
}

func TestCreateRejectsDuplicateWord(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	user := uuid.New()

	card, err := svc.Create(ctx, user, CardInput{Word: "  Apple ", Translation: "elma"})
	require.NoError(t, err)
	assert.Equal(t, "apple", card.Word)

	_, err = svc.Create(ctx, user, CardInput{Word: "APPLE"})
	assert.ErrorIs(t, err, ErrDuplicateWord)

	// Another user may own the same word.
	_, err = svc.Create(ctx, uuid.New(), CardInput{Word: "apple"})
	require.NoError(t, err)

	other, err := svc.Create(ctx, user, CardInput{Word: "pear"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, user, other.ID, CardInput{Word: "apple"})
	assert.ErrorIs(t, err, ErrDuplicateWord)
}

func TestDueAndReview(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	user := uuid.New()

	a, err := svc.Create(ctx, user, CardInput{Word: "run"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user, CardInput{Word: "walk"})
	require.NoError(t, err)

	due, err := svc.Due(ctx, user, 20)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	reviewed, err := svc.Review(ctx, user, a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, reviewed.Box)

	due, err = svc.Due(ctx, user, 20)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "walk", due[0].Word)

	_, err = svc.Review(ctx, uuid.New(), a.ID, true)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestImportWorkbook(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.Create(ctx, user, CardInput{Word: "house", Translation: "old"})
	require.NoError(t, err)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Word", "Translation", "Definition", "Example"},
		{"house", "ev", "A building for living in.", "The house is big."},
		{"tree", "ağaç"},
		{"", "orphan translation"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := svc.Import(ctx, user, "words.xlsx", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	cards, total, err := svc.List(ctx, user, "ev", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "house", cards[0].Word)
	assert.Equal(t, "The house is big.", cards[0].Example)
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Import(context.Background(), uuid.New(), "words.txt", strings.NewReader("a,b"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportRoute(t *testing.T) {
	_, db := newService(t)
	user := uuid.New()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": user.String()}))
		return c.Next()
	})
	New().RegisterRoutes(app.Group("/api/dictionary"), &apps.Deps{DB: db})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "words.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("word,translation\ncat,kedi\ndog,köpek\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/dictionary/flashcards/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result ImportResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Created)

	var n int64
	require.NoError(t, db.Model(&Flashcard{}).Where("user_id = ?", user).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}
