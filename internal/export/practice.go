// Package export renders practice data as spreadsheets for admins.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/xuri/excelize/v2"
)

const practiceSheet = "Practice Sessions"

var practiceHeader = []interface{}{
	"ID", "User ID", "Session Type", "Category", "Duration (min)", "Score", "Points",
	"Words", "Sentences", "Mistakes", "Source", "Source ID", "Practiced At",
}

// Rows feeds sessions to fn one at a time.
type Rows func(fn func(*models.PracticeSession) error) error

// PracticeSessions writes every session from rows into an xlsx workbook on w and
// returns the number of data rows.
func PracticeSessions(w io.Writer, rows Rows) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", practiceSheet); err != nil {
		return 0, err
	}
	sw, err := f.NewStreamWriter(practiceSheet)
	if err != nil {
		return 0, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	header := make([]interface{}, len(practiceHeader))
	for i, v := range practiceHeader {
		header[i] = excelize.Cell{StyleID: bold, Value: v}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, err
	}

	n := 0
	err = rows(func(s *models.PracticeSession) error {
		n++
		cell, err := excelize.CoordinatesToCellName(1, n+1)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, []interface{}{
			s.ID.String(),
			s.UserID.String(),
			s.SessionType,
			s.Category,
			s.DurationMinutes,
			s.Score,
			s.PointsEarned,
			s.WordsPracticed,
			s.SentencesPracticed,
			s.MistakesCount,
			deref(s.Source),
			deref(s.SourceID),
			s.PracticedAt.UTC().Format(time.RFC3339),
		})
	})
	if err != nil {
		return 0, fmt.Errorf("failed to write practice rows: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return 0, err
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("failed to write workbook: %w", err)
	}
	return n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
