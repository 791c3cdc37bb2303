package dictionary

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// MaxImportRows caps a single upload.
const MaxImportRows = 5000

var ErrUnsupportedFormat = errors.New("only .xlsx and .csv files can be imported")

// ImportResult summarizes one upload. Row errors do not stop the import.
type ImportResult struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Errors    []string `json:"errors"`
}

// Import reads columns word, translation, definition, example from the first sheet
// of an xlsx workbook or from a CSV file. A first row starting with "word" is a
// header.
func (s *FlashcardService) Import(ctx context.Context, userID uuid.UUID, filename string, r io.Reader) (*ImportResult, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readWorkbook(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "word") {
		rows = rows[1:]
	}
	if len(rows) > MaxImportRows {
		return nil, fmt.Errorf("file has %d rows, the limit is %d", len(rows), MaxImportRows)
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		in := rowToCard(row)
		if strings.TrimSpace(in.Word) == "" {
			result.Skipped++
			continue
		}

		result.Processed++
		created, err := s.Upsert(ctx, userID, in)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

func rowToCard(row []string) CardInput {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return CardInput{Word: cell(0), Translation: cell(1), Definition: cell(2), Example: cell(3)}
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return rows, nil
}
