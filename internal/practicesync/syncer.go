// Package practicesync mirrors tier-specific practice rows into the unified
// practice_sessions table.
//
// Every source table is one variant: a Source knows how to scan its rows in insertion
// order and owns one pure mapping function into models.PracticeSession. The Syncer is
// the single merge routine for all of them. A mirrored row is identified by its
// natural key (user_id, source, source_id), which is backed by a composite unique
// index, so re-running the merge never duplicates rows.
package practicesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

var ErrNoNaturalKey = errors.New("practice session has no source key")

type Source interface {
	// Name is the source tag stored in practice_sessions.source.
	Name() string
	// Each maps every row of the source table, oldest first, and passes it to fn.
	Each(ctx context.Context, db *gorm.DB, fn func(models.PracticeSession) error) error
}

type tableSource[T any] struct {
	name  string
	mapFn func(*T) models.PracticeSession
	batch int
}

// NewTableSource builds a Source over the gorm model T.
func NewTableSource[T any](name string, mapFn func(*T) models.PracticeSession) Source {
	return &tableSource[T]{name: name, mapFn: mapFn, batch: defaultBatchSize}
}

func (s *tableSource[T]) Name() string { return s.name }

func (s *tableSource[T]) Each(ctx context.Context, db *gorm.DB, fn func(models.PracticeSession) error) error {
	for offset := 0; ; offset += s.batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rows []T
		err := db.WithContext(ctx).
			Order("created_at ASC, id ASC").
			Limit(s.batch).
			Offset(offset).
			Find(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", s.name, err)
		}

		for i := range rows {
			if err := fn(s.mapFn(&rows[i])); err != nil {
				return err
			}
		}
		if len(rows) < s.batch {
			return nil
		}
	}
}

type Options struct {
	DryRun bool
	// Only restricts the run to the named sources. Empty means all.
	Only []string
}

type SourceReport struct {
	Source  string `json:"source"`
	Scanned int    `json:"scanned"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Report summarizes a run. In dry-run mode Created counts rows that would be created.
type Report struct {
	DryRun  bool           `json:"dry_run"`
	Sources []SourceReport `json:"sources"`
	Scanned int            `json:"scanned"`
	Created int            `json:"created"`
	Skipped int            `json:"skipped"`
	Failed  int            `json:"failed_sources"`
}

type Syncer struct {
	db      *gorm.DB
	sources []Source
}

func NewSyncer(db *gorm.DB, sources ...Source) *Syncer {
	return &Syncer{db: db, sources: sources}
}

func (s *Syncer) SourceNames() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Run processes every source sequentially. A failing source is recorded in the
// report and the run moves on; rows written before the failure stay written.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{DryRun: opts.DryRun}

	for _, src := range s.sources {
		if !selected(src.Name(), opts.Only) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		sr := SourceReport{Source: src.Name()}
		err := src.Each(ctx, s.db, func(session models.PracticeSession) error {
			sr.Scanned++
			if opts.DryRun {
				exists, err := s.exists(ctx, &session)
				if err != nil {
					return err
				}
				if exists {
					sr.Skipped++
				} else {
					sr.Created++
				}
				return nil
			}

			created, err := s.Merge(ctx, session)
			if err != nil {
				return err
			}
			if created {
				sr.Created++
			} else {
				sr.Skipped++
			}
			return nil
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				report.add(sr)
				return report, ctxErr
			}
			sr.Error = err.Error()
			slog.Error("practice sync source failed", "source", sr.Source, "processed", sr.Scanned, "error", err)
		} else {
			slog.Info("practice sync source done",
				"source", sr.Source, "scanned", sr.Scanned, "created", sr.Created, "skipped", sr.Skipped, "dry_run", opts.DryRun)
		}
		report.add(sr)
	}

	return report, nil
}

// Merge inserts one mirrored session unless its natural key already exists. It
// reports whether a row was written.
func (s *Syncer) Merge(ctx context.Context, session models.PracticeSession) (bool, error) {
	if session.Source == nil || session.SourceID == nil {
		return false, ErrNoNaturalKey
	}

	exists, err := s.exists(ctx, &session)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	// The unique index decides when two writers race past the check above.
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&session)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert practice session: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Syncer) exists(ctx context.Context, session *models.PracticeSession) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.PracticeSession{}).
		Where("user_id = ? AND source = ? AND source_id = ?", session.UserID, *session.Source, *session.SourceID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check practice session: %w", err)
	}
	return n > 0, nil
}

func (r *Report) add(sr SourceReport) {
	r.Sources = append(r.Sources, sr)
	r.Scanned += sr.Scanned
	r.Created += sr.Created
	r.Skipped += sr.Skipped
	if sr.Error != "" {
		r.Failed++
	}
}

func selected(name string, only []string) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if o == name {
			return true
		}
	}
	return false
}
