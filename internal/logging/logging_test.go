package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHandler_StoresErrorsOnly(t *testing.T) {
	db := dbtest.New(t)
	h := NewDBHandler(db)
	defer h.Stop()

	logger := slog.New(h).With("path", "/api/practice")
	logger.Info("ignored")
	logger.Error("sync failed", "error", "boom", "user_id", "u-1", "source", "kids_game")
	h.Flush()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "sync failed", logs[0].Message)
	assert.Equal(t, "ERROR", logs[0].Level)
	assert.Equal(t, "/api/practice", logs[0].Path)
	assert.Equal(t, "boom", logs[0].Error)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, "u-1", *logs[0].UserID)
	assert.Contains(t, string(logs[0].Extra), "kids_game")
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var info, warn bytes.Buffer
	m := NewMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(m)

	logger.Info("hello")
	logger.Warn("careful")

	assert.Contains(t, info.String(), "hello")
	assert.Contains(t, info.String(), "careful")
	assert.NotContains(t, warn.String(), "hello")
	assert.Contains(t, warn.String(), "careful")
	assert.False(t, m.Enabled(context.Background(), slog.LevelDebug))
}

type failingSink struct{}

func (failingSink) Enabled(context.Context, slog.Level) bool { return true }
func (failingSink) Handle(context.Context, slog.Record) error { return errors.New("sink down") }
func (f failingSink) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f failingSink) WithGroup(string) slog.Handler { return f }

func TestMultiHandler_FailingSinkDoesNotStopOthers(t *testing.T) {
	var out bytes.Buffer
	text := slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelInfo})
	m := NewMultiHandler(failingSink{}, nil, text)

	logger := slog.New(m).WithGroup("sync").With("source", "kids_game")
	err := logger.Handler().Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "push failed", 0))

	assert.EqualError(t, err, "sink down")
	assert.Contains(t, out.String(), "push failed")
	assert.Contains(t, out.String(), "sync.source=kids_game")
	assert.Same(t, m, m.WithAttrs(nil))
	assert.Same(t, m, m.WithGroup(""))
}

func TestCleanupOlderThan(t *testing.T) {
	db := dbtest.New(t)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: time.Now().AddDate(0, 0, -40), Level: "ERROR", Message: "old"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: time.Now(), Level: "ERROR", Message: "new"}).Error)

	deleted, err := CleanupOlderThan(context.Background(), db, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Message)

	deleted, err = CleanupOlderThan(context.Background(), db, 0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
