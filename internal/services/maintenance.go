package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/logging"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Maintenance runs the periodic housekeeping jobs: system log retention and
// expired admin notification purge.
type Maintenance struct {
	scheduler     *gocron.Scheduler
	db            *gorm.DB
	admin         *AdminNotificationService
	retentionDays int
}

func NewMaintenance(db *gorm.DB, admin *AdminNotificationService, retentionDays int) *Maintenance {
	return &Maintenance{
		scheduler:     gocron.NewScheduler(time.UTC),
		db:            db,
		admin:         admin,
		retentionDays: retentionDays,
	}
}

func (m *Maintenance) Start() error {
	if _, err := m.scheduler.Every(1).Day().At("03:00").Do(m.CleanupLogs); err != nil {
		return err
	}
	if _, err := m.scheduler.Every(1).Hour().Do(m.PurgeNotifications); err != nil {
		return err
	}
	m.scheduler.StartAsync()
	return nil
}

func (m *Maintenance) Stop() {
	m.scheduler.Stop()
}

func (m *Maintenance) CleanupLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := logging.CleanupOlderThan(ctx, m.db, m.retentionDays)
	if err != nil {
		slog.Error("log cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("log cleanup completed", "deleted", deleted)
	}
}

func (m *Maintenance) PurgeNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := m.admin.PurgeExpired(ctx)
	if err != nil {
		slog.Error("admin notification purge failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("expired admin notifications purged", "deleted", deleted)
	}
}
