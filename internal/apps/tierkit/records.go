package tierkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotEligible = errors.New("not eligible for a certificate yet")

// AchievementRecord is a tier achievement row.
type AchievementRecord interface {
	AchievementName() string
	IsUnlocked() bool
	// Apply copies a rule result onto the row. An unlocked row stays unlocked.
	Apply(userID uuid.UUID, r Result, now time.Time)
}

// SyncAchievements writes rule results into the tier's achievement table and sends one
// notification for every achievement that moved from locked to unlocked.
func SyncAchievements[T any, PT interface {
	*T
	AchievementRecord
}](ctx context.Context, db *gorm.DB, notifier *services.NotificationService, userID uuid.UUID, results []Result) ([]T, error) {
	db = db.WithContext(ctx)
	now := time.Now()

	var rows []T
	if err := db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	byName := make(map[string]PT, len(rows))
	for i := range rows {
		row := PT(&rows[i])
		byName[row.AchievementName()] = row
	}

	var unlocked []Result
	for _, r := range results {
		row, ok := byName[r.Rule.Name]
		if ok {
			was := row.IsUnlocked()
			row.Apply(userID, r, now)
			if err := db.Save(row).Error; err != nil {
				return nil, fmt.Errorf("failed to update achievement %q: %w", r.Rule.Name, err)
			}
			if !was && row.IsUnlocked() {
				unlocked = append(unlocked, r)
			}
			continue
		}

		row = PT(new(T))
		row.Apply(userID, r, now)
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to create achievement %q: %w", r.Rule.Name, res.Error)
		}
		if res.RowsAffected > 0 && row.IsUnlocked() {
			unlocked = append(unlocked, r)
		}
	}

	for _, r := range unlocked {
		if _, _, err := notifier.NotifyAchievement(ctx, userID, r.Rule.Name, r.Rule.Description); err != nil {
			slog.Error("achievement notification failed", "user_id", userID.String(), "achievement", r.Rule.Name, "error", err)
		}
	}

	var out []T
	if err := db.Where("user_id = ?", userID).Order("unlocked DESC, name ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	return out, nil
}

// CertificateRecord is a tier certificate row.
type CertificateRecord interface {
	CertificateID() uuid.UUID
	CertificateTitle() string
}

// IssueCertificate returns the user's certificate for category, creating it with
// build when none exists. Issuing again returns the stored row with created=false and
// never produces a second notification.
func IssueCertificate[T any, PT interface {
	*T
	CertificateRecord
}](ctx context.Context, db *gorm.DB, notifier *services.NotificationService, userID uuid.UUID, category string, build func() PT) (PT, bool, error) {
	db = db.WithContext(ctx)

	existing, err := findCertificate[T, PT](db, userID, category)
	if err == nil {
		// Covers a previous issue whose notification write failed.
		notifyCertificate(ctx, notifier, userID, existing)
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	row := build()
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to issue certificate: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		existing, err := findCertificate[T, PT](db, userID, category)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	notifyCertificate(ctx, notifier, userID, row)
	return row, true, nil
}

func notifyCertificate(ctx context.Context, notifier *services.NotificationService, userID uuid.UUID, cert CertificateRecord) {
	if _, _, err := notifier.NotifyCertificate(ctx, userID, cert.CertificateID(), cert.CertificateTitle()); err != nil {
		slog.Error("certificate notification failed", "user_id", userID.String(), "certificate_id", cert.CertificateID().String(), "error", err)
	}
}

func findCertificate[T any, PT interface {
	*T
	CertificateRecord
}](db *gorm.DB, userID uuid.UUID, category string) (PT, error) {
	var row T
	err := db.Where("user_id = ? AND category = ?", userID, category).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	}
	return PT(&row), nil
}
