package logging

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/models"
	"gorm.io/gorm"
)

// CleanupOlderThan deletes system_logs rows older than the retention window.
func CleanupOlderThan(ctx context.Context, db *gorm.DB, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	result := db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
