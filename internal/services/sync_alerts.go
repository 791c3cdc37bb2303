package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
)

// ReportSyncFailures raises one system alert listing the sources that failed in a
// practice sync run. Reports without failures are ignored.
func ReportSyncFailures(ctx context.Context, admins *AdminNotificationService, report *practicesync.Report) {
	if admins == nil || report == nil || report.Failed == 0 {
		return
	}

	var failed []string
	errs := make(map[string]interface{}, report.Failed)
	for _, sr := range report.Sources {
		if sr.Error != "" {
			failed = append(failed, sr.Source)
			errs[sr.Source] = sr.Error
		}
	}

	message := fmt.Sprintf("%d of %d sources failed: %s. %d sessions were created.",
		report.Failed, len(report.Sources), strings.Join(failed, ", "), report.Created)
	err := admins.NotifySystem(ctx, "Practice session sync failed", message, map[string]interface{}{
		"failed_sources": errs,
		"created":        report.Created,
		"skipped":        report.Skipped,
	})
	if err != nil {
		slog.Error("failed to raise sync alert", "error", err)
	}
}
