// Command backfill mirrors tier activity tables into practice_sessions.
//
//	backfill [--dry-run] [--source kids_vocabulary,teen_game]
//
// Rows already mirrored are skipped, so the command can be re-run at any time.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/installed"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code: 0 on success, 1 on setup or usage errors and
// 2 when any source failed. Deferred cleanup runs before main exits.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("backfill", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "report what would be created without writing")
	source := fs.String("source", "", "comma-separated source names to process (default all)")
	list := fs.Bool("list", false, "print the available sources and exit")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	plugins := installed.Plugins()
	sources := apps.PracticeSources(plugins)
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}

	if *list {
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return 0
	}

	only := splitList(*source)
	for _, name := range only {
		if !known(names, name) {
			slog.Error("unknown source", "source", name, "available", strings.Join(names, ", "))
			return 1
		}
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return 1
	}
	defer database.Close(db)

	if err := database.MigrateShared(db); err != nil {
		slog.Error("shared migration failed", "error", err)
		return 1
	}
	if err := database.MigrateModels(db, apps.AllModels(plugins)); err != nil {
		slog.Error("plugin migration failed", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer := practicesync.NewSyncer(db, sources...)
	report, err := syncer.Run(ctx, practicesync.Options{DryRun: *dryRun, Only: only})
	if err != nil {
		slog.Error("backfill failed", "error", err)
		return 1
	}

	printReport(stdout, report)

	if !report.DryRun {
		services.ReportSyncFailures(ctx, services.NewAdminNotificationService(db), report)
	}
	if report.Failed > 0 {
		return 2
	}
	return 0
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func known(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func printReport(out io.Writer, r *practicesync.Report) {
	if r.DryRun {
		fmt.Fprintln(out, "DRY RUN: nothing was written")
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSCANNED\tCREATED\tSKIPPED\tERROR")
	for _, sr := range r.Sources {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", sr.Source, sr.Scanned, sr.Created, sr.Skipped, sr.Error)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t%d failed\n", r.Scanned, r.Created, r.Skipped, r.Failed)
	w.Flush()
}
