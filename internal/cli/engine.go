package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fileops/attnmon/internal/config"
	"github.com/fileops/attnmon/internal/detector"
	"github.com/fileops/attnmon/internal/ledger"
	"github.com/fileops/attnmon/internal/report"
	"github.com/fileops/attnmon/internal/tracker"
	"github.com/spf13/cobra"
)

// engine bundles the pieces every subcommand needs: configuration, the
// loaded ledger, and the tracking/analysis layers built on top of it.
type engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *ledger.Store
	ledger   *ledger.Ledger
	tracker  *tracker.Tracker
	analyzer *detector.Analyzer
	reports  *report.Writer
}

// openEngine loads configuration, opens the ledger store, and wires the
// tracker and analyzer. logFormat overrides the configured format when
// non-empty (one-shot commands log as text regardless of daemon config).
func openEngine(cmd *cobra.Command, logFormat string) (*engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if cmd != nil && cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	format := cfg.Logging.Format
	if logFormat != "" {
		format = logFormat
	}
	logger := setupLogger(cfg.Logging.Level, format)

	store, err := ledger.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger store: %w", err)
	}

	l := ledger.New(store, logger)
	l.Load(context.Background())

	reports, err := report.NewWriter(cfg.Reports.Dir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("preparing report directory: %w", err)
	}

	return &engine{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		ledger:   l,
		tracker:  tracker.New(l, logger),
		analyzer: detector.NewAnalyzer(l, detectorsFrom(cfg), logger),
		reports:  reports,
	}, nil
}

// close persists any unsaved ledger state and releases the store.
func (e *engine) close(ctx context.Context) {
	if err := e.ledger.Save(ctx); err != nil {
		e.logger.Error("failed to save ledger on shutdown", "error", err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("failed to close ledger store", "error", err)
	}
}

// detectorsFrom builds the detector battery with configured thresholds.
func detectorsFrom(cfg *config.Config) []detector.Detector {
	a := cfg.Analysis
	return []detector.Detector{
		detector.NewColdFiles(time.Duration(a.ColdFileDays) * 24 * time.Hour),
		detector.NewDuplicateDownloads(time.Duration(a.DuplicateWindowHours) * time.Hour),
		detector.NewMicroClutter(a.SmallFileKB*1024, a.MicroClutterFiles),
		detector.NewContextSwitching(a.ContextSwitchesPerHour),
		detector.NewOrphanedFolders(time.Duration(a.OrphanInactiveDays)*24*time.Hour, a.OrphanMinFiles),
	}
}
