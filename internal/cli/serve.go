package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fileops/attnmon/internal/report"
	"github.com/fileops/attnmon/internal/scheduler"
	"github.com/fileops/attnmon/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the daemon",
	Long: `Start the attnmon daemon: the HTTP ingestion API plus the periodic
analysis scheduler. This is typically invoked by systemd or a login agent.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd, "")
	if err != nil {
		return err
	}

	ctx := context.Background()
	defer eng.close(ctx)

	eng.logger.Info("starting attnmon daemon",
		"config", cfgFile,
		"db", eng.cfg.Database.Path,
		"listen", eng.cfg.Server.Listen,
		"interval_hours", eng.cfg.Scheduler.IntervalHours,
	)

	// Periodic analysis
	var reports *report.Writer
	if eng.cfg.Reports.Auto {
		reports = eng.reports
	}
	sched := scheduler.New(eng.analyzer, reports, scheduler.Options{
		Interval:   time.Duration(eng.cfg.Scheduler.IntervalHours) * time.Hour,
		AutoReport: eng.cfg.Reports.Auto,
	}, eng.logger)
	sched.Start()
	defer sched.Stop()

	// HTTP API
	srv := server.New(eng.tracker, eng.analyzer, sched, eng.reports, version, eng.logger)
	httpSrv := &http.Server{
		Addr:         eng.cfg.Server.Listen,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		eng.logger.Info("received signal, initiating graceful shutdown", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		eng.logger.Error("http shutdown error", "error", err)
	}

	eng.logger.Info("daemon stopped")
	return nil
}
