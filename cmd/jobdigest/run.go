package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, rank and send the digest",
	Long:  "One full pass: searches every role, ranks the fresh postings against each profile and sends the digest with the configured notifier.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"roles", len(cfg.Roles),
		"locations", len(cfg.Locations),
		"profiles", len(cfg.Profiles),
		"min_jobs", cfg.Search.MinJobs,
		"max_hours", cfg.Search.MaxHours,
		"notifier", cfg.Notification.Type,
	)

	n, err := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(ctx, cfg, true, logger)
	if err != nil {
		logger.Error("failed to set up pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	d, err := runner.Run(ctx, cfg.Roles)
	if err != nil {
		logger.Error("run failed", "error", err)
		cleanup()
		os.Exit(1)
	}

	if err := n.Notify(ctx, d); err != nil {
		logger.Error("notification failed", "error", err)
		cleanup()
		os.Exit(1)
	}

	logger.Info("digest sent")
	return nil
}
