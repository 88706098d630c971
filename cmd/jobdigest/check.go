package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/digest"
)

var checkNoCache bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run once and print the digest, no notification",
	Long:  "Runs the full pipeline and prints the digest to the terminal. Nothing is sent.",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "bypass the embedding cache (nothing is read or written)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: digest will be printed, not sent", "no_cache", checkNoCache)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := buildRunner(ctx, cfg, !checkNoCache, logger)
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

	fmt.Println()
	fmt.Print(digest.RenderTerminal(d))
	return nil
}
