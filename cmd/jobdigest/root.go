package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/adapter"
	"github.com/amishk599/jobdigest/internal/collector"
	"github.com/amishk599/jobdigest/internal/config"
	"github.com/amishk599/jobdigest/internal/embed"
	"github.com/amishk599/jobdigest/internal/filter"
	"github.com/amishk599/jobdigest/internal/model"
	"github.com/amishk599/jobdigest/internal/notifier"
	"github.com/amishk599/jobdigest/internal/pipeline"
	"github.com/amishk599/jobdigest/internal/ranker"
	"github.com/amishk599/jobdigest/internal/ratelimit"
	"github.com/amishk599/jobdigest/internal/retry"
	"github.com/amishk599/jobdigest/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobdigest",
	Short: "Daily job digest ranked against your profiles",
	Long:  "jobdigest searches Google Jobs for fresh postings, ranks them against candidate profiles by embedding similarity, and sends a digest.",
	// Default to `run` so that `jobdigest` with no args does a full pass.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBDIGEST_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it. A .env file in the
// working directory is loaded first so the config can reference its values.
// Priority: explicit path arg > JOBDIGEST_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	_ = godotenv.Load()

	if path == "" {
		if env := os.Getenv("JOBDIGEST_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger), nil
	case "email":
		logger.Info("using email notifier", "host", cfg.Notification.Email.Host, "to", cfg.Notification.Email.To)
		e := cfg.Notification.Email
		return notifier.NewEmailNotifier(notifier.EmailConfig{
			Host:     e.Host,
			Port:     e.Port,
			Username: e.Username,
			Password: e.Password,
			From:     e.From,
			To:       e.To,
		}, logger)
	default:
		return notifier.NewLogNotifier(logger), nil
	}
}

// setupEmbedder builds the configured embedder with retries and pacing, behind
// a cache: SQLite when a cache path is set and useCache is true, otherwise a
// cache that never stores. The returned func releases the cache.
func setupEmbedder(ctx context.Context, cfg *config.Config, limiter *ratelimit.IntervalLimiter, useCache bool, logger *slog.Logger) (model.Embedder, func(), error) {
	var inner model.Embedder
	switch cfg.Embedding.Provider {
	case "gemini":
		g, err := embed.NewGeminiEmbedder(ctx, cfg.Embedding.APIKey, cfg.Embedding.Model)
		if err != nil {
			return nil, nil, err
		}
		inner = g
	default:
		inner = embed.NewOpenAIEmbedder(cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model,
			&http.Client{Timeout: cfg.Embedding.Timeout})
	}
	logger.Info("embedder configured", "provider", cfg.Embedding.Provider, "model", inner.Model())

	inner = retry.NewRetryEmbedder(inner, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
	inner = ratelimit.NewRateLimitedEmbedder(inner, limiter)

	// Without a cache path nothing is persisted between runs.
	if !useCache || cfg.Embedding.CachePath == "" {
		return embed.NewCachedEmbedder(inner, store.NewNopCache(), logger), func() {}, nil
	}

	cache, err := store.NewSQLiteCache(cfg.Embedding.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	logger.Debug("embedding cache enabled", "path", cfg.Embedding.CachePath)
	return embed.NewCachedEmbedder(inner, cache, logger), func() { cache.Close() }, nil
}

// loadProfiles reads every profile file named in the config.
func loadProfiles(cfg *config.Config) ([]ranker.ProfileSource, error) {
	sources := make([]ranker.ProfileSource, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		text, err := p.ReadText()
		if err != nil {
			return nil, err
		}
		sources = append(sources, ranker.ProfileSource{Name: p.Name, Text: text})
	}
	return sources, nil
}

// buildRunner wires searcher, collector, ranker and limiter into a pipeline.
func buildRunner(ctx context.Context, cfg *config.Config, useCache bool, logger *slog.Logger) (*pipeline.Runner, func(), error) {
	sources, err := loadProfiles(cfg)
	if err != nil {
		return nil, nil, err
	}

	limiter := ratelimit.NewIntervalLimiter(cfg.RateLimit.MinDelay, map[string]time.Duration{
		ratelimit.EmbeddingKey: cfg.RateLimit.EmbeddingDelay,
	})
	logger.Info("rate limiter configured",
		"min_delay", cfg.RateLimit.MinDelay.String(),
		"embedding_delay", cfg.RateLimit.EmbeddingDelay.String(),
		"role_pause", cfg.RateLimit.RolePause.String())

	embedder, closeEmbedder, err := setupEmbedder(ctx, cfg, limiter, useCache, logger)
	if err != nil {
		return nil, nil, err
	}

	registry, err := ranker.NewRegistry(ctx, embedder, sources)
	if err != nil {
		closeEmbedder()
		return nil, nil, err
	}
	logger.Info("profiles embedded", "count", registry.Len())

	var searcher model.Searcher = adapter.NewSerpAPIClient(cfg.SerpAPI.BaseURL, cfg.SerpAPI.APIKey,
		&http.Client{Timeout: cfg.SerpAPI.Timeout}, logger)
	searcher = retry.NewRetrySearcher(searcher, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)

	postingFilter := filter.All(
		filter.NewFreshnessFilter(cfg.Search.MaxHours),
		filter.NewTitleExcludeFilter(cfg.Search.TitleExcludeKeywords),
	)

	coll, err := collector.New(searcher, postingFilter, limiter, collector.Options{
		Locations:              cfg.Locations,
		MinJobs:                cfg.Search.MinJobs,
		BroadenTo:              cfg.Search.BroadenTo,
		BroadenAfterRound:      cfg.Search.BroadenAfterRound,
		MaxRounds:              cfg.Search.MaxRounds,
		PageSize:               cfg.Search.PageSize,
		MaxConsecutiveFailures: cfg.Search.MaxConsecutiveFailures,
	}, logger)
	if err != nil {
		closeEmbedder()
		return nil, nil, err
	}

	rk := ranker.New(registry, embedder, ranker.Options{
		TopK:      cfg.Ranking.TopK,
		BatchSize: cfg.Embedding.BatchSize,
	}, logger)

	return pipeline.NewRunner(coll, rk, limiter, cfg.RateLimit.RolePause, logger), closeEmbedder, nil
}
