package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobdigest/internal/store"
)

var pruneOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the embedding cache",
	RunE:  runCacheStats,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete cached embeddings older than --older-than",
	RunE:  runCachePrune,
}

func init() {
	cachePruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 30*24*time.Hour, "age above which cached embeddings are deleted")
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}

func openCache() (*store.SQLiteCache, string) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Embedding.CachePath == "" {
		fmt.Println("embedding cache is disabled (embedding.cache_path is empty)")
		os.Exit(0)
	}
	cache, err := store.NewSQLiteCache(cfg.Embedding.CachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open cache: %v\n", err)
		os.Exit(1)
	}
	return cache, cfg.Embedding.CachePath
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cache, path := openCache()
	defer cache.Close()

	n, err := cache.Count()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d cached embeddings\n", path, n)
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	cache, path := openCache()
	defer cache.Close()

	before, err := cache.Count()
	if err != nil {
		return err
	}
	if err := cache.Cleanup(pruneOlderThan); err != nil {
		return err
	}
	after, err := cache.Count()
	if err != nil {
		return err
	}
	fmt.Printf("%s: pruned %d embeddings older than %s, %d left\n", path, before-after, pruneOlderThan, after)
	return nil
}
