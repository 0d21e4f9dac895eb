package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/shared"
)

// CacheStats prints the response cache's entry count and age.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: cache not initialized, run 'lyrx setup' first", shared.ErrServiceUnavailable)
	}

	count, oldest, err := r.cache.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache stats: %w", err)
	}

	r.writePlain("Cached responses: %d\n", count)
	if count > 0 && !oldest.IsZero() {
		r.writePlain("Oldest entry: %s (%s ago)\n", oldest.Format(time.RFC3339), time.Since(oldest).Round(time.Second))
	}
	return nil
}

// CacheClear removes cached API responses.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: cache not initialized, run 'lyrx setup' first", shared.ErrServiceUnavailable)
	}

	if olderThan := cmd.Duration("older-than"); olderThan > 0 {
		removed, err := r.cache.Prune(olderThan)
		if err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}
		r.logger.Info("pruned cache", "removed", removed)
		r.writePlain("✓ Removed %d entries older than %s\n", removed, olderThan)
		return nil
	}

	removed, err := r.cache.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.logger.Info("cleared cache", "removed", removed)
	r.writePlain("✓ Removed %d cached responses\n", removed)
	return nil
}

// cacheCommand handles response cache maintenance.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and clear the API response cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count and age",
				Action: r.CacheStats,
			},
			{
				Name:  "clear",
				Usage: "Remove cached API responses",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Only remove entries older than this duration",
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}
