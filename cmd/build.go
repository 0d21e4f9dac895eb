package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// Build runs the full pipeline and optionally creates the playlist.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")

	backend, err := pipeline.ParseBackend(cmd.String("backend"))
	if err != nil {
		return err
	}

	if err := r.loadSpotifyToken(ctx, cmd.String("token-file")); err != nil {
		return err
	}

	cfg := r.pipelineConfig()
	if langs := cmd.StringSlice("languages"); len(langs) > 0 {
		cfg.Languages = langs
	}
	if banned := cmd.StringSlice("banned-word"); len(banned) > 0 {
		cfg.BannedWords = append(cfg.BannedWords, banned...)
	}
	if workers := cmd.Int("workers"); workers > 0 {
		cfg.MatchWorkers = workers
	}
	if cmd.Bool("similarity") {
		cfg.RankBySimilarity = true
	}

	var lyrics services.LyricsSearcher
	if maxPages := cmd.Int("max-pages"); maxPages > 0 && r.lyricsFactory != nil {
		lyrics, err = r.lyricsFactory(r.config.Search.PageSize, maxPages)
		if err != nil {
			return fmt.Errorf("failed to configure lyrics provider: %w", err)
		}
	}

	opts := tasks.BuildOptions{
		Backend:      backend,
		PlaylistName: cmd.String("name"),
		Create:       cmd.Bool("create"),
		Replace:      cmd.Bool("replace"),
	}

	r.logger.Info("building playlist", "query", query, "backend", backend, "create", opts.Create)

	engine := r.newEngine(cfg, lyrics)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchCandidates:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ProcessCandidates:
				r.writePlain("⚙  %s\n", update.Message)
			case tasks.MatchCandidates:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.ReplacePlaylists:
				r.writePlain("🗑  %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Build(ctx, query, opts, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	summary := result.Summary

	r.writePlain("\n")
	r.writePlainHeader("Build Complete")
	r.writePlain("Query: %s (%s backend)\n", summary.Query, summary.Backend)
	r.writePlain("Candidates: %d raw → %d filtered → %d unique\n", summary.RawCount, summary.FilteredCount, summary.DedupedCount)
	r.writePlain("Matched: %d/%d (%.1f%%)\n", summary.MatchedCount, summary.DedupedCount, summary.MatchRate()*100)

	if n := len(result.Replaced); n > 0 {
		r.writePlain("Removed %d existing playlist(s)\n", n)
	}

	if result.Playlist != nil {
		r.writePlain("\n✓ Playlist created: %s (%d tracks)\n", result.Playlist.Name, result.Playlist.TrackCount)
		if result.Playlist.URL != "" {
			r.writePlain("  %s\n", result.Playlist.URL)
		}
	} else if opts.Create {
		r.writePlain("\nNo playlist created.\n")
	}

	if format := cmd.String("export"); format != "" {
		if err := r.exportBuild(result, format); err != nil {
			return err
		}
	}

	return nil
}

// exportBuild writes the run's files into the configured results directory.
func (r *Runner) exportBuild(result *tasks.BuildResult, format string) error {
	outputDir := r.config.Results.Dir

	dumps, err := formatter.WriteStageDumps(&result.Pipeline, result.Summary.Query, outputDir)
	if err != nil {
		return fmt.Errorf("failed to write stage dumps: %w", err)
	}

	if format == "json" {
		r.writePlain("\nExported %d stage files to %s\n", len(dumps.Files), dumps.Directory)
		return nil
	}

	export, err := formatter.WriteExport(result.Summary, result.Pipeline.Matched, outputDir, normalizeExportFormat(format))
	if err != nil {
		return err
	}

	r.writePlain("\nExported to %s\n", export.Directory)
	return nil
}

func normalizeExportFormat(format string) string {
	switch format {
	case "md":
		return "markdown"
	case "txt":
		return "text"
	default:
		return format
	}
}

// buildCommand runs the full search-filter-match-create flow.
func buildCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build a playlist from a phrase",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Candidate source: lyrics or track",
				Value:   "lyrics",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Playlist name (defaults to the query)",
			},
			&cli.StringSliceFlag{
				Name:  "languages",
				Usage: "Allowed lyrics languages (two-letter codes)",
			},
			&cli.StringSliceFlag{
				Name:  "banned-word",
				Usage: "Additional banned word (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "create",
				Usage: "Create the playlist after matching",
			},
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Remove same-name playlists before creating",
			},
			&cli.IntFlag{
				Name:  "max-pages",
				Usage: "Maximum provider result pages to fetch",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent catalog match workers",
			},
			&cli.BoolFlag{
				Name:  "similarity",
				Usage: "Rank catalog results by title similarity",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Export results: csv, md, txt or json",
			},
			tokenFileFlag(),
		},
		Action: r.Build,
	}
}
