package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/formatter"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Export re-runs a query through the pipeline and writes its export files.
// Provider responses are served from the response cache, so re-exporting a
// recent run does not spend API quota. Without a query it lists recent runs.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return r.listRuns(cmd.Int("limit"))
	}

	backend, err := pipeline.ParseBackend(cmd.String("backend"))
	if err != nil {
		return err
	}

	if err := r.loadSpotifyToken(ctx, cmd.String("token-file")); err != nil {
		return err
	}

	r.logger.Info("exporting run", "query", query, "backend", backend)

	engine := r.newEngine(r.pipelineConfig(), nil)

	result, err := engine.Search(ctx, query, backend, nil)
	if err != nil {
		return err
	}

	summary := models.RunSummary{
		Query:         query,
		Backend:       backend.String(),
		RawCount:      len(result.Raw),
		FilteredCount: len(result.Filtered),
		DedupedCount:  len(result.Deduped),
		MatchedCount:  len(result.Matched),
		CreatedAt:     time.Now(),
	}

	outputDir := r.config.Results.Dir
	dumps, err := formatter.WriteStageDumps(&result, query, outputDir)
	if err != nil {
		return fmt.Errorf("failed to write stage dumps: %w", err)
	}

	format := cmd.String("format")
	if format != "json" {
		if _, err := formatter.WriteExport(summary, result.Matched, outputDir, normalizeExportFormat(format)); err != nil {
			return err
		}
	}

	r.writePlain("✓ Exported %q to %s\n", query, dumps.Directory)
	return nil
}

func (r *Runner) listRuns(limit int) error {
	if r.runs == nil {
		return fmt.Errorf("%w: run history not initialized, run 'lyrx setup' first", shared.ErrServiceUnavailable)
	}
	if limit <= 0 {
		limit = 20
	}

	summaries, err := r.runs.List(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(summaries) == 0 {
		r.writePlain("No recorded runs.\n")
		return nil
	}

	r.writePlainHeader("Recent Runs")
	for _, s := range summaries {
		r.writePlain("%s  %-20q %s backend, %d/%d matched", s.CreatedAt.Format(time.DateTime), s.Query, s.Backend, s.MatchedCount, s.DedupedCount)
		if s.PlaylistID != "" {
			r.writePlain(" → playlist %s", s.PlaylistID)
		}
		r.writePlain("\n")
	}
	return nil
}

// exportCommand re-exports the files of a previous run.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a run's results; without a query, list recent runs",
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
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, md, txt or json",
				Value:   "csv",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of runs to list",
				Value: 20,
			},
			tokenFileFlag(),
		},
		Action: r.Export,
	}
}
