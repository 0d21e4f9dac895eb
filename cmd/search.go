package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// Search runs the candidate pipeline for a phrase and prints the ranked matches.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	backend, err := pipeline.ParseBackend(cmd.String("backend"))
	if err != nil {
		return err
	}

	if err := r.loadSpotifyToken(ctx, cmd.String("token-file")); err != nil {
		return err
	}

	r.logger.Info("searching", "query", query, "backend", backend)

	engine := r.newEngine(r.pipelineConfig(), nil)

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
			}
		}
	}()

	result, err := engine.Search(ctx, query, backend, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(result.Matched, pretty)
	}

	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("Matches for %q", query))
	r.writePlain("Candidates: %d raw → %d filtered → %d unique\n", len(result.Raw), len(result.Filtered), len(result.Deduped))
	r.writePlain("Matched: %d\n\n", len(result.Matched))

	for i, track := range result.Matched {
		r.writePlain("%d. %s - %s", i+1, track.Artist, track.Title)
		if track.Album != "" {
			r.writePlain(" (%s)", track.Album)
		}
		if score := track.Source.Source.Score; score > 0 {
			r.writePlain(" [%.4f]", score)
		}
		r.writePlain("\n")
	}

	if len(result.Matched) == 0 {
		r.writePlain("No catalog matches found.\n")
	}

	return nil
}

// searchCommand runs the pipeline without touching any playlist.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for candidate tracks and print ranked matches",
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
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			tokenFileFlag(),
		},
		Action: r.Search,
	}
}
