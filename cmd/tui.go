package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
	"github.com/desertthunder/lyrx/internal/ui"
)

// TUI launches the interactive interface: search, review matches, confirm creation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query must not be empty", shared.ErrMissingArgument)
	}

	backend, err := pipeline.ParseBackend(cmd.String("backend"))
	if err != nil {
		return err
	}

	if err := r.loadSpotifyToken(ctx, cmd.String("token-file")); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lyrx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := tasks.BuildOptions{
		Backend:      backend,
		PlaylistName: cmd.String("name"),
		Replace:      cmd.Bool("replace"),
	}

	engine := r.newEngine(r.pipelineConfig(), nil)

	model := ui.NewModel(ctx, engine, query, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Interactively review matches and create a playlist",
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
			&cli.BoolFlag{
				Name:  "replace",
				Usage: "Remove same-name playlists before creating",
			},
			tokenFileFlag(),
		},
		Action: r.TUI,
	}
}
