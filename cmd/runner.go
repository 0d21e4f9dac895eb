package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	spotify  *services.SpotifyService
	lyrics   services.LyricsSearcher
	tracks   services.TrackSearcher
	catalog  services.CatalogService
	detector pipeline.LanguageDetector
	cache    *repositories.CacheRepository
	runs     *repositories.RunRepository
	engine   tasks.SearchEngine
	logger   *log.Logger
	output   io.Writer

	// lyricsFactory rebuilds the lyrics provider with different paging,
	// for the --max-pages flag. Nil when the provider is injected directly.
	lyricsFactory func(pageSize, maxPages int) (services.LyricsSearcher, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Spotify  *services.SpotifyService
	Lyrics   services.LyricsSearcher
	Tracks   services.TrackSearcher
	Catalog  services.CatalogService
	Detector pipeline.LanguageDetector
	Cache    *repositories.CacheRepository
	Runs     *repositories.RunRepository
	Engine   tasks.SearchEngine
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		spotify:  opts.Spotify,
		lyrics:   opts.Lyrics,
		tracks:   opts.Tracks,
		catalog:  opts.Catalog,
		detector: opts.Detector,
		cache:    opts.Cache,
		runs:     opts.Runs,
		engine:   opts.Engine,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// pipelineConfig derives the pipeline configuration from the loaded config.
func (r *Runner) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultPipelineConfig()
	if len(r.config.Search.Languages) > 0 {
		cfg.Languages = r.config.Search.Languages
	}
	if len(r.config.Search.BannedWords) > 0 {
		cfg.BannedWords = r.config.Search.BannedWords
	}
	if r.config.Search.MatchWorkers > 0 {
		cfg.MatchWorkers = r.config.Search.MatchWorkers
	}
	cfg.RankBySimilarity = r.config.Search.RankBySimilarity
	return cfg
}

// newEngine builds a search engine over the runner's providers. An injected
// engine takes precedence, so tests can substitute the whole orchestration.
func (r *Runner) newEngine(cfg pipeline.Config, lyrics services.LyricsSearcher) tasks.SearchEngine {
	if r.engine != nil {
		return r.engine
	}
	if lyrics == nil {
		lyrics = r.lyrics
	}
	return tasks.NewPlaylistBuilder(lyrics, r.tracks, r.catalog, r.detector, cfg, r.runs).
		WithLogger(r.logger)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, buildCommand, cacheCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
