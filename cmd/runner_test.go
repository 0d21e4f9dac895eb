package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tasks"
)

// fakeEngine returns canned pipeline results for command tests.
type fakeEngine struct {
	searchResult pipeline.Result
	buildResult  *tasks.BuildResult
	err          error

	searchCalls []string
	buildCalls  []tasks.BuildOptions
}

func (f *fakeEngine) Search(ctx context.Context, query string, backend pipeline.Backend, progress chan<- tasks.ProgressUpdate) (pipeline.Result, error) {
	f.searchCalls = append(f.searchCalls, query)
	return f.searchResult, f.err
}

func (f *fakeEngine) Build(ctx context.Context, query string, opts tasks.BuildOptions, progress chan<- tasks.ProgressUpdate) (*tasks.BuildResult, error) {
	f.buildCalls = append(f.buildCalls, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.buildResult, nil
}

func matchedFixture() []models.MatchedTrack {
	return []models.MatchedTrack{
		{
			ID:     "t1",
			Title:  "Burning Down",
			Artist: "The Heat",
			Album:  "Embers",
			Source: models.CleanedCandidate{Source: models.ScoredCandidate{Score: 1.01}},
		},
		{
			ID:     "t2",
			Title:  "Cold Water",
			Artist: "River Band",
			Source: models.CleanedCandidate{Source: models.ScoredCandidate{Score: 0.004}},
		},
	}
}

func newTestApp(engine tasks.SearchEngine, output *bytes.Buffer) *cli.Command {
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Engine: engine,
		Output: output,
	})
	return &cli.Command{
		Name:     "lyrx",
		Commands: runner.register(),
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("pipelineConfig", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Search.Languages = []string{"de"}
		config.Search.BannedWords = []string{"bootleg"}
		config.Search.MatchWorkers = 7
		config.Search.RankBySimilarity = true

		runner := NewRunner(RunnerOpts{Config: config})
		cfg := runner.pipelineConfig()

		if len(cfg.Languages) != 1 || cfg.Languages[0] != "de" {
			t.Errorf("expected languages from config, got %v", cfg.Languages)
		}
		if len(cfg.BannedWords) != 1 || cfg.BannedWords[0] != "bootleg" {
			t.Errorf("expected banned words from config, got %v", cfg.BannedWords)
		}
		if cfg.MatchWorkers != 7 {
			t.Errorf("expected 7 workers, got %d", cfg.MatchWorkers)
		}
		if !cfg.RankBySimilarity {
			t.Error("expected similarity ranking enabled")
		}
	})

	t.Run("newEngine prefers injected engine", func(t *testing.T) {
		engine := &fakeEngine{}
		runner := NewRunner(RunnerOpts{Engine: engine})

		if got := runner.newEngine(pipeline.DefaultPipelineConfig(), nil); got != engine {
			t.Error("expected injected engine to take precedence")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"count": 3}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if got := output.String(); got != "{\"count\":3}\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("writeJSON pretty", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"count": 3}, true); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if !strings.Contains(output.String(), "  \"count\": 3") {
			t.Errorf("expected indented output, got %q", output.String())
		}
	})

	t.Run("writePlain and writePlainln", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlain("a %d", 1)
		runner.writePlainln("b %d", 2)

		if got := output.String(); got != "a 1\nb 2\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainHeader("Results")

		if !strings.Contains(output.String(), "Results\n") {
			t.Errorf("expected header title, got %q", output.String())
		}
	})
}

func TestTokenPersistence(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token.json")
		token := &oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(time.Hour).UTC(),
		}

		if err := saveToken(path, token); err != nil {
			t.Fatalf("saveToken failed: %v", err)
		}

		loaded, err := loadToken(path)
		if err != nil {
			t.Fatalf("loadToken failed: %v", err)
		}
		if loaded.AccessToken != "access" || loaded.RefreshToken != "refresh" {
			t.Errorf("unexpected token: %+v", loaded)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadToken(filepath.Join(t.TempDir(), "absent.json"))
		if !os.IsNotExist(err) {
			t.Errorf("expected not-exist error, got %v", err)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("search prints ranked matches", func(t *testing.T) {
		engine := &fakeEngine{
			searchResult: pipeline.Result{
				Raw:      make([]models.Candidate, 5),
				Filtered: make([]models.Candidate, 3),
				Deduped:  make([]models.ScoredCandidate, 2),
				Matched:  matchedFixture(),
			},
		}
		output := &bytes.Buffer{}
		app := newTestApp(engine, output)

		if err := app.Run(context.Background(), []string{"lyrx", "search", "fire"}); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(engine.searchCalls) != 1 || engine.searchCalls[0] != "fire" {
			t.Fatalf("expected one search call for 'fire', got %v", engine.searchCalls)
		}

		got := output.String()
		if !strings.Contains(got, "1. The Heat - Burning Down (Embers) [1.0100]") {
			t.Errorf("missing ranked line, got: %s", got)
		}
		if !strings.Contains(got, "Candidates: 5 raw → 3 filtered → 2 unique") {
			t.Errorf("missing counts, got: %s", got)
		}
	})

	t.Run("search with json flag emits JSON", func(t *testing.T) {
		engine := &fakeEngine{searchResult: pipeline.Result{Matched: matchedFixture()}}
		output := &bytes.Buffer{}
		app := newTestApp(engine, output)

		if err := app.Run(context.Background(), []string{"lyrx", "search", "--json", "fire"}); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if !strings.Contains(output.String(), `"title": "Burning Down"`) {
			t.Errorf("expected JSON output, got: %s", output.String())
		}
	})

	t.Run("search rejects unknown backend", func(t *testing.T) {
		app := newTestApp(&fakeEngine{}, &bytes.Buffer{})

		err := app.Run(context.Background(), []string{"lyrx", "search", "--backend", "vinyl", "fire"})
		if err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})

	t.Run("build prints summary and playlist", func(t *testing.T) {
		engine := &fakeEngine{
			buildResult: &tasks.BuildResult{
				Pipeline: pipeline.Result{Matched: matchedFixture()},
				Playlist: &models.Playlist{ID: "pl1", Name: "fire", TrackCount: 2, URL: "https://open.spotify.com/playlist/pl1"},
				Summary: models.RunSummary{
					Query:         "fire",
					Backend:       "lyrics",
					RawCount:      5,
					FilteredCount: 3,
					DedupedCount:  2,
					MatchedCount:  2,
				},
			},
		}
		output := &bytes.Buffer{}
		app := newTestApp(engine, output)

		if err := app.Run(context.Background(), []string{"lyrx", "build", "--create", "fire"}); err != nil {
			t.Fatalf("build failed: %v", err)
		}

		if len(engine.buildCalls) != 1 || !engine.buildCalls[0].Create {
			t.Fatalf("expected one build call with Create, got %+v", engine.buildCalls)
		}

		got := output.String()
		if !strings.Contains(got, "Matched: 2/2 (100.0%)") {
			t.Errorf("missing match rate, got: %s", got)
		}
		if !strings.Contains(got, "✓ Playlist created: fire (2 tracks)") {
			t.Errorf("missing playlist line, got: %s", got)
		}
	})

	t.Run("build with export writes result files", func(t *testing.T) {
		resultsDir := t.TempDir()
		engine := &fakeEngine{
			buildResult: &tasks.BuildResult{
				Pipeline: pipeline.Result{Matched: matchedFixture()},
				Summary:  models.RunSummary{Query: "fire", Backend: "lyrics", DedupedCount: 2, MatchedCount: 2},
			},
		}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: shared.DefaultConfig(),
			Engine: engine,
			Output: output,
		})
		runner.config.Results.Dir = resultsDir
		app := &cli.Command{Name: "lyrx", Commands: runner.register()}

		if err := app.Run(context.Background(), []string{"lyrx", "build", "--export", "csv", "fire"}); err != nil {
			t.Fatalf("build failed: %v", err)
		}

		for _, name := range []string{"raw.json", "filtered.json", "final.json", "tracks.csv", "summary.json"} {
			if _, err := os.Stat(filepath.Join(resultsDir, "fire", name)); err != nil {
				t.Errorf("expected %s to exist: %v", name, err)
			}
		}
	})

	t.Run("auth status reports missing token", func(t *testing.T) {
		output := &bytes.Buffer{}
		app := newTestApp(&fakeEngine{}, output)
		tokenPath := filepath.Join(t.TempDir(), "token.json")

		if err := app.Run(context.Background(), []string{"lyrx", "auth", "status", "--token-file", tokenPath}); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}

		if !strings.Contains(output.String(), "Not authenticated") {
			t.Errorf("expected missing-token notice, got: %s", output.String())
		}
	})

	t.Run("cache stats without repository fails", func(t *testing.T) {
		app := newTestApp(&fakeEngine{}, &bytes.Buffer{})

		err := app.Run(context.Background(), []string{"lyrx", "cache", "stats"})
		if err == nil {
			t.Fatal("expected error without cache repository")
		}
	})

	t.Run("export without query lists runs", func(t *testing.T) {
		app := newTestApp(&fakeEngine{}, &bytes.Buffer{})

		err := app.Run(context.Background(), []string{"lyrx", "export"})
		if err == nil {
			t.Fatal("expected error without run repository")
		}
	})
}
