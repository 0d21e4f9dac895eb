// package tasks orchestrates playlist builds from a search query.
//
// The core abstraction is SearchEngine, which fetches candidates from a
// provider, runs them through the pipeline, and optionally creates a
// playlist. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// BuildOptions controls a playlist build.
type BuildOptions struct {
	Backend      pipeline.Backend // candidate source kind
	PlaylistName string           // defaults to the query
	Description  string           // defaults to a generated description
	Create       bool             // create the playlist after matching
	Replace      bool             // unfollow same-name playlists first
}

// BuildResult contains all data from a build operation.
type BuildResult struct {
	Pipeline pipeline.Result   // per-stage candidate listings
	Playlist *models.Playlist  // created playlist, nil when Create is false
	Replaced []models.Playlist // playlists removed before creation
	Summary  models.RunSummary // per-stage accounting
}

// RunRecorder persists run summaries. Recording failures are reported via
// logs, never by failing the build.
type RunRecorder interface {
	Create(summary *models.RunSummary) error
}

// SearchEngine defines playlist build operations.
type SearchEngine interface {
	// Search fetches candidates for the query and runs the pipeline without
	// touching any playlist.
	Search(ctx context.Context, query string, backend pipeline.Backend, progress chan<- ProgressUpdate) (pipeline.Result, error)

	// Build runs the full operation: fetch, pipeline, and optionally
	// playlist creation.
	Build(ctx context.Context, query string, opts BuildOptions, progress chan<- ProgressUpdate) (*BuildResult, error)
}

// PlaylistBuilder implements SearchEngine over the provider services.
type PlaylistBuilder struct {
	lyrics  services.LyricsSearcher
	tracks  services.TrackSearcher
	catalog services.CatalogService
	pipe    *pipeline.Pipeline
	runs    RunRecorder
	logger  *log.Logger
}

// NewPlaylistBuilder creates a builder. lyrics and tracks may each be nil
// when the corresponding backend is unused; runs and logger are optional.
func NewPlaylistBuilder(
	lyrics services.LyricsSearcher,
	tracks services.TrackSearcher,
	catalog services.CatalogService,
	detector pipeline.LanguageDetector,
	cfg pipeline.Config,
	runs RunRecorder,
) *PlaylistBuilder {
	return &PlaylistBuilder{
		lyrics:  lyrics,
		tracks:  tracks,
		catalog: catalog,
		pipe:    pipeline.New(cfg, catalog, detector),
		runs:    runs,
	}
}

// WithLogger attaches a logger for diagnostics.
func (b *PlaylistBuilder) WithLogger(l *log.Logger) *PlaylistBuilder {
	b.logger = l
	b.pipe.WithLogger(l)
	return b
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (b *PlaylistBuilder) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// fetch pulls raw candidates from the backend's provider.
func (b *PlaylistBuilder) fetch(ctx context.Context, query string, backend pipeline.Backend, progress chan<- ProgressUpdate) ([]models.Candidate, error) {
	switch backend {
	case pipeline.BackendLyrics:
		if b.lyrics == nil {
			return nil, fmt.Errorf("%w: lyrics provider not initialized", shared.ErrServiceUnavailable)
		}
		b.sendProgress(progress, fetchCandidatesUpdate(b.lyrics.Name(), query))
		cands, err := b.lyrics.SearchLyrics(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("lyrics search failed: %w", err)
		}
		return cands, nil
	case pipeline.BackendTracks:
		if b.tracks == nil {
			return nil, fmt.Errorf("%w: track provider not initialized", shared.ErrServiceUnavailable)
		}
		b.sendProgress(progress, fetchCandidatesUpdate(b.tracks.Name(), query))
		cands, err := b.tracks.SearchTracks(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("track search failed: %w", err)
		}
		return cands, nil
	default:
		return nil, fmt.Errorf("%w: backend %v", shared.ErrInvalidArgument, backend)
	}
}

// Search fetches candidates and runs the pipeline.
func (b *PlaylistBuilder) Search(ctx context.Context, query string, backend pipeline.Backend, progress chan<- ProgressUpdate) (pipeline.Result, error) {
	if query == "" {
		return pipeline.Result{}, fmt.Errorf("%w: query must not be empty", shared.ErrMissingArgument)
	}
	if b.catalog == nil {
		return pipeline.Result{}, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}

	cands, err := b.fetch(ctx, query, backend, progress)
	if err != nil {
		return pipeline.Result{}, err
	}
	b.sendProgress(progress, fetchedCandidatesUpdate(len(cands)))
	b.sendProgress(progress, processCandidatesUpdate(len(cands)))

	res, err := b.pipe.Run(ctx, query, backend, cands)
	if err != nil {
		return pipeline.Result{}, err
	}
	b.sendProgress(progress, matchedCandidatesUpdate(len(res.Matched), len(res.Cleaned)))

	return res, nil
}

// Build runs the full playlist build.
func (b *PlaylistBuilder) Build(ctx context.Context, query string, opts BuildOptions, progress chan<- ProgressUpdate) (*BuildResult, error) {
	res, err := b.Search(ctx, query, opts.Backend, progress)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		Pipeline: res,
		Summary: models.RunSummary{
			Query:         query,
			Backend:       opts.Backend.String(),
			RawCount:      len(res.Raw),
			FilteredCount: len(res.Filtered),
			DedupedCount:  len(res.Deduped),
			MatchedCount:  len(res.Matched),
		},
	}

	if opts.Create {
		playlist, replaced, err := b.createPlaylist(ctx, query, opts, res.Matched, progress)
		if err != nil {
			return nil, err
		}
		result.Playlist = playlist
		result.Replaced = replaced
		result.Summary.PlaylistID = playlist.ID
	}

	b.record(&result.Summary)
	return result, nil
}

// createPlaylist handles the replace-then-create sequence.
func (b *PlaylistBuilder) createPlaylist(ctx context.Context, query string, opts BuildOptions, matched []models.MatchedTrack, progress chan<- ProgressUpdate) (*models.Playlist, []models.Playlist, error) {
	if len(matched) == 0 {
		return nil, nil, shared.ErrEmptyPlaylist
	}

	name := opts.PlaylistName
	if name == "" {
		name = query
	}
	description := opts.Description
	if description == "" {
		description = fmt.Sprintf("Songs matching %q, assembled automatically; contents are not hand-picked.", query)
	}

	var replaced []models.Playlist
	if opts.Replace {
		existing, err := b.catalog.FindPlaylistsByName(ctx, name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up existing playlists: %w", err)
		}
		for i, pl := range existing {
			b.sendProgress(progress, replacePlaylistUpdate(i+1, len(existing), pl.Name))
			if err := b.catalog.UnfollowPlaylist(ctx, pl.ID); err != nil {
				return nil, nil, fmt.Errorf("failed to remove playlist %s: %w", pl.ID, err)
			}
			replaced = append(replaced, pl)
		}
	}

	uris := make([]string, len(matched))
	for i, track := range matched {
		uris[i] = track.URI
		if uris[i] == "" {
			uris[i] = track.ID
		}
	}

	b.sendProgress(progress, creatingPlaylistUpdate(name, len(uris)))
	playlist, err := b.catalog.CreatePlaylist(ctx, name, description, uris)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	b.sendProgress(progress, createdPlaylistUpdate(playlist))

	return playlist, replaced, nil
}

// record persists the run summary when a recorder is configured. Failures
// are logged and swallowed; history must not fail a finished build.
func (b *PlaylistBuilder) record(summary *models.RunSummary) {
	if b.runs == nil {
		return
	}
	if err := b.runs.Create(summary); err != nil && b.logger != nil {
		b.logger.Warn("failed to record run", "error", err)
	}
}
