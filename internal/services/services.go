// package services defines the collaborator interfaces around the pipeline
//
// Musixmatch (lyrics search), Spotify (track search, catalog, playlists)
package services

import (
	"context"

	"github.com/desertthunder/lyrx/internal/models"
)

// LyricsSearcher finds candidate tracks whose lyrics contain the query.
type LyricsSearcher interface {
	// SearchLyrics returns candidates with lyrics populated, in provider
	// relevance order.
	SearchLyrics(ctx context.Context, query string) ([]models.Candidate, error)

	// Name returns the provider name (e.g. "Musixmatch")
	Name() string
}

// TrackSearcher finds candidate tracks by plain metadata search.
type TrackSearcher interface {
	// SearchTracks returns candidates ordered by descending popularity.
	// Lyrics are never populated.
	SearchTracks(ctx context.Context, query string) ([]models.Candidate, error)

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// CatalogService resolves tracks and manages playlists in the target catalog.
type CatalogService interface {
	// SearchCatalog looks up catalog tracks for a title and artist, in the
	// catalog's relevance order.
	SearchCatalog(ctx context.Context, title, artist string) ([]models.MatchedTrack, error)

	// CreatePlaylist creates a playlist holding the given tracks.
	CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*models.Playlist, error)

	// FindPlaylistsByName returns the authenticated user's playlists with an
	// exactly matching name.
	FindPlaylistsByName(ctx context.Context, name string) ([]models.Playlist, error)

	// UnfollowPlaylist removes a playlist from the user's library.
	UnfollowPlaylist(ctx context.Context, playlistID string) error

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// Cache memoizes expensive computations, keyed by an opaque string. Services
// wrap provider calls in GetOrCompute; the pipeline never sees the cache.
type Cache interface {
	// GetOrCompute returns the cached value for key, or runs compute, stores
	// its result, and returns it. compute errors are returned uncached.
	GetOrCompute(key string, compute func() ([]byte, error)) ([]byte, error)
}

// nopCache computes every time.
type nopCache struct{}

func (nopCache) GetOrCompute(_ string, compute func() ([]byte, error)) ([]byte, error) {
	return compute()
}

// NopCache returns a Cache that never stores anything.
func NopCache() Cache { return nopCache{} }
