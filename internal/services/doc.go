// Package services implements the provider collaborators the pipeline runs
// against: lyrics search, track search, catalog lookup, playlist creation,
// and language identification.
//
// # Interfaces
//
// [LyricsSearcher] and [TrackSearcher] produce raw candidates for the two
// backend kinds. [CatalogService] resolves cleaned candidates to catalog
// tracks and manages playlists. [Cache] memoizes provider responses so
// repeated runs of the same query stay cheap; services wrap their HTTP calls
// in GetOrCompute and callers inject a real cache or [NopCache].
//
// # Musixmatch Implementation
//
// [MusixmatchService] implements LyricsSearcher over the Musixmatch REST API:
// a paginated track.search by lyrics content, then track.lyrics.get for each
// hit. Musixmatch wraps every response in a message envelope whose header
// carries the real status code; a 200 transport status with a failing
// envelope is still an error.
//
// # Spotify Implementation
//
// [SpotifyService] implements TrackSearcher and CatalogService using OAuth2
// with automatic token refresh. Playlist creation adds tracks in chunks of
// 100, the API's per-request ceiling.
//
// Both HTTP services carry a rate limiter; retry and backoff concerns live
// here, never in the pipeline.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token present
//   - [shared.ErrAPIRequest] : HTTP request or envelope failure
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services
