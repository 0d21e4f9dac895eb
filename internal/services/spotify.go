// Spotify API implementation of [TrackSearcher] and [CatalogService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify rejects playlist add requests with more than 100 URIs.
	spotifyAddChunkSize = 100

	searchLimit = 50
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

type spotifyOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type spotifyPlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Owner       spotifyOwner          `json:"owner"`
	Public      bool                  `json:"public"`
	Tracks      spotifyPlaylistTracks `json:"tracks"`
	URI         string                `json:"uri"`
	ExternalURL struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type spotifyPaginatedPlaylists struct {
	Items []SpotifyPlaylist `json:"items"`
	Total int               `json:"total"`
	Next  *string           `json:"next"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// SpotifyService implements [TrackSearcher] and [CatalogService] for the
// Spotify Web API. Uses [oauth2] for authentication; the oauth2 client
// refreshes expired tokens transparently.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	baseURL    string
	userID     string
}

// SpotifyOption customizes a SpotifyService.
type SpotifyOption func(*SpotifyService)

// WithSpotifyBaseURL overrides the API base URL, mainly for tests.
func WithSpotifyBaseURL(u string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = u }
}

// WithSpotifyHTTPClient overrides the HTTP client, bypassing oauth2 client
// construction.
func WithSpotifyHTTPClient(c *http.Client) SpotifyOption {
	return func(s *SpotifyService) { s.httpClient = c }
}

// NewSpotifyService creates a Spotify service with the given OAuth2
// credentials. cache may be nil, in which case searches are not cached.
func NewSpotifyService(cfg shared.SpotifyConfig, cache Cache, opts ...SpotifyOption) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}
	if cache == nil {
		cache = NopCache()
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	s := &SpotifyService{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		cache:   cache,
		baseURL: spotifyBaseURL,
		userID:  cfg.UserID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token and installs it.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	s.SetToken(ctx, token)
	return token, nil
}

// SetToken installs a previously obtained token.
func (s *SpotifyService) SetToken(ctx context.Context, token *oauth2.Token) {
	s.token = token
	if s.httpClient == nil {
		s.httpClient = s.config.Client(ctx, token)
	}
}

// Token returns the current token, or nil when unauthenticated.
func (s *SpotifyService) Token() *oauth2.Token {
	return s.token
}

// doRequest performs an authenticated HTTP request against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call SetToken or Exchange first", shared.ErrNotAuthenticated)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrPlaylistNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// search performs a cached track search with the given query string.
func (s *SpotifyService) search(ctx context.Context, query string) (*spotifySearchResponse, error) {
	endpoint := fmt.Sprintf("/search?type=track&limit=%d&q=%s", searchLimit, url.QueryEscape(query))

	body, err := s.cache.GetOrCompute("spotify:search:"+query, func() ([]byte, error) {
		var raw json.RawMessage
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	var resp spotifySearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

func toMatchedTrack(t SpotifyTrack) models.MatchedTrack {
	track := models.MatchedTrack{
		ID:         t.ID,
		URI:        t.URI,
		Title:      t.Name,
		Album:      t.Album.Name,
		Popularity: t.Popularity,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

// SearchTracks implements [TrackSearcher]: a plain metadata search returning
// candidates ordered by descending popularity.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string) ([]models.Candidate, error) {
	resp, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]SpotifyTrack, len(resp.Tracks.Items))
	copy(items, resp.Tracks.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Popularity > items[j].Popularity
	})

	cands := make([]models.Candidate, 0, len(items))
	for _, t := range items {
		c := models.Candidate{
			Title:      t.Name,
			Album:      t.Album.Name,
			Popularity: t.Popularity,
			SourceID:   t.ID,
		}
		if len(t.Artists) > 0 {
			c.Artist = t.Artists[0].Name
		}
		cands = append(cands, c)
	}
	return cands, nil
}

// SearchCatalog implements [CatalogService] lookup; results keep Spotify's
// relevance order.
func (s *SpotifyService) SearchCatalog(ctx context.Context, title, artist string) ([]models.MatchedTrack, error) {
	query := title
	if artist != "" {
		query = artist + " " + title
	}

	resp, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.MatchedTrack, 0, len(resp.Tracks.Items))
	for _, t := range resp.Tracks.Items {
		tracks = append(tracks, toMatchedTrack(t))
	}
	return tracks, nil
}

// UserProfile retrieves the authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// resolveUserID falls back to the profile endpoint when the configured user
// ID is empty.
func (s *SpotifyService) resolveUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.UserProfile(ctx)
	if err != nil {
		return "", err
	}
	s.userID = user.ID
	return s.userID, nil
}

// CreatePlaylist creates a private playlist and adds the tracks in chunks.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, trackURIs []string) (*models.Playlist, error) {
	if len(trackURIs) == 0 {
		return nil, shared.ErrEmptyPlaylist
	}

	userID, err := s.resolveUserID(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"name":        name,
		"description": description,
		"public":      false,
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, payload, &created); err != nil {
		return nil, err
	}

	for start := 0; start < len(trackURIs); start += spotifyAddChunkSize {
		end := start + spotifyAddChunkSize
		if end > len(trackURIs) {
			end = len(trackURIs)
		}

		addEndpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(created.ID))
		body := map[string]any{"uris": trackURIs[start:end]}
		if err := s.doRequest(ctx, http.MethodPost, addEndpoint, body, nil); err != nil {
			return nil, fmt.Errorf("failed to add tracks to playlist %s: %w", created.ID, err)
		}
	}

	return &models.Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		TrackCount:  len(trackURIs),
		URL:         created.ExternalURL.Spotify,
	}, nil
}

// FindPlaylistsByName pages through the user's playlists collecting exact
// name matches.
func (s *SpotifyService) FindPlaylistsByName(ctx context.Context, name string) ([]models.Playlist, error) {
	var matches []models.Playlist
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var page spotifyPaginatedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, p := range page.Items {
			if p.Name == name {
				matches = append(matches, models.Playlist{
					ID:          p.ID,
					Name:        p.Name,
					Description: p.Description,
					TrackCount:  p.Tracks.Total,
					URL:         p.ExternalURL.Spotify,
				})
			}
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return matches, nil
}

// UnfollowPlaylist removes a playlist from the user's library. Spotify has no
// hard delete; unfollowing an owned playlist is its delete.
func (s *SpotifyService) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodDelete, endpoint, nil, nil)
}
