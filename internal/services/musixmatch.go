// Musixmatch API implementation of [LyricsSearcher]
//
// Response types based on https://developer.musixmatch.com/documentation
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/time/rate"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

const musixmatchBaseURL = "https://api.musixmatch.com/ws/1.1"

// Musixmatch appends a non-commercial disclaimer to every lyrics body.
const lyricsDisclaimerMarker = "*******"

type mxmHeader struct {
	StatusCode int `json:"status_code"`
	Available  int `json:"available"`
}

type mxmTrack struct {
	TrackID    int    `json:"track_id"`
	TrackName  string `json:"track_name"`
	ArtistName string `json:"artist_name"`
	AlbumName  string `json:"album_name"`
	Rating     int    `json:"track_rating"`
}

type mxmSearchResponse struct {
	Message struct {
		Header mxmHeader `json:"header"`
		Body   struct {
			TrackList []struct {
				Track mxmTrack `json:"track"`
			} `json:"track_list"`
		} `json:"body"`
	} `json:"message"`
}

type mxmLyricsResponse struct {
	Message struct {
		Header mxmHeader `json:"header"`
		Body   struct {
			Lyrics struct {
				LyricsBody string `json:"lyrics_body"`
			} `json:"lyrics"`
		} `json:"body"`
	} `json:"message"`
}

// MusixmatchService implements [LyricsSearcher] over the Musixmatch REST API.
type MusixmatchService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	pageSize   int
	maxPages   int
}

// MusixmatchOption customizes a MusixmatchService.
type MusixmatchOption func(*MusixmatchService)

// WithMusixmatchBaseURL overrides the API base URL, mainly for tests.
func WithMusixmatchBaseURL(u string) MusixmatchOption {
	return func(s *MusixmatchService) { s.baseURL = u }
}

// WithMusixmatchHTTPClient overrides the HTTP client.
func WithMusixmatchHTTPClient(c *http.Client) MusixmatchOption {
	return func(s *MusixmatchService) { s.httpClient = c }
}

// WithMusixmatchPaging sets the search page size and page cap.
func WithMusixmatchPaging(pageSize, maxPages int) MusixmatchOption {
	return func(s *MusixmatchService) {
		if pageSize > 0 {
			s.pageSize = pageSize
		}
		if maxPages > 0 {
			s.maxPages = maxPages
		}
	}
}

// NewMusixmatchService creates a Musixmatch lyrics search service.
// cache may be nil, in which case responses are not cached.
func NewMusixmatchService(apiKey string, cache Cache, opts ...MusixmatchOption) (*MusixmatchService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: musixmatch api_key", shared.ErrMissingCredentials)
	}
	if cache == nil {
		cache = NopCache()
	}

	s := &MusixmatchService{
		apiKey:     apiKey,
		baseURL:    musixmatchBaseURL,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		cache:      cache,
		pageSize:   50,
		maxPages:   10,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *MusixmatchService) Name() string {
	return "Musixmatch"
}

// doRequest performs a GET against a Musixmatch endpoint, going through the
// cache. The cache key excludes the API key.
func (s *MusixmatchService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	key := "mxm:" + endpoint + ":" + slug.Make(params.Encode())

	body, err := s.cache.GetOrCompute(key, func() ([]byte, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		params.Set("apikey", s.apiKey)
		apiURL := s.baseURL + "/" + endpoint + "?" + params.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: musixmatch status %d", shared.ErrAPIRequest, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// searchPage fetches one page of track.search results.
func (s *MusixmatchService) searchPage(ctx context.Context, query string, page int) (*mxmSearchResponse, error) {
	params := url.Values{}
	params.Set("q_lyrics", query)
	params.Set("f_has_lyrics", "1")
	params.Set("s_artist_rating", "desc")
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(s.pageSize))

	var resp mxmSearchResponse
	if err := s.doRequest(ctx, "track.search", params, &resp); err != nil {
		return nil, err
	}
	if code := resp.Message.Header.StatusCode; code != http.StatusOK {
		return nil, fmt.Errorf("%w: musixmatch envelope status %d", shared.ErrAPIRequest, code)
	}
	return &resp, nil
}

// lyrics fetches the lyrics body for a track, with the trailing
// non-commercial disclaimer stripped.
func (s *MusixmatchService) lyrics(ctx context.Context, trackID int) (string, error) {
	params := url.Values{}
	params.Set("track_id", strconv.Itoa(trackID))

	var resp mxmLyricsResponse
	if err := s.doRequest(ctx, "track.lyrics.get", params, &resp); err != nil {
		return "", err
	}
	if code := resp.Message.Header.StatusCode; code != http.StatusOK {
		return "", fmt.Errorf("%w: musixmatch envelope status %d", shared.ErrAPIRequest, code)
	}

	body := resp.Message.Body.Lyrics.LyricsBody
	if idx := strings.Index(body, lyricsDisclaimerMarker); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body), nil
}

// SearchLyrics pages through track.search and fetches lyrics for every hit.
// Paging stops at the configured cap, at the last short page, or once the
// API-reported total is exhausted.
func (s *MusixmatchService) SearchLyrics(ctx context.Context, query string) ([]models.Candidate, error) {
	var cands []models.Candidate

	for page := 1; page <= s.maxPages; page++ {
		resp, err := s.searchPage(ctx, query, page)
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Message.Body.TrackList {
			track := item.Track
			body, err := s.lyrics(ctx, track.TrackID)
			if err != nil {
				return nil, err
			}

			cands = append(cands, models.Candidate{
				Title:    track.TrackName,
				Artist:   track.ArtistName,
				Album:    track.AlbumName,
				Lyrics:   body,
				SourceID: strconv.Itoa(track.TrackID),
			})
		}

		got := len(resp.Message.Body.TrackList)
		if got < s.pageSize {
			break
		}
		if available := resp.Message.Header.Available; available > 0 && len(cands) >= available {
			break
		}
	}

	return cands, nil
}
