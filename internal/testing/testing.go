// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
)

// MockLyricsSearcher is a test double for services.LyricsSearcher
type MockLyricsSearcher struct {
	Candidates []models.Candidate
	Err        error
	Calls      int
}

func (m *MockLyricsSearcher) SearchLyrics(context.Context, string) ([]models.Candidate, error) {
	m.Calls++
	return m.Candidates, m.Err
}

func (m *MockLyricsSearcher) Name() string { return "mock-lyrics" }

// MockTrackSearcher is a test double for services.TrackSearcher
type MockTrackSearcher struct {
	Candidates []models.Candidate
	Err        error
	Calls      int
}

func (m *MockTrackSearcher) SearchTracks(context.Context, string) ([]models.Candidate, error) {
	m.Calls++
	return m.Candidates, m.Err
}

func (m *MockTrackSearcher) Name() string { return "mock-tracks" }

// MockCatalog is a test double for services.CatalogService. Catalog results
// are keyed by title.
type MockCatalog struct {
	Results     map[string][]models.MatchedTrack
	SearchErr   error
	CreateErr   error
	Existing    []models.Playlist
	Created     []models.Playlist
	Unfollowed  []string
	CreateCalls int
}

func (m *MockCatalog) SearchCatalog(_ context.Context, title, _ string) ([]models.MatchedTrack, error) {
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Results[title], nil
}

func (m *MockCatalog) CreatePlaylist(_ context.Context, name, description string, trackURIs []string) (*models.Playlist, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	p := models.Playlist{ID: "playlist-1", Name: name, Description: description, TrackCount: len(trackURIs)}
	m.Created = append(m.Created, p)
	return &p, nil
}

func (m *MockCatalog) FindPlaylistsByName(_ context.Context, name string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, p := range m.Existing {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockCatalog) UnfollowPlaylist(_ context.Context, playlistID string) error {
	m.Unfollowed = append(m.Unfollowed, playlistID)
	return nil
}

func (m *MockCatalog) Name() string { return "mock-catalog" }

// MockDetector is a test double for the pipeline's language detector.
type MockDetector struct {
	Code     string
	Reliable bool
}

func (m MockDetector) Detect(string) (string, bool) { return m.Code, m.Reliable }

// MemoryCache is an in-memory services.Cache recording hit/miss counts.
type MemoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	Hits   int
	Misses int
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{values: make(map[string][]byte)}
}

func (c *MemoryCache) GetOrCompute(key string, compute func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.Hits++
		c.mu.Unlock()
		return v, nil
	}
	c.Misses++
	c.mu.Unlock()

	v, err := compute()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.values[key] = v
	c.mu.Unlock()
	return v, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
