package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
)

type fakeCatalog struct {
	mu      sync.Mutex
	results map[string][]models.MatchedTrack
	err     error
	calls   int
}

func (f *fakeCatalog) SearchCatalog(_ context.Context, title, _ string) ([]models.MatchedTrack, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[title], nil
}

func cleaned(title, artist string) models.CleanedCandidate {
	return models.CleanedCandidate{
		Title:  title,
		Artist: artist,
		Source: models.ScoredCandidate{Candidate: models.Candidate{Title: title, Artist: artist}},
	}
}

func TestMatcherMatch(t *testing.T) {
	cfg := DefaultPipelineConfig()

	t.Run("first acceptable result wins", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.MatchedTrack{
			"Fire": {
				{ID: "1", Title: "Fire", Artist: "Band"},
				{ID: "2", Title: "Fire", Artist: "Other Band"},
			},
		}}

		m := NewMatcher(catalog, cfg)
		track, ok, err := m.Match(context.Background(), cleaned("Fire", "Band"), "fire")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || track.ID != "1" {
			t.Errorf("expected track 1, got ok=%v track=%+v", ok, track)
		}
		if track.Source.Title != "Fire" {
			t.Errorf("expected source candidate attached, got %+v", track.Source)
		}
	})

	t.Run("banned catalog rows skipped", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.MatchedTrack{
			"Fire": {
				{ID: "1", Title: "Fire (Karaoke Version)", Artist: "Band"},
				{ID: "2", Title: "Fire", Artist: "Fire Tribute Ensemble"},
				{ID: "3", Title: "Fire", Artist: "Band"},
			},
		}}

		m := NewMatcher(catalog, cfg)
		track, ok, err := m.Match(context.Background(), cleaned("Fire", "Band"), "fire")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok || track.ID != "3" {
			t.Errorf("expected track 3, got ok=%v track=%+v", ok, track)
		}
	})

	t.Run("no acceptable result drops candidate without error", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.MatchedTrack{}}

		m := NewMatcher(catalog, cfg)
		_, ok, err := m.Match(context.Background(), cleaned("Fire", "Band"), "fire")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected no match")
		}
	})

	t.Run("similarity ranking picks closest title", func(t *testing.T) {
		simCfg := cfg
		simCfg.RankBySimilarity = true

		catalog := &fakeCatalog{results: map[string][]models.MatchedTrack{
			"Fire": {
				{ID: "1", Title: "Fireworks Display", Artist: "Band"},
				{ID: "2", Title: "Fire", Artist: "Band"},
			},
		}}

		m := NewMatcher(catalog, simCfg)
		track, ok, _ := m.Match(context.Background(), cleaned("Fire", "Band"), "fire")
		if !ok || track.ID != "2" {
			t.Errorf("expected closest title track 2, got ok=%v track=%+v", ok, track)
		}
	})

	t.Run("catalog failure propagates", func(t *testing.T) {
		catalog := &fakeCatalog{err: errors.New("boom")}

		m := NewMatcher(catalog, cfg)
		_, _, err := m.Match(context.Background(), cleaned("Fire", "Band"), "fire")
		if err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestMatcherMatchAll(t *testing.T) {
	cfg := DefaultPipelineConfig()

	t.Run("output follows input order", func(t *testing.T) {
		results := make(map[string][]models.MatchedTrack)
		candidates := make([]models.CleanedCandidate, 20)
		for i := range candidates {
			title := fmt.Sprintf("Track %02d", i)
			candidates[i] = cleaned(title, "Band")
			results[title] = []models.MatchedTrack{{ID: fmt.Sprintf("id-%02d", i), Title: title, Artist: "Band"}}
		}
		catalog := &fakeCatalog{results: results}

		m := NewMatcher(catalog, cfg)
		matched, err := m.MatchAll(context.Background(), candidates, "fire")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(matched) != len(candidates) {
			t.Fatalf("expected %d matches, got %d", len(candidates), len(matched))
		}
		for i, track := range matched {
			if want := fmt.Sprintf("id-%02d", i); track.ID != want {
				t.Errorf("position %d: got %s, want %s", i, track.ID, want)
			}
		}
	})

	t.Run("unmatched candidates vanish", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.MatchedTrack{
			"A": {{ID: "a", Title: "A", Artist: "Band"}},
			"C": {{ID: "c", Title: "C", Artist: "Band"}},
		}}

		m := NewMatcher(catalog, cfg)
		matched, err := m.MatchAll(context.Background(), []models.CleanedCandidate{
			cleaned("A", "Band"), cleaned("B", "Band"), cleaned("C", "Band"),
		}, "fire")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(matched) != 2 || matched[0].ID != "a" || matched[1].ID != "c" {
			t.Errorf("expected [a c], got %+v", matched)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		m := NewMatcher(&fakeCatalog{}, cfg)
		matched, err := m.MatchAll(context.Background(), nil, "fire")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(matched) != 0 {
			t.Errorf("expected no matches, got %+v", matched)
		}
	})

	t.Run("catalog failure discards partial results", func(t *testing.T) {
		catalog := &fakeCatalog{err: errors.New("boom")}

		m := NewMatcher(catalog, cfg)
		matched, err := m.MatchAll(context.Background(), []models.CleanedCandidate{
			cleaned("A", "Band"), cleaned("B", "Band"),
		}, "fire")
		if err == nil {
			t.Fatal("expected error")
		}
		if matched != nil {
			t.Errorf("expected nil results on failure, got %+v", matched)
		}
	})

	t.Run("canceled context discards partial results", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		catalog := &fakeCatalog{results: map[string][]models.MatchedTrack{
			"A": {{ID: "a", Title: "A", Artist: "Band"}},
		}}

		m := NewMatcher(catalog, cfg)
		matched, err := m.MatchAll(ctx, []models.CleanedCandidate{cleaned("A", "Band")}, "fire")
		if err == nil {
			t.Fatal("expected context error")
		}
		if matched != nil {
			t.Errorf("expected nil results on cancellation, got %+v", matched)
		}
	})
}
