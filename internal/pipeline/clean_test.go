package pipeline

import (
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
)

func TestClean(t *testing.T) {
	t.Run("title gets full normalization", func(t *testing.T) {
		sc := models.ScoredCandidate{
			Candidate: models.Candidate{
				Title:  "Song Title (Remastered) feat. Someone",
				Artist: "Artist",
			},
			Score: 1.5,
		}

		got := Clean(sc)
		if got.Title != "Song Title" {
			t.Errorf("cleaned title = %q, want %q", got.Title, "Song Title")
		}
	})

	t.Run("artist keeps feat marker", func(t *testing.T) {
		sc := models.ScoredCandidate{
			Candidate: models.Candidate{
				Title:  "Song",
				Artist: "DJ Ft. Worth (Official)",
				Album:  "Album  [Deluxe]",
			},
		}

		got := Clean(sc)
		if got.Artist != "DJ Ft. Worth" {
			t.Errorf("cleaned artist = %q, want %q", got.Artist, "DJ Ft. Worth")
		}
		if got.Album != "Album" {
			t.Errorf("cleaned album = %q, want %q", got.Album, "Album")
		}
	})

	t.Run("source carried unchanged", func(t *testing.T) {
		sc := models.ScoredCandidate{
			Candidate: models.Candidate{Title: "Raw (Live)", Artist: "A", Lyrics: "words"},
			Score:     0.25,
		}

		got := Clean(sc)
		if got.Source.Title != "Raw (Live)" {
			t.Errorf("source title mutated: %q", got.Source.Title)
		}
		if got.Source.Score != 0.25 {
			t.Errorf("source score mutated: %v", got.Source.Score)
		}
	})
}
