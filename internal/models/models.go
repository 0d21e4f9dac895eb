// package models defines the data model for the playlist builder
package models

import "time"

// Candidate is a raw search result from a lyrics or track provider.
type Candidate struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Lyrics     string `json:"lyrics,omitempty"`
	Popularity int    `json:"popularity,omitempty"`
	SourceID   string `json:"source_id,omitempty"`
}

// ScoredCandidate pairs a candidate with its relevance score.
// Score is non-negative and deterministic for a given candidate and query.
type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// CleanedCandidate carries normalized metadata for catalog lookup alongside
// the scored candidate it was derived from. The source is never modified.
type CleanedCandidate struct {
	Title  string          `json:"title"`
	Artist string          `json:"artist"`
	Album  string          `json:"album,omitempty"`
	Source ScoredCandidate `json:"source"`
}

// MatchedTrack is a catalog-native track resolved from a cleaned candidate.
type MatchedTrack struct {
	ID         string           `json:"id"`
	URI        string           `json:"uri,omitempty"`
	Title      string           `json:"title"`
	Artist     string           `json:"artist"`
	Album      string           `json:"album,omitempty"`
	Popularity int              `json:"popularity,omitempty"`
	Source     CleanedCandidate `json:"source"`
}

// Playlist is catalog playlist metadata.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"track_count"`
	URL         string `json:"url,omitempty"`
}

// RunSummary records per-stage accounting for one pipeline run.
type RunSummary struct {
	ID            string    `json:"id"`
	Query         string    `json:"query"`
	Backend       string    `json:"backend"`
	RawCount      int       `json:"raw_count"`
	FilteredCount int       `json:"filtered_count"`
	DedupedCount  int       `json:"deduped_count"`
	MatchedCount  int       `json:"matched_count"`
	PlaylistID    string    `json:"playlist_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchRate returns the fraction of deduplicated candidates that resolved to
// a catalog track, in [0, 1].
func (r RunSummary) MatchRate() float64 {
	if r.DedupedCount == 0 {
		return 0
	}
	return float64(r.MatchedCount) / float64(r.DedupedCount)
}
