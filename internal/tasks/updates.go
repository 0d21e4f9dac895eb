package tasks

import (
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchCandidates Phase = iota
	ProcessCandidates
	MatchCandidates
	ReplacePlaylists
	CreatePlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchCandidates:
		return "fetch_candidates"
	case ProcessCandidates:
		return "process_candidates"
	case MatchCandidates:
		return "match_candidates"
	case ReplacePlaylists:
		return "replace_playlists"
	case CreatePlaylist:
		return "create_playlist"
	default:
		return ""
	}
}

func fetchCandidatesUpdate(provider, query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Searching %s for %q...", provider, query),
	}
}

func fetchedCandidatesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d candidates", count),
	}
}

func processCandidatesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ProcessCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Filtering and ranking %d candidates...", count),
	}
}

func matchedCandidatesUpdate(matched, candidates int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchCandidates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Matched %d of %d candidates", matched, candidates),
	}
}

func replacePlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReplacePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Removing existing playlist %q...", name),
	}
}

func creatingPlaylistUpdate(name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q with %d tracks...", name, tracks),
	}
}

func createdPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}
