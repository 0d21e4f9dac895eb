package pipeline

import (
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Dedupe removes candidates that share an identity key with an earlier
// candidate. The key is the case-insensitive, whitespace-collapsed
// (title, artist) pair; the first occurrence wins, so dedupe after a score
// sort keeps the best-ranked duplicate.
func Dedupe(scored []models.ScoredCandidate) []models.ScoredCandidate {
	seen := make(map[string]struct{}, len(scored))
	out := make([]models.ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		key := shared.NormalizeTrackKey(sc.Title, sc.Artist)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sc)
	}
	return out
}
