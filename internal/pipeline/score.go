package pipeline

import (
	"sort"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
)

// Score computes a candidate's relevance to the query: a bonus of 1.0 when
// the normalized title contains the query, plus the density of non-overlapping
// query occurrences in the lyrics. Candidates without lyrics score on the
// title alone. The result is deterministic and never negative.
func Score(c models.Candidate, query string) float64 {
	q := strings.ToLower(Normalize(query))

	var score float64
	if q != "" && strings.Contains(strings.ToLower(Normalize(c.Title)), q) {
		score += 1.0
	}
	if len(c.Lyrics) > 0 && q != "" {
		occurrences := strings.Count(strings.ToLower(c.Lyrics), q)
		score += float64(occurrences) / float64(len(c.Lyrics))
	}
	return score
}

// ScoreAll scores every candidate against the query, preserving input order.
func ScoreAll(cands []models.Candidate, query string) []models.ScoredCandidate {
	scored := make([]models.ScoredCandidate, len(cands))
	for i, c := range cands {
		scored[i] = models.ScoredCandidate{Candidate: c, Score: Score(c, query)}
	}
	return scored
}

// SortByScore orders candidates by descending score. The sort is stable, so
// candidates with equal scores keep their relative input order.
func SortByScore(scored []models.ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}
