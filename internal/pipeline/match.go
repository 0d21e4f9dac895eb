package pipeline

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/arunsworld/nursery"

	"github.com/desertthunder/lyrx/internal/models"
)

// CatalogSearcher looks up tracks in the target catalog. Results are expected
// in the catalog's own relevance order; the matcher leans on that ordering
// when picking a result.
type CatalogSearcher interface {
	SearchCatalog(ctx context.Context, title, artist string) ([]models.MatchedTrack, error)
}

// Matcher resolves cleaned candidates against a catalog.
type Matcher struct {
	searcher CatalogSearcher
	cfg      Config
}

// NewMatcher builds a matcher over the given catalog searcher.
func NewMatcher(searcher CatalogSearcher, cfg Config) *Matcher {
	return &Matcher{searcher: searcher, cfg: cfg}
}

// Match resolves one cleaned candidate to a catalog track. Catalog results go
// through the same banned-word and artist checks as the original candidates;
// a catalog row for a karaoke cover must not slip in just because the search
// found it. The first acceptable result wins unless similarity ranking is
// enabled, in which case the acceptable result whose normalized title is
// closest to the candidate's wins (ties keep catalog order).
//
// No acceptable result means the candidate is dropped: ok is false and err is
// nil. err is non-nil only when the catalog itself fails.
func (m *Matcher) Match(ctx context.Context, cc models.CleanedCandidate, query string) (models.MatchedTrack, bool, error) {
	results, err := m.searcher.SearchCatalog(ctx, cc.Title, cc.Artist)
	if err != nil {
		return models.MatchedTrack{}, false, err
	}

	acceptable := make([]models.MatchedTrack, 0, len(results))
	for _, track := range results {
		if m.rejectCatalogTrack(track, query) {
			continue
		}
		acceptable = append(acceptable, track)
	}
	if len(acceptable) == 0 {
		return models.MatchedTrack{}, false, nil
	}

	best := acceptable[0]
	if m.cfg.RankBySimilarity {
		best = closestByTitle(acceptable, cc.Title)
	}
	best.Source = cc
	return best, true, nil
}

// rejectCatalogTrack re-applies the filter rules that make sense for catalog
// rows: banned words anywhere in the metadata, and the query appearing in the
// artist name.
func (m *Matcher) rejectCatalogTrack(track models.MatchedTrack, query string) bool {
	c := models.Candidate{Title: track.Title, Artist: track.Artist, Album: track.Album}
	banned := make([]string, len(m.cfg.BannedWords))
	for i, w := range m.cfg.BannedWords {
		banned[i] = strings.ToLower(w)
	}
	if containsAny(c, banned) {
		return true
	}
	return strings.Contains(strings.ToLower(track.Artist), strings.ToLower(query))
}

// closestByTitle picks the track whose normalized title has the smallest edit
// distance to the wanted title. Earlier tracks win ties.
func closestByTitle(tracks []models.MatchedTrack, title string) models.MatchedTrack {
	want := strings.ToLower(Normalize(title))
	best := tracks[0]
	bestDist := levenshtein.ComputeDistance(want, strings.ToLower(Normalize(best.Title)))
	for _, track := range tracks[1:] {
		d := levenshtein.ComputeDistance(want, strings.ToLower(Normalize(track.Title)))
		if d < bestDist {
			best, bestDist = track, d
		}
	}
	return best
}

// MatchAll resolves every candidate, fanning lookups across a bounded pool of
// workers. Output order follows input order, not completion order.
// Unmatched candidates vanish from the output. A canceled context discards
// all partial results.
func (m *Matcher) MatchAll(ctx context.Context, cleaned []models.CleanedCandidate, query string) ([]models.MatchedTrack, error) {
	if len(cleaned) == 0 {
		return []models.MatchedTrack{}, nil
	}

	workers := m.cfg.MatchWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(cleaned) {
		workers = len(cleaned)
	}

	jobs := make(chan int, len(cleaned))
	for i := range cleaned {
		jobs <- i
	}
	close(jobs)

	// each slot is written by exactly one worker
	matched := make([]*models.MatchedTrack, len(cleaned))

	worker := func(ctx context.Context, errs chan error) {
		for i := range jobs {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			default:
			}
			track, ok, err := m.Match(ctx, cleaned[i], query)
			if err != nil {
				errs <- err
				return
			}
			if ok {
				matched[i] = &track
			}
		}
	}

	pool := make([]nursery.ConcurrentJob, workers)
	for i := range pool {
		pool[i] = worker
	}
	if err := nursery.RunConcurrentlyWithContext(ctx, pool...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.MatchedTrack, 0, len(cleaned))
	for _, t := range matched {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, nil
}
