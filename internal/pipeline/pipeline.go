package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Backend identifies the kind of provider that produced the candidates.
type Backend int

const (
	// BackendLyrics marks candidates from a lyrics search: they carry lyrics
	// text and are scored and re-ranked by query relevance.
	BackendLyrics Backend = iota
	// BackendTracks marks candidates from a plain track search: no lyrics,
	// popularity ordering preserved, never scored.
	BackendTracks
)

// String returns the backend's flag-value name.
func (b Backend) String() string {
	switch b {
	case BackendLyrics:
		return "lyrics"
	case BackendTracks:
		return "track"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend converts a flag value into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lyrics":
		return BackendLyrics, nil
	case "track", "tracks":
		return BackendTracks, nil
	default:
		return 0, fmt.Errorf("%w: unknown backend %q", shared.ErrInvalidFlag, s)
	}
}

// DefaultBannedWords are markers of karaoke, tribute, and live recordings
// that have no place in a hits playlist.
var DefaultBannedWords = []string{
	"instrumental",
	"karaoke",
	"originally performed",
	"(live)",
	"(skit)",
	"live in",
	"in the style of",
	"tribute to",
	"remix",
}

// DefaultLanguages is the default allowed-language set.
var DefaultLanguages = []string{"en"}

// Config tunes the pipeline stages.
type Config struct {
	BannedWords      []string
	Languages        []string
	MatchWorkers     int
	RankBySimilarity bool
}

// DefaultPipelineConfig returns the stock configuration.
func DefaultPipelineConfig() Config {
	return Config{
		BannedWords:  DefaultBannedWords,
		Languages:    DefaultLanguages,
		MatchWorkers: 4,
	}
}

// Result carries the output of every stage of a run, so callers can report
// attrition and export intermediate listings.
type Result struct {
	Raw      []models.Candidate
	Filtered []models.Candidate
	Scored   []models.ScoredCandidate
	Deduped  []models.ScoredCandidate
	Cleaned  []models.CleanedCandidate
	Matched  []models.MatchedTrack
}

// Pipeline wires the stages to their collaborators.
type Pipeline struct {
	cfg      Config
	detector LanguageDetector
	matcher  *Matcher
	logger   *log.Logger
}

// New builds a pipeline. detector may be nil, in which case the language
// filter is skipped.
func New(cfg Config, searcher CatalogSearcher, detector LanguageDetector) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		detector: detector,
		matcher:  NewMatcher(searcher, cfg),
	}
}

// WithLogger attaches a logger; without one the pipeline runs silently.
func (p *Pipeline) WithLogger(l *log.Logger) *Pipeline {
	p.logger = l
	return p
}

// Run pushes candidates through every stage. Empty input and total attrition
// both produce an empty Matched slice and a nil error; err is non-nil only
// when a collaborator fails or ctx is canceled. Partial results are never
// returned alongside an error.
func (p *Pipeline) Run(ctx context.Context, query string, backend Backend, cands []models.Candidate) (Result, error) {
	res := Result{Raw: cands}

	res.Filtered = Filter(cands, query, backend, p.cfg, p.detector)
	p.logf("filtered candidates", "in", len(cands), "out", len(res.Filtered))

	if backend == BackendLyrics {
		res.Scored = ScoreAll(res.Filtered, query)
		SortByScore(res.Scored)
	} else {
		// track search results arrive popularity-ordered; keep that order
		res.Scored = make([]models.ScoredCandidate, len(res.Filtered))
		for i, c := range res.Filtered {
			res.Scored[i] = models.ScoredCandidate{Candidate: c}
		}
	}

	res.Deduped = Dedupe(res.Scored)
	res.Cleaned = CleanAll(res.Deduped)
	p.logf("deduplicated candidates", "in", len(res.Scored), "out", len(res.Deduped))

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	matched, err := p.matcher.MatchAll(ctx, res.Cleaned, query)
	if err != nil {
		return Result{}, fmt.Errorf("catalog matching failed: %w", err)
	}
	res.Matched = matched
	p.logf("matched candidates", "in", len(res.Cleaned), "out", len(res.Matched))

	return res, nil
}

func (p *Pipeline) logf(msg string, kv ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, kv...)
	}
}
