package pipeline

import (
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
)

// LanguageDetector identifies the language of a piece of text. The code is an
// ISO 639-1 identifier; reliable reports whether the classifier is confident
// enough for the result to be acted on.
type LanguageDetector interface {
	Detect(text string) (code string, reliable bool)
}

// Filter drops candidates that cannot belong in the playlist. Survivors keep
// their input order. Rejection is silent; a candidate list that filters down
// to nothing is not an error.
//
// Rules applied, in order:
//   - any banned word appearing in the title, artist, or album
//   - lyrics in a language outside the allowed set (lyrics backend only,
//     skipped when the candidate has no lyrics or detection is unreliable)
//   - lyrics that do not actually contain the query (lyrics backend only)
//   - an artist name containing the query, which signals a tribute or cover
//     act rather than a hit
func Filter(cands []models.Candidate, query string, backend Backend, cfg Config, detector LanguageDetector) []models.Candidate {
	q := strings.ToLower(query)
	banned := make([]string, len(cfg.BannedWords))
	for i, w := range cfg.BannedWords {
		banned[i] = strings.ToLower(w)
	}

	survivors := make([]models.Candidate, 0, len(cands))
	for _, c := range cands {
		if containsAny(c, banned) {
			continue
		}
		if backend == BackendLyrics {
			if !languageAllowed(c.Lyrics, cfg.Languages, detector) {
				continue
			}
			if !strings.Contains(strings.ToLower(c.Lyrics), q) {
				continue
			}
		}
		if strings.Contains(strings.ToLower(c.Artist), q) {
			continue
		}
		survivors = append(survivors, c)
	}
	return survivors
}

// containsAny reports whether any banned word occurs in the candidate's
// title, artist, or album, ignoring case.
func containsAny(c models.Candidate, banned []string) bool {
	fields := []string{
		strings.ToLower(c.Title),
		strings.ToLower(c.Artist),
		strings.ToLower(c.Album),
	}
	for _, w := range banned {
		if w == "" {
			continue
		}
		for _, f := range fields {
			if strings.Contains(f, w) {
				return true
			}
		}
	}
	return false
}

// languageAllowed checks detected lyrics language against the allowed set.
// Missing lyrics, an empty allowed set, and unreliable detection all pass.
func languageAllowed(lyrics string, allowed []string, detector LanguageDetector) bool {
	if lyrics == "" || len(allowed) == 0 || detector == nil {
		return true
	}
	code, reliable := detector.Detect(lyrics)
	if !reliable {
		return true
	}
	for _, lang := range allowed {
		if strings.EqualFold(lang, code) {
			return true
		}
	}
	return false
}
