package pipeline

import "github.com/desertthunder/lyrx/internal/models"

// Clean rewrites a scored candidate's metadata for catalog lookup. Titles get
// the full normalization treatment; artist and album names only lose bracket
// groups and stray whitespace, since a featured-artist marker in an artist
// field is part of the name. The source candidate is carried along unchanged.
func Clean(sc models.ScoredCandidate) models.CleanedCandidate {
	return models.CleanedCandidate{
		Title:  Normalize(sc.Title),
		Artist: collapseSpace(stripBracketGroups(sc.Artist)),
		Album:  collapseSpace(stripBracketGroups(sc.Album)),
		Source: sc,
	}
}

// CleanAll cleans candidates in order.
func CleanAll(scored []models.ScoredCandidate) []models.CleanedCandidate {
	cleaned := make([]models.CleanedCandidate, len(scored))
	for i, sc := range scored {
		cleaned[i] = Clean(sc)
	}
	return cleaned
}
