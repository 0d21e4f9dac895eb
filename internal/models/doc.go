// Package models defines the domain entities for the lyrx playlist builder.
//
// The types mirror the stages of the candidate pipeline:
//
//   - [Candidate] : a raw search result from a lyrics or track provider
//   - [ScoredCandidate] : a candidate annotated with a relevance score
//   - [CleanedCandidate] : normalized metadata ready for catalog lookup
//   - [MatchedTrack] : a catalog-native track resolved from a candidate
//
// [Playlist] and [RunSummary] describe the output side: the playlist a run
// creates and the per-stage accounting recorded for it.
//
// Entities are plain values. A stage never mutates its input; each produces
// new values that reference their predecessors.
package models
