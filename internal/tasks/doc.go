// Package tasks orchestrates playlist builds with real-time progress reporting.
//
// # Core Operations
//
// The [SearchEngine] interface defines two operations:
//
//  1. [SearchEngine.Search] : candidate search and ranking
//     - Fetches raw candidates from the lyrics or track provider
//     - Runs the candidate pipeline (filter, score, dedupe, clean, match)
//     - Returns every stage's listing for display or export
//
//  2. [SearchEngine.Build] : full playlist build
//     - Everything Search does, plus optional playlist creation
//     - With Replace set, same-name playlists are removed first
//     - Records a run summary when a [RunRecorder] is configured
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default to
// prevent blocking.
//
// # Error Semantics
//
// Candidate attrition is never an error: a build that matches nothing
// succeeds with an empty track list. The exception is playlist creation,
// which refuses to create an empty playlist. Provider failures always
// propagate.
package tasks
