// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for reviewing a search before
// committing it to a playlist:
//  1. [SearchView] : Monitor pipeline progress while candidates are fetched and matched
//  2. [MatchListView] : Browse the matched catalog tracks
//  3. [ConfirmView] : Confirm playlist creation
//  4. [CreateView] : Monitor playlist creation progress
//  5. [ResultView] : Display the created playlist and match metrics
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the SearchEngine, providing non-blocking status reporting during long runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
