// package formatter provides functions to export matched tracks and run
// results to various formats (CSV, Markdown, plain text, JSON stage dumps)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gosimple/slug"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/pipeline"
	"github.com/desertthunder/lyrx/internal/shared"
)

// ExportToCSV converts matched tracks to CSV format with columns: ID, Title, Artist, Album, Score, Popularity
func ExportToCSV(tracks []models.MatchedTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Score", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.FormatFloat(track.Source.Source.Score, 'f', 4, 64),
			strconv.Itoa(track.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a run summary and its matched tracks to Markdown format
func ExportToMarkdown(summary models.RunSummary, tracks []models.MatchedTrack) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", summary.Query))

	buf.WriteString(fmt.Sprintf("**Backend**: %s\n", summary.Backend))
	buf.WriteString(fmt.Sprintf("**Candidates**: %d raw, %d filtered, %d deduplicated\n", summary.RawCount, summary.FilteredCount, summary.DedupedCount))
	buf.WriteString(fmt.Sprintf("**Matched**: %d (%.0f%%)\n", summary.MatchedCount, summary.MatchRate()*100))
	if summary.PlaylistID != "" {
		buf.WriteString(fmt.Sprintf("**Playlist**: %s\n", summary.PlaylistID))
	}
	buf.WriteString("\n## Tracks\n\n")

	for i, track := range tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%.4f]\n", i+1, track.Artist, track.Title, albumPart, track.Source.Source.Score))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a run summary and its matched tracks to plain text format
func ExportToText(summary models.RunSummary, tracks []models.MatchedTrack) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Query: %s\n", summary.Query))
	buf.WriteString(fmt.Sprintf("Backend: %s\n", summary.Backend))
	buf.WriteString(fmt.Sprintf("Matched: %d of %d\n\n", summary.MatchedCount, summary.DedupedCount))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ToSummaryJSON generates a JSON representation of a run summary (without tracks)
func ToSummaryJSON(summary models.RunSummary) ([]byte, error) {
	return shared.MarshalJSON(summary, true)
}

// ExportResult contains the paths of files created by WriteExport
type ExportResult struct {
	Directory string
	Files     []string
}

// WriteExport writes a run's matched tracks and summary to a per-query
// directory under outputDir in the requested format ("csv", "markdown" or
// "text"), alongside a summary JSON file.
//
// The directory name is a slug of the query, so repeated runs of the same
// query overwrite their previous export.
func WriteExport(summary models.RunSummary, tracks []models.MatchedTrack, outputDir, format string) (*ExportResult, error) {
	dir := filepath.Join(outputDir, slug.Make(summary.Query))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &ExportResult{Directory: dir}

	var data []byte
	var name string
	var err error
	switch format {
	case "csv", "":
		data, err = ExportToCSV(tracks)
		name = "tracks.csv"
	case "markdown", "md":
		data, err = ExportToMarkdown(summary, tracks)
		name = "README.md"
	case "text", "txt":
		data, err = ExportToText(summary, tracks)
		name = "tracks.txt"
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	file := filepath.Join(dir, name)
	if err := os.WriteFile(file, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}
	result.Files = append(result.Files, file)

	summaryJSON, err := ToSummaryJSON(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := filepath.Join(dir, "summary.json")
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}
	result.Files = append(result.Files, summaryFile)

	return result, nil
}

// WriteStageDumps writes the raw, filtered and final candidate sets of a
// pipeline run as JSON files into a per-query directory under outputDir.
//
// Creates {dir}/raw.json, {dir}/filtered.json and {dir}/final.json.
func WriteStageDumps(res *pipeline.Result, query, outputDir string) (*ExportResult, error) {
	dir := filepath.Join(outputDir, slug.Make(query))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &ExportResult{Directory: dir}

	stages := []struct {
		name string
		data any
	}{
		{"raw.json", res.Raw},
		{"filtered.json", res.Filtered},
		{"final.json", res.Matched},
	}

	for _, stage := range stages {
		body, err := shared.MarshalJSON(stage.data, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", stage.name, err)
		}
		file := filepath.Join(dir, stage.name)
		if err := os.WriteFile(file, body, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", stage.name, err)
		}
		result.Files = append(result.Files, file)
	}

	return result, nil
}
