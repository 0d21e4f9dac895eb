package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// RunRepository persists pipeline run summaries in the runs table.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run summary, generating its ID and timestamp.
func (r *RunRepository) Create(summary *models.RunSummary) error {
	if summary.Query == "" {
		return fmt.Errorf("%w: run query must not be empty", shared.ErrInvalidInput)
	}

	summary.ID = shared.GenerateID()
	summary.CreatedAt = time.Now()

	query := `
		INSERT INTO runs (id, query, backend, raw_count, filtered_count, deduped_count, matched_count, playlist_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		summary.ID, summary.Query, summary.Backend,
		summary.RawCount, summary.FilteredCount, summary.DedupedCount, summary.MatchedCount,
		nullString(summary.PlaylistID), summary.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Get retrieves a run summary by ID.
func (r *RunRepository) Get(id string) (*models.RunSummary, error) {
	query := `
		SELECT id, query, backend, raw_count, filtered_count, deduped_count, matched_count, playlist_id, created_at
		FROM runs WHERE id = ?
	`

	summary, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return summary, nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, query, backend, raw_count, filtered_count, deduped_count, matched_count, playlist_id, created_at
		FROM runs ORDER BY created_at DESC LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []models.RunSummary
	for rows.Next() {
		summary, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		summaries = append(summaries, *summary)
	}
	return summaries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.RunSummary, error) {
	var (
		summary    models.RunSummary
		playlistID sql.NullString
	)

	err := row.Scan(
		&summary.ID, &summary.Query, &summary.Backend,
		&summary.RawCount, &summary.FilteredCount, &summary.DedupedCount, &summary.MatchedCount,
		&playlistID, &summary.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if playlistID.Valid {
		summary.PlaylistID = playlistID.String
	}
	return &summary, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
