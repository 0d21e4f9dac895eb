package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestCacheRepository(t *testing.T) {
	t.Run("GetOrCompute", func(t *testing.T) {
		t.Run("Computes On Miss", func(t *testing.T) {
			repo := NewCacheRepository(newTestDB(t))

			var computes int
			body, err := repo.GetOrCompute("k", func() ([]byte, error) {
				computes++
				return []byte("value"), nil
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(body) != "value" || computes != 1 {
				t.Errorf("expected computed value, got %q (computes=%d)", body, computes)
			}
		})

		t.Run("Serves From Cache", func(t *testing.T) {
			repo := NewCacheRepository(newTestDB(t))

			var computes int
			compute := func() ([]byte, error) {
				computes++
				return []byte("value"), nil
			}

			if _, err := repo.GetOrCompute("k", compute); err != nil {
				t.Fatalf("first call failed: %v", err)
			}
			body, err := repo.GetOrCompute("k", compute)
			if err != nil {
				t.Fatalf("second call failed: %v", err)
			}
			if string(body) != "value" || computes != 1 {
				t.Errorf("expected cached value with 1 compute, got %q (computes=%d)", body, computes)
			}
		})

		t.Run("Compute Errors Are Not Cached", func(t *testing.T) {
			repo := NewCacheRepository(newTestDB(t))

			boom := errors.New("boom")
			if _, err := repo.GetOrCompute("k", func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
				t.Fatalf("expected compute error, got %v", err)
			}

			body, err := repo.GetOrCompute("k", func() ([]byte, error) { return []byte("later"), nil })
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(body) != "later" {
				t.Errorf("expected recovery after failed compute, got %q", body)
			}
		})
	})

	t.Run("Stats And Clear", func(t *testing.T) {
		repo := NewCacheRepository(newTestDB(t))

		for _, key := range []string{"a", "b", "c"} {
			if err := repo.Put(key, []byte(key)); err != nil {
				t.Fatalf("failed to put %s: %v", key, err)
			}
		}

		count, oldest, err := repo.Stats()
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if count != 3 {
			t.Errorf("expected 3 entries, got %d", count)
		}
		if oldest.IsZero() {
			t.Error("expected a non-zero oldest timestamp")
		}

		removed, err := repo.Clear()
		if err != nil {
			t.Fatalf("clear failed: %v", err)
		}
		if removed != 3 {
			t.Errorf("expected 3 removed, got %d", removed)
		}

		count, _, _ = repo.Stats()
		if count != 0 {
			t.Errorf("expected empty cache after clear, got %d", count)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		repo := NewCacheRepository(newTestDB(t))

		if err := repo.Put("fresh", []byte("x")); err != nil {
			t.Fatalf("failed to put: %v", err)
		}

		removed, err := repo.Prune(time.Hour)
		if err != nil {
			t.Fatalf("prune failed: %v", err)
		}
		if removed != 0 {
			t.Errorf("expected fresh entry kept, removed %d", removed)
		}
	})
}

func TestRunRepository(t *testing.T) {
	t.Run("Create And Get", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		summary := &models.RunSummary{
			Query:         "fire",
			Backend:       "lyrics",
			RawCount:      40,
			FilteredCount: 25,
			DedupedCount:  20,
			MatchedCount:  15,
			PlaylistID:    "pl1",
		}

		if err := repo.Create(summary); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if summary.ID == "" {
			t.Fatal("expected generated ID")
		}

		got, err := repo.Get(summary.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.Query != "fire" || got.MatchedCount != 15 || got.PlaylistID != "pl1" {
			t.Errorf("unexpected summary: %+v", got)
		}
	})

	t.Run("Empty Query Rejected", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		err := repo.Create(&models.RunSummary{Backend: "lyrics"})
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("List Newest First", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))

		for _, q := range []string{"first", "second", "third"} {
			if err := repo.Create(&models.RunSummary{Query: q, Backend: "lyrics"}); err != nil {
				t.Fatalf("create failed: %v", err)
			}
			time.Sleep(5 * time.Millisecond)
		}

		runs, err := repo.List(2)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 runs, got %d", len(runs))
		}
		if runs[0].Query != "third" || runs[1].Query != "second" {
			t.Errorf("expected newest first, got %+v", runs)
		}
	})

	t.Run("Missing Run", func(t *testing.T) {
		repo := NewRunRepository(newTestDB(t))
		if _, err := repo.Get("nope"); err == nil {
			t.Error("expected error for missing run")
		}
	})

	t.Run("MatchRate", func(t *testing.T) {
		summary := models.RunSummary{DedupedCount: 20, MatchedCount: 15}
		if got := summary.MatchRate(); got != 0.75 {
			t.Errorf("expected 0.75, got %v", got)
		}

		empty := models.RunSummary{}
		if got := empty.MatchRate(); got != 0 {
			t.Errorf("expected 0 for empty run, got %v", got)
		}
	})
}
