package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Caellian/wiki-extractor/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *ArchiveDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close() //nolint:errcheck // test cleanup

		if db.Path() != filepath.Join(dbDir, "wikiextract.db") {
			t.Errorf("unexpected database path %q", db.Path())
		}
	})

	t.Run("refuses missing database without create", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestRunLifecycle tests begin, page saves and finish.
func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	runID, err := db.BeginRun(ctx, "https://dumps.wikimedia.org/", "hr", "20260801")
	if err != nil {
		t.Fatalf("failed to begin run: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected a non-zero run id")
	}

	metas := []model.PageMeta{
		{ID: 42, Title: "Zagreb", Namespace: 0, RevisionID: 1001,
			Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		{ID: 43, Title: "ZG", Namespace: 0, Redirect: "Zagreb"},
	}
	for _, m := range metas {
		if err := db.SavePageMeta(ctx, runID, m); err != nil {
			t.Fatalf("failed to save page metadata: %v", err)
		}
	}

	count, err := db.PageCount(ctx, runID)
	if err != nil {
		t.Fatalf("failed to count pages: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 pages, got %d", count)
	}

	stats := RunStats{PagesWritten: 2, PagesSkipped: 1, Redirects: 1}
	if err := db.FinishRun(ctx, runID, "completed", stats); err != nil {
		t.Fatalf("failed to finish run: %v", err)
	}

	runs, err := db.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.ID != runID || got.Language != "hr" || got.Outcome != "completed" {
		t.Errorf("unexpected run record: %+v", got)
	}
	if got.Stats != stats {
		t.Errorf("expected stats %+v, got %+v", stats, got.Stats)
	}
}

// TestSavePageMetaUpsert tests that re-saving a page updates in place.
func TestSavePageMetaUpsert(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	runID, err := db.BeginRun(ctx, "local", "", "")
	if err != nil {
		t.Fatalf("failed to begin run: %v", err)
	}

	if err := db.SavePageMeta(ctx, runID, model.PageMeta{ID: 7, Title: "Old"}); err != nil {
		t.Fatal(err)
	}
	if err := db.SavePageMeta(ctx, runID, model.PageMeta{ID: 7, Title: "New"}); err != nil {
		t.Fatal(err)
	}

	count, err := db.PageCount(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected upsert to keep 1 row, got %d", count)
	}
}
