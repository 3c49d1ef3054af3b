package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Caellian/wiki-extractor/internal/model"
)

// ArchiveDB provides SQLite-based storage for extraction runs and the page
// metadata they produced.
//
// Design decision: We use a single database file covering all runs rather
// than one file per dump. Cross-run queries ("when did I last extract
// hrwiki?") stay simple and there is one file to back up.
type ArchiveDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ArchiveDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an ArchiveDB in the specified directory.
func Open(dbDir string, opts Options) (*ArchiveDB, error) {
	dbPath := filepath.Join(dbDir, "wikiextract.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection strings: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer, and the pipeline writes from a single
	// goroutine anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &ArchiveDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *ArchiveDB) Close() error {
	return adb.db.Close()
}

// Path returns the path to the database file.
func (adb *ArchiveDB) Path() string {
	return adb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (adb *ArchiveDB) createTables() error {
	schema := `
	-- Runs record one extraction each.
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		language TEXT,
		dump_version TEXT,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		finished_at DATETIME,
		outcome TEXT,
		pages_written INTEGER DEFAULT 0,
		pages_skipped INTEGER DEFAULT 0,
		redirects INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_language ON runs(language);

	-- Pages record the metadata of every page a run processed.
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		page_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		namespace INTEGER NOT NULL,
		revision_id INTEGER,
		revised_at DATETIME,
		redirect TEXT,
		UNIQUE(run_id, page_id)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_title ON pages(title);
	`

	if _, err := adb.db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// BeginRun inserts a new run record and returns its id.
func (adb *ArchiveDB) BeginRun(ctx context.Context, source, language, version string) (int64, error) {
	res, err := adb.db.ExecContext(ctx,
		"INSERT INTO runs (source, language, dump_version) VALUES (?, ?, ?)",
		source, language, version)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// SavePageMeta upserts one page's metadata for a run.
func (adb *ArchiveDB) SavePageMeta(ctx context.Context, runID int64, meta model.PageMeta) error {
	var revisedAt any
	if !meta.Timestamp.IsZero() {
		revisedAt = meta.Timestamp.UTC()
	}

	_, err := adb.db.ExecContext(ctx, `
		INSERT INTO pages (run_id, page_id, title, namespace, revision_id, revised_at, redirect)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, page_id) DO UPDATE SET
			title = excluded.title,
			namespace = excluded.namespace,
			revision_id = excluded.revision_id,
			revised_at = excluded.revised_at,
			redirect = excluded.redirect`,
		runID, meta.ID, meta.Title, meta.Namespace, meta.RevisionID, revisedAt, meta.Redirect)
	if err != nil {
		return fmt.Errorf("failed to save page metadata: %w", err)
	}
	return nil
}

// RunStats summarizes a finished run for the runs table.
type RunStats struct {
	PagesWritten int64
	PagesSkipped int64
	Redirects    int64
}

// FinishRun marks a run as finished with an outcome and its final counters.
func (adb *ArchiveDB) FinishRun(ctx context.Context, runID int64, outcome string, stats RunStats) error {
	_, err := adb.db.ExecContext(ctx, `
		UPDATE runs SET
			finished_at = CURRENT_TIMESTAMP,
			outcome = ?,
			pages_written = ?,
			pages_skipped = ?,
			redirects = ?
		WHERE id = ?`,
		outcome, stats.PagesWritten, stats.PagesSkipped, stats.Redirects, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// PageCount returns how many pages a run has recorded.
func (adb *ArchiveDB) PageCount(ctx context.Context, runID int64) (int64, error) {
	var count int64
	err := adb.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pages WHERE run_id = ?", runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

// Run is one stored extraction run.
type Run struct {
	ID          int64
	Source      string
	Language    string
	DumpVersion string
	Outcome     string
	Stats       RunStats
}

// RecentRuns returns the most recent runs, newest first.
func (adb *ArchiveDB) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := adb.db.QueryContext(ctx, `
		SELECT id, source, COALESCE(language, ''), COALESCE(dump_version, ''),
			COALESCE(outcome, ''), pages_written, pages_skipped, redirects
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Language, &r.DumpVersion,
			&r.Outcome, &r.Stats.PagesWritten, &r.Stats.PagesSkipped, &r.Stats.Redirects); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}
