package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webcrawler/internal/model"
)

// CrawlDB provides SQLite-backed storage for crawl runs. One database
// file holds every run, so a later run can be compared against earlier
// ones without juggling files.
type CrawlDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if they
	// do not exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "webcrawler.db"

// Open opens or creates a CrawlDB under dbDir.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run
	CREATE TABLE IF NOT EXISTS crawl_runs (
		run_id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		timed_out INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);

	-- One row per successfully fetched page
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id),
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		fetch_duration_ms INTEGER NOT NULL,
		links TEXT NOT NULL,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);

	-- One row per recorded fetch error
	CREATE TABLE IF NOT EXISTS fetch_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES crawl_runs(run_id),
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_errors_run ON fetch_errors(run_id);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlResult persists a finished crawl run with its pages and
// errors in one transaction.
func (cdb *CrawlDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) error {
	seedsJSON, err := json.Marshal(result.Seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO crawl_runs (run_id, seeds, started_at, finished_at, timed_out) VALUES (?, ?, ?, ?, ?)`,
		result.RunID,
		string(seedsJSON),
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
		boolToInt(result.TimedOut),
	)
	if err != nil {
		return fmt.Errorf("failed to insert crawl run: %w", err)
	}

	pageStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, url, depth, fetch_duration_ms, links)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		depth = excluded.depth,
		fetch_duration_ms = excluded.fetch_duration_ms,
		links = excluded.links
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer pageStmt.Close() //nolint:errcheck

	for _, page := range result.Results {
		linksJSON, err := json.Marshal(page.Links)
		if err != nil {
			return fmt.Errorf("failed to serialize links for %s: %w", page.URL, err)
		}
		if _, err := pageStmt.ExecContext(ctx,
			result.RunID, page.URL, page.Depth, page.FetchDuration.Milliseconds(), string(linksJSON),
		); err != nil {
			return fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	for _, fe := range result.Errors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fetch_errors (run_id, url, kind, message) VALUES (?, ?, ?, ?)`,
			result.RunID, fe.URL, string(fe.Kind), fe.Message,
		); err != nil {
			return fmt.Errorf("failed to insert fetch error for %s: %w", fe.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit crawl result: %w", err)
	}
	return nil
}

// GetCrawlResult reconstructs a stored crawl run. Returns nil without an
// error when the run does not exist.
func (cdb *CrawlDB) GetCrawlResult(ctx context.Context, runID string) (*model.CrawlResult, error) {
	var (
		result    model.CrawlResult
		seedsJSON string
		started   string
		finished  string
		timedOut  int
	)
	err := cdb.db.QueryRowContext(ctx,
		`SELECT run_id, seeds, started_at, finished_at, timed_out FROM crawl_runs WHERE run_id = ?`,
		runID,
	).Scan(&result.RunID, &seedsJSON, &started, &finished, &timedOut)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}

	if err := json.Unmarshal([]byte(seedsJSON), &result.Seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	result.StartedAt = parseTimestamp(started)
	result.FinishedAt = parseTimestamp(finished)
	result.TimedOut = timedOut != 0

	result.Results, err = cdb.getPages(ctx, runID)
	if err != nil {
		return nil, err
	}
	result.Errors, err = cdb.getErrors(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// getPages loads the fetched pages of a run in insertion order.
func (cdb *CrawlDB) getPages(ctx context.Context, runID string) ([]*model.ParsedResult, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT url, depth, fetch_duration_ms, links FROM pages WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	pages := make([]*model.ParsedResult, 0)
	for rows.Next() {
		var (
			page       model.ParsedResult
			durationMS int64
			linksJSON  string
		)
		if err := rows.Scan(&page.URL, &page.Depth, &durationMS, &linksJSON); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		page.FetchDuration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(linksJSON), &page.Links); err != nil {
			return nil, fmt.Errorf("failed to parse links: %w", err)
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

// getErrors loads the recorded fetch errors of a run in insertion order.
func (cdb *CrawlDB) getErrors(ctx context.Context, runID string) ([]*model.FetchError, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT url, kind, message FROM fetch_errors WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch errors: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	errs := make([]*model.FetchError, 0)
	for rows.Next() {
		var fe model.FetchError
		var kind string
		if err := rows.Scan(&fe.URL, &kind, &fe.Message); err != nil {
			return nil, fmt.Errorf("failed to scan fetch error: %w", err)
		}
		fe.Kind = model.FetchErrorKind(kind)
		errs = append(errs, &fe)
	}
	return errs, rows.Err()
}

// RunSummary is a row of ListRuns.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Pages     int
	Errors    int
	TimedOut  bool
}

// ListRuns returns summaries of the most recent crawl runs, newest first.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT r.run_id, r.started_at, r.timed_out,
		(SELECT COUNT(*) FROM pages p WHERE p.run_id = r.run_id),
		(SELECT COUNT(*) FROM fetch_errors e WHERE e.run_id = r.run_id)
	FROM crawl_runs r
	ORDER BY r.started_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	summaries := make([]RunSummary, 0)
	for rows.Next() {
		var (
			s        RunSummary
			started  string
			timedOut int
		)
		if err := rows.Scan(&s.RunID, &started, &timedOut, &s.Pages, &s.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run summary: %w", err)
		}
		s.StartedAt = parseTimestamp(started)
		s.TimedOut = timedOut != 0
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// parseTimestamp parses a stored timestamp, tolerating the formats
// SQLite may hand back depending on how the value was written.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// boolToInt converts a bool to the 0/1 SQLite convention.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
