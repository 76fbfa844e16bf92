package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/airscrape/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "airscrape.db"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores page downloads and completed runs in a single SQLite file.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file when missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// When CreateIfNotExists is false, a missing database is an error.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a new file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per airline page, replaced on every download
	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		airline TEXT NOT NULL,
		url TEXT NOT NULL,
		status_code INTEGER,
		path TEXT,
		bytes INTEGER,
		hash TEXT,
		error TEXT,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(url)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_airline ON fetches(airline);
	CREATE INDEX IF NOT EXISTS idx_fetches_time ON fetches(fetched_at);

	-- Completed runs, stored whole as JSON with a few summary columns
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		airlines TEXT NOT NULL,
		total_records INTEGER DEFAULT 0,
		positive INTEGER DEFAULT 0,
		negative INTEGER DEFAULT 0,
		neutral INTEGER DEFAULT 0,
		error TEXT,
		run_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// InsertFetchResult records a page download, replacing any earlier row
// for the same URL.
func (h *HistoryDB) InsertFetchResult(ctx context.Context, f model.FetchResult) error {
	fetchedAt := f.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	query := `
	INSERT INTO fetches (airline, url, status_code, path, bytes, hash, error, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		airline = excluded.airline,
		status_code = excluded.status_code,
		path = excluded.path,
		bytes = excluded.bytes,
		hash = excluded.hash,
		error = excluded.error,
		fetched_at = excluded.fetched_at
	`

	_, err := h.db.ExecContext(ctx, query,
		f.Airline,
		f.URL,
		f.StatusCode,
		f.Path,
		f.Bytes,
		f.Hash,
		f.Error,
		fetchedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch result: %w", err)
	}
	return nil
}

// GetFetchResult returns the latest download of the airline's page, or nil
// when the airline was never fetched.
func (h *HistoryDB) GetFetchResult(ctx context.Context, airline string) (*model.FetchResult, error) {
	query := `
	SELECT airline, url, status_code, path, bytes, hash, error, fetched_at
	FROM fetches
	WHERE airline = ?
	ORDER BY fetched_at DESC
	LIMIT 1
	`

	f, err := scanFetch(h.db.QueryRowContext(ctx, query, airline))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch result: %w", err)
	}
	return &f, nil
}

// ListFetchResults returns all recorded downloads ordered by airline.
func (h *HistoryDB) ListFetchResults(ctx context.Context) ([]model.FetchResult, error) {
	query := `
	SELECT airline, url, status_code, path, bytes, hash, error, fetched_at
	FROM fetches
	ORDER BY airline, fetched_at DESC
	`

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetch results: %w", err)
	}
	defer rows.Close()

	var results []model.FetchResult
	for rows.Next() {
		f, err := scanFetch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fetch result: %w", err)
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFetch(row rowScanner) (model.FetchResult, error) {
	var (
		f         model.FetchResult
		path      sql.NullString
		hash      sql.NullString
		errMsg    sql.NullString
		bytes     sql.NullInt64
		fetchedAt string
	)
	if err := row.Scan(&f.Airline, &f.URL, &f.StatusCode, &path, &bytes, &hash, &errMsg, &fetchedAt); err != nil {
		return model.FetchResult{}, err
	}
	f.Path = path.String
	f.Bytes = int(bytes.Int64)
	f.Hash = hash.String
	f.Error = errMsg.String
	f.FetchedAt = parseTimestamp(fetchedAt)
	return f, nil
}

// SaveRun stores a run and sets its ID.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	counts := run.Sentiment.Counts
	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (started_at, finished_at, airlines, total_records, positive, negative, neutral, error, run_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		strings.Join(run.Airlines, ","),
		run.Table.Len(),
		counts.Positive,
		counts.Negative,
		counts.Neutral,
		run.ErrorMessage,
		string(runJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	// The stored JSON carries the ID too, so GetRun returns it.
	run.ID = id
	runJSON, err = json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE runs SET run_json = ? WHERE id = ?`, string(runJSON), id); err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a run by its ID, or nil when no such run exists.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	var runJSON string
	err := h.db.QueryRowContext(ctx, `SELECT run_json FROM runs WHERE id = ?`, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.Run
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	return &run, nil
}

// GetLatestRun retrieves the most recent run, or nil when none was saved.
func (h *HistoryDB) GetLatestRun(ctx context.Context) (*model.Run, error) {
	var id int64
	err := h.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return h.GetRun(ctx, id)
}

// RunMetadata summarizes a stored run without loading its table.
type RunMetadata struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   time.Time
	Airlines     []string
	TotalRecords int
	Counts       model.SentimentCounts
	Error        string
}

// ListRuns returns run summaries, newest first. A limit of zero or less
// returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, started_at, finished_at, airlines, total_records, positive, negative, neutral, error
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var (
			meta       RunMetadata
			startedAt  string
			finishedAt sql.NullString
			airlines   string
			errMsg     sql.NullString
		)
		if err := rows.Scan(
			&meta.ID,
			&startedAt,
			&finishedAt,
			&airlines,
			&meta.TotalRecords,
			&meta.Counts.Positive,
			&meta.Counts.Negative,
			&meta.Counts.Neutral,
			&errMsg,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.FinishedAt = parseTimestamp(finishedAt.String)
		if airlines != "" {
			meta.Airlines = strings.Split(airlines, ",")
		}
		meta.Error = errMsg.String
		results = append(results, meta)
	}

	return results, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s with each of timestampFormats and returns the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
