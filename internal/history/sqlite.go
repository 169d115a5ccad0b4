package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/pagebundle/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the ledger at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create history directory").
				WithContext("path", dbPath).
				Build()
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open history database").
			WithContext("path", dbPath).
			Build()
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to initialize history schema").
			WithContext("path", dbPath).
			Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		outcome TEXT NOT NULL,
		scripts INTEGER NOT NULL,
		stylesheets INTEGER NOT NULL,
		bundle_bytes INTEGER NOT NULL,
		revision TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends an entry to the ledger.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, duration_ms, input, output, outcome, scripts, stylesheets, bundle_bytes, revision, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BuildID, e.StartedAt.UnixMilli(), e.Duration.Milliseconds(), e.Input, e.Output, e.Outcome,
		e.Scripts, e.Stylesheets, e.BundleBytes, e.Revision, e.Error,
	)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to record build").
			WithContext("build_id", e.BuildID).
			Build()
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started_at, duration_ms, input, output, outcome, scripts, stylesheets, bundle_bytes, revision, error
		FROM builds ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to query build history").Build()
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e                Entry
			startedMS, durMS int64
			revision, errMsg sql.NullString
		)
		if err := rows.Scan(&e.BuildID, &startedMS, &durMS, &e.Input, &e.Output, &e.Outcome,
			&e.Scripts, &e.Stylesheets, &e.BundleBytes, &revision, &errMsg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan build history").Build()
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durMS) * time.Millisecond
		e.Revision = revision.String
		e.Error = errMsg.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to iterate build history").Build()
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
