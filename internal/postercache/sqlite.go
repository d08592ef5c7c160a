package postercache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	_ "modernc.org/sqlite"

	"reelmatch/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLite persists poster entries in a SQLite database.
type SQLite struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens or creates the cache database at path. Session-scoped
// entries left by earlier runs are pruned before the cache is returned.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLite, error) {
	logger = logging.NewComponentLogger(logger, "postercache")
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("poster cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	// Pragmas ride on the DSN so every pooled connection gets them.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	cache := &SQLite{db: db, path: path, logger: logger}
	if err := cache.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	pruned, err := cache.pruneSessionScoped(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if pruned > 0 {
		logger.Debug("pruned session-scoped poster entries",
			logging.Int64("pruned", pruned),
			logging.String("path", path))
	}
	return cache, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (run 'reelmatch cache clear' or delete the database)",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *SQLite) pruneSessionScoped(ctx context.Context) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			"DELETE FROM posters WHERE outcome IN (?, ?)",
			string(OutcomeTransient), string(OutcomeNoCredentials))
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("prune session entries: %w", err)
	}
	return res.RowsAffected()
}

// Lookup returns the entry for movieID if present.
func (s *SQLite) Lookup(ctx context.Context, movieID int64) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT movie_id, url, outcome, failure_class, resolved_at FROM posters WHERE movie_id = ?",
		movieID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("lookup poster %d: %w", movieID, err)
	}
	return entry, true, nil
}

// Store inserts entry unless movieID is already cached, and returns the entry
// that ends up cached.
func (s *SQLite) Store(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ResolvedAt.IsZero() {
		entry.ResolvedAt = time.Now().UTC()
	}
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO posters (movie_id, url, outcome, failure_class, resolved_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT(movie_id) DO NOTHING`,
			entry.MovieID,
			entry.URL,
			string(entry.Outcome),
			nullableString(entry.FailureClass),
			entry.ResolvedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return Entry{}, fmt.Errorf("store poster %d: %w", entry.MovieID, err)
	}
	stored, ok, err := s.Lookup(ctx, entry.MovieID)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, fmt.Errorf("store poster %d: row missing after insert", entry.MovieID)
	}
	return stored, nil
}

// List returns all entries sorted by movie id.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT movie_id, url, outcome, failure_class, resolved_at FROM posters ORDER BY movie_id")
	if err != nil {
		return nil, fmt.Errorf("list posters: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poster: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes every entry.
func (s *SQLite) Clear(ctx context.Context) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM posters")
		return err
	})
}

// Count returns the number of cached entries.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM posters").Scan(&n); err != nil {
		return 0, fmt.Errorf("count posters: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry        Entry
		outcome      string
		failureClass sql.NullString
		resolvedAt   string
	)
	if err := row.Scan(&entry.MovieID, &entry.URL, &outcome, &failureClass, &resolvedAt); err != nil {
		return Entry{}, err
	}
	entry.Outcome = Outcome(outcome)
	entry.FailureClass = failureClass.String
	if ts, err := time.Parse(time.RFC3339Nano, resolvedAt); err == nil {
		entry.ResolvedAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy reruns op while SQLite reports the database as locked. Any
// other error ends the retries immediately.
func retryOnBusy(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = busyRetryInitialBackoff
	bo.MaxInterval = busyRetryMaxBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.Reset()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err != nil && !isSQLiteBusy(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(busyRetryAttempts),
		backoff.WithMaxElapsedTime(0),
	)
	return err
}
