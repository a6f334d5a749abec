// Package history persists a summary of past search runs in SQLite so that
// "scout history" can list them.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/scout/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Run is one recorded search run.
type Run struct {
	ID           int64
	RunID        string
	Directory    string
	Pattern      string
	Filter       string
	Glob         string
	Threads      int
	Candidates   int
	FilesMatched int
	TotalMatches int
	Duration     time.Duration
	Timestamp    time.Time
}

// FileStat is the number of matching lines one file contributed to a run.
type FileStat struct {
	FileName   string
	MatchCount int
}

// NewRun builds a Run from a finished search. RunID and Timestamp are
// assigned by Record when left empty.
func NewRun(directory, pattern, filter, glob string, threads int, summary models.Summary, duration time.Duration) *Run {
	return &Run{
		Directory:    directory,
		Pattern:      pattern,
		Filter:       filter,
		Glob:         glob,
		Threads:      threads,
		Candidates:   summary.Candidates,
		FilesMatched: summary.FilesMatched,
		TotalMatches: summary.TotalMatches,
		Duration:     duration,
	}
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}

		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}

		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record stores run and the per-file match counts of results in a single
// transaction. It fills in run.ID, and run.RunID and run.Timestamp when
// they are empty.
func (s *Store) Record(ctx context.Context, run *Run, results []models.FileSearchResult) error {
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now()
	}
	run.Timestamp = run.Timestamp.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	res, err := tx.ExecContext(ctx, `INSERT INTO search_runs
		(run_id, directory, pattern, filter, glob, threads, candidates, files_matched, total_matches, duration_ns, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Directory, run.Pattern, run.Filter, run.Glob, run.Threads,
		run.Candidates, run.FilesMatched, run.TotalMatches, run.Duration.Nanoseconds(), run.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert search run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get run id: %w", err)
	}

	for _, result := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, file_name, match_count) VALUES (?, ?, ?)`,
			id, result.FileName, result.MatchCount(),
		); err != nil {
			return fmt.Errorf("insert run file %s: %w", result.FileName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit search run: %w", err)
	}

	run.ID = id
	return nil
}

// Recent returns up to limit runs, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT id, run_id, directory, pattern, filter, glob, threads, candidates, files_matched, total_matches, duration_ns, timestamp
		FROM search_runs ORDER BY timestamp DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query search runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var filter, glob sql.NullString
		var durationNS int64
		if err := rows.Scan(&run.ID, &run.RunID, &run.Directory, &run.Pattern, &filter, &glob,
			&run.Threads, &run.Candidates, &run.FilesMatched, &run.TotalMatches, &durationNS, &run.Timestamp); err != nil {
			return nil, fmt.Errorf("scan search run: %w", err)
		}
		run.Filter = filter.String
		run.Glob = glob.String
		run.Duration = time.Duration(durationNS)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search runs: %w", err)
	}

	return runs, nil
}

// Files returns the per-file match counts recorded for the run with the
// given database ID, in the order they were reported.
func (s *Store) Files(ctx context.Context, id int64) ([]FileStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_name, match_count FROM run_files WHERE run_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []FileStat
	for rows.Next() {
		var f FileStat
		if err := rows.Scan(&f.FileName, &f.MatchCount); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run files: %w", err)
	}

	return files, nil
}

// Cleanup removes runs older than keepDays and returns how many were
// deleted. keepDays <= 0 keeps everything.
func (s *Store) Cleanup(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -keepDays)
	return s.deleteRuns(ctx, `WHERE timestamp < ?`, cutoff)
}

// Clear removes every recorded run and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	return s.deleteRuns(ctx, "")
}

// deleteRuns removes the runs selected by where together with their files.
func (s *Store) deleteRuns(ctx context.Context, where string, args ...interface{}) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM run_files WHERE run_id IN (SELECT id FROM search_runs `+where+`)`, args...); err != nil {
		return 0, fmt.Errorf("delete run files: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM search_runs `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete search runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}

	return deleted, nil
}
