package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/covtools/covprep/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for an in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- One row per coverage preparation run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		prefix TEXT NOT NULL,
		branch_ref TEXT NOT NULL,
		branch_category TEXT NOT NULL,
		source_files INTEGER NOT NULL DEFAULT 0,
		rewritten INTEGER NOT NULL DEFAULT 0,
		mismatch_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_branch ON runs(branch_ref);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a completed run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, input_path, output_path, prefix, branch_ref, branch_category, source_files, rewritten, mismatch_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.InputPath,
		run.OutputPath,
		run.Prefix,
		run.BranchRef,
		run.BranchCategory,
		run.SourceFiles,
		run.Rewritten,
		run.MismatchCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, input_path, output_path, prefix, branch_ref, branch_category, source_files, rewritten, mismatch_count
		FROM runs WHERE run_id = ?
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, runID))
	if err == sql.ErrNoRows {
		return store.Run{}, fmt.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, timestamp, input_path, output_path, prefix, branch_ref, branch_category, source_files, rewritten, mismatch_count
		FROM runs ORDER BY timestamp DESC LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (store.Run, error) {
	var run store.Run
	var ts int64

	err := row.Scan(
		&run.RunID,
		&ts,
		&run.InputPath,
		&run.OutputPath,
		&run.Prefix,
		&run.BranchRef,
		&run.BranchCategory,
		&run.SourceFiles,
		&run.Rewritten,
		&run.MismatchCount,
	)
	if err != nil {
		return store.Run{}, err
	}

	run.Timestamp = time.Unix(ts, 0)
	return run, nil
}
