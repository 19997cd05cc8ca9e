// Package store defines the persistence layer for run history.
package store

import (
	"context"
	"time"
)

// Store records coverage preparation runs so pipeline behaviour can be
// inspected after the fact (which files were rewritten, on which branch,
// with what result).
type Store interface {
	// CreateRun persists a completed run.
	CreateRun(ctx context.Context, run Run) error

	// GetRun fetches a single run by ID.
	GetRun(ctx context.Context, runID string) (Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases the underlying database handle.
	Close() error
}

// Run is one normalization execution.
type Run struct {
	RunID          string
	Timestamp      time.Time
	InputPath      string
	OutputPath     string
	Prefix         string
	BranchRef      string
	BranchCategory string
	SourceFiles    int
	Rewritten      int
	MismatchCount  int
}
