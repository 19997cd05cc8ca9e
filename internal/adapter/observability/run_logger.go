package observability

import (
	"context"

	"github.com/covtools/covprep/internal/usecase/prep"
)

// RunLogger adapts DefaultLogger to the prep.Logger interface so the
// orchestrator shares the same structured logging infrastructure as the
// rest of the CLI.
type RunLogger struct {
	logger *DefaultLogger
}

// NewRunLogger creates a new run logger adapter.
func NewRunLogger(logger *DefaultLogger) prep.Logger {
	return &RunLogger{logger: logger}
}

// LogRun logs a completed normalization run.
func (l *RunLogger) LogRun(ctx context.Context, entry prep.RunLog) {
	l.logger.LogRun(ctx, RunLog{
		RunID:       entry.RunID,
		InputPath:   entry.InputPath,
		Prefix:      entry.Prefix,
		Branch:      entry.Branch,
		Category:    entry.Category,
		Duration:    entry.Duration,
		SourceFiles: entry.SourceFiles,
		Rewritten:   entry.Rewritten,
	})
}

// LogWarning logs a non-fatal diagnostic with structured fields.
func (l *RunLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogError logs a failed run.
func (l *RunLogger) LogError(ctx context.Context, entry prep.ErrorLog) {
	l.logger.LogError(ctx, ErrorLog{
		InputPath: entry.InputPath,
		Timestamp: entry.Timestamp,
		Error:     entry.Error,
	})
}
