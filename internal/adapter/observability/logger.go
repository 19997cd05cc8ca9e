// Package observability provides structured logging for pipeline runs.
package observability

import (
	"context"
	"log"
	"time"
)

// Logger provides structured logging for coverage preparation runs.
type Logger interface {
	// LogRun logs a completed normalization run with its stats
	LogRun(ctx context.Context, entry RunLog)

	// LogWarning logs a non-fatal diagnostic (e.g. a prefix mismatch)
	LogWarning(ctx context.Context, message string, fields map[string]interface{})

	// LogError logs a failure
	LogError(ctx context.Context, entry ErrorLog)
}

// RunLog contains run information for logging.
type RunLog struct {
	RunID       string
	InputPath   string
	Prefix      string
	Branch      string
	Category    string
	Duration    time.Duration
	SourceFiles int
	Rewritten   int
}

// ErrorLog contains error information for logging.
type ErrorLog struct {
	RunID     string
	InputPath string
	Timestamp time.Time
	Error     error
}

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// DefaultLogger writes logs in structured format via the standard logger.
type DefaultLogger struct {
	level  LogLevel
	format LogFormat
}

// NewDefaultLogger creates a logger with the specified config.
func NewDefaultLogger(level LogLevel, format LogFormat) *DefaultLogger {
	return &DefaultLogger{
		level:  level,
		format: format,
	}
}

// LogRun logs a completed run.
func (l *DefaultLogger) LogRun(ctx context.Context, entry RunLog) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"info","type":"run","run_id":"%s","input":"%s","prefix":"%s","branch":"%s","category":"%s","duration_ms":%d,"source_files":%d,"rewritten":%d}`,
			entry.RunID, entry.InputPath, entry.Prefix, entry.Branch,
			entry.Category, entry.Duration.Milliseconds(),
			entry.SourceFiles, entry.Rewritten)
	} else {
		log.Printf("[INFO] %s: normalized %s (prefix=%s, branch=%s/%s, files=%d, rewritten=%d, duration=%.1fs)",
			entry.RunID, entry.InputPath, entry.Prefix, entry.Category,
			entry.Branch, entry.SourceFiles, entry.Rewritten,
			entry.Duration.Seconds())
	}
}

// LogWarning logs a non-fatal diagnostic with structured fields.
func (l *DefaultLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"warn","message":"%s","fields":%s}`, message, formatFieldsJSON(fields))
	} else {
		log.Printf("[WARN] %s%s", message, formatFieldsHuman(fields))
	}
}

// LogError logs a failure.
func (l *DefaultLogger) LogError(ctx context.Context, entry ErrorLog) {
	if l.level > LogLevelError {
		return
	}

	if l.format == LogFormatJSON {
		log.Printf(`{"level":"error","type":"error","run_id":"%s","input":"%s","timestamp":"%s","error":"%s"}`,
			entry.RunID, entry.InputPath,
			entry.Timestamp.Format(time.RFC3339), entry.Error)
	} else {
		log.Printf("[ERROR] %s: %s failed: %v", entry.RunID, entry.InputPath, entry.Error)
	}
}
