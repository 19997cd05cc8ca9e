// Package prep orchestrates a coverage preparation run: read the report,
// rewrite source paths, replace the file safely, validate, and record the
// run for later inspection.
package prep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/covtools/covprep/internal/branch"
	"github.com/covtools/covprep/internal/domain"
	"github.com/covtools/covprep/internal/normalize"
	"github.com/covtools/covprep/internal/safewrite"
	"github.com/covtools/covprep/internal/store"
)

// Store defines the outbound port for persisting run history.
type Store interface {
	CreateRun(ctx context.Context, run store.Run) error
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	Close() error
}

// MarkdownWriter persists a run summary to disk.
type MarkdownWriter interface {
	Write(ctx context.Context, artifact domain.MarkdownArtifact) (string, error)
}

// JSONWriter persists a run summary to disk.
type JSONWriter interface {
	Write(ctx context.Context, artifact domain.JSONArtifact) (string, error)
}

// Logger is the outbound port for structured run logging.
type Logger interface {
	LogRun(ctx context.Context, entry RunLog)
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogError(ctx context.Context, entry ErrorLog)
}

// RunLog carries the fields logged for a completed run.
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

// ErrorLog carries the fields logged for a failed run.
type ErrorLog struct {
	InputPath string
	Timestamp time.Time
	Error     error
}

// OrchestratorDeps captures the collaborators for the orchestrator.
type OrchestratorDeps struct {
	Classifier *branch.Classifier
	Store      Store
	Markdown   MarkdownWriter
	JSON       JSONWriter
	Logger     Logger
	Clock      func() time.Time
}

// Orchestrator runs coverage preparation end to end.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator with its dependencies.
// Store, Markdown, JSON and Logger may be nil; Classifier and Clock are
// substituted with defaults when unset.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Classifier == nil {
		deps.Classifier = branch.NewClassifier()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Orchestrator{deps: deps}
}

// Request describes one normalization run.
type Request struct {
	InputPath    string
	OutputPath   string // empty means rewrite in place
	Prefix       string
	Backup       bool // keep a .bak copy on in-place rewrites
	Check        bool // validate prefixes after the rewrite
	BranchRef    string
	TargetBranch string
	OutputDir    string // report directory; empty disables report writers
}

// Normalize executes a run: rewrite, replace, validate, persist, report.
func (o *Orchestrator) Normalize(ctx context.Context, req Request) (domain.RunSummary, error) {
	started := o.deps.Clock()

	raw, err := os.ReadFile(req.InputPath)
	if err != nil {
		return domain.RunSummary{}, fmt.Errorf("read coverage report: %w", err)
	}

	rewritten, stats, err := normalize.Rewrite(string(raw), req.Prefix)
	if err != nil {
		o.logError(ctx, req, err)
		return domain.RunSummary{}, err
	}

	outputPath := req.OutputPath
	if outputPath == "" || outputPath == req.InputPath {
		outputPath = req.InputPath
		if err := safewrite.Replace(outputPath, []byte(rewritten), req.Backup); err != nil {
			return domain.RunSummary{}, fmt.Errorf("replace coverage report: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return domain.RunSummary{}, fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(outputPath, []byte(rewritten), 0o644); err != nil {
			return domain.RunSummary{}, fmt.Errorf("write coverage report: %w", err)
		}
	}

	summary := domain.RunSummary{
		RunID: domain.NewRunID(domain.RunInput{
			InputPath: req.InputPath,
			Prefix:    req.Prefix,
			BranchRef: req.BranchRef,
			Timestamp: started,
		}),
		Timestamp:      started,
		InputPath:      req.InputPath,
		OutputPath:     outputPath,
		Prefix:         req.Prefix,
		BranchRef:      req.BranchRef,
		BranchCategory: o.deps.Classifier.Classify(req.BranchRef),
		SourceFiles:    stats.SourceFiles,
		Rewritten:      stats.Rewritten,
	}

	if req.Check {
		report, err := normalize.Validate(rewritten, req.Prefix)
		if err != nil {
			o.logError(ctx, req, err)
			return domain.RunSummary{}, err
		}
		summary.Validated = true
		if report.Mismatch != nil {
			summary.MismatchCount = report.Mismatch.Missing
			o.logWarning(ctx, "prefix mismatch after rewrite", map[string]interface{}{
				"input":   req.InputPath,
				"missing": report.Mismatch.Missing,
				"total":   report.Mismatch.Total,
			})
		}
	}

	o.persist(ctx, summary)
	o.writeReports(ctx, req.OutputDir, summary)

	if o.deps.Logger != nil {
		o.deps.Logger.LogRun(ctx, RunLog{
			RunID:       summary.RunID,
			InputPath:   summary.InputPath,
			Prefix:      summary.Prefix,
			Branch:      branch.ShortName(summary.BranchRef),
			Category:    string(summary.BranchCategory),
			Duration:    o.deps.Clock().Sub(started),
			SourceFiles: summary.SourceFiles,
			Rewritten:   summary.Rewritten,
		})
	}

	return summary, nil
}

// Check validates an existing report without rewriting it.
func (o *Orchestrator) Check(ctx context.Context, inputPath, prefix string) (normalize.ValidationReport, error) {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return normalize.ValidationReport{}, fmt.Errorf("read coverage report: %w", err)
	}
	return normalize.Validate(string(raw), prefix)
}

// ListRuns returns recent run history, newest first.
func (o *Orchestrator) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if o.deps.Store == nil {
		return nil, fmt.Errorf("run history store is disabled")
	}
	return o.deps.Store.ListRuns(ctx, limit)
}

func (o *Orchestrator) persist(ctx context.Context, summary domain.RunSummary) {
	if o.deps.Store == nil {
		return
	}
	err := o.deps.Store.CreateRun(ctx, store.Run{
		RunID:          summary.RunID,
		Timestamp:      summary.Timestamp,
		InputPath:      summary.InputPath,
		OutputPath:     summary.OutputPath,
		Prefix:         summary.Prefix,
		BranchRef:      summary.BranchRef,
		BranchCategory: string(summary.BranchCategory),
		SourceFiles:    summary.SourceFiles,
		Rewritten:      summary.Rewritten,
		MismatchCount:  summary.MismatchCount,
	})
	if err != nil {
		// History is best-effort; the rewrite already succeeded.
		o.logWarning(ctx, "failed to record run", map[string]interface{}{
			"runID": summary.RunID,
			"error": err.Error(),
		})
	}
}

func (o *Orchestrator) writeReports(ctx context.Context, outputDir string, summary domain.RunSummary) {
	if outputDir == "" {
		return
	}
	if o.deps.Markdown != nil {
		if _, err := o.deps.Markdown.Write(ctx, domain.MarkdownArtifact{OutputDir: outputDir, Summary: summary}); err != nil {
			o.logWarning(ctx, "failed to write markdown report", map[string]interface{}{"error": err.Error()})
		}
	}
	if o.deps.JSON != nil {
		if _, err := o.deps.JSON.Write(ctx, domain.JSONArtifact{OutputDir: outputDir, Summary: summary}); err != nil {
			o.logWarning(ctx, "failed to write json report", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
	}
}

func (o *Orchestrator) logError(ctx context.Context, req Request, err error) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogError(ctx, ErrorLog{
			InputPath: req.InputPath,
			Timestamp: o.deps.Clock(),
			Error:     err,
		})
	}
}
