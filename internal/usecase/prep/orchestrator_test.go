package prep_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/covtools/covprep/internal/branch"
	"github.com/covtools/covprep/internal/domain"
	"github.com/covtools/covprep/internal/normalize"
	"github.com/covtools/covprep/internal/safewrite"
	"github.com/covtools/covprep/internal/store"
	"github.com/covtools/covprep/internal/usecase/prep"
)

type storeStub struct {
	created []store.Run
	err     error
}

func (s *storeStub) CreateRun(ctx context.Context, run store.Run) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, run)
	return nil
}

func (s *storeStub) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	return s.created, nil
}

func (s *storeStub) Close() error { return nil }

type loggerStub struct {
	runs     []prep.RunLog
	warnings []string
	errors   []prep.ErrorLog
}

func (l *loggerStub) LogRun(ctx context.Context, entry prep.RunLog) {
	l.runs = append(l.runs, entry)
}

func (l *loggerStub) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, message)
}

func (l *loggerStub) LogError(ctx context.Context, entry prep.ErrorLog) {
	l.errors = append(l.errors, entry)
}

type markdownStub struct {
	artifacts []domain.MarkdownArtifact
}

func (m *markdownStub) Write(ctx context.Context, artifact domain.MarkdownArtifact) (string, error) {
	m.artifacts = append(m.artifacts, artifact)
	return filepath.Join(artifact.OutputDir, "report.md"), nil
}

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lcov.info")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}
	return path
}

func TestNormalize_InPlaceWithBackup(t *testing.T) {
	path := writeReport(t, "SF:utils/helper.ts\nDA:10,1\nend_of_record\n")
	stub := &storeStub{}
	logger := &loggerStub{}

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{
		Store:  stub,
		Logger: logger,
		Clock:  func() time.Time { return time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC) },
	})

	summary, err := orch.Normalize(context.Background(), prep.Request{
		InputPath: path,
		Prefix:    "src",
		Backup:    true,
		BranchRef: "refs/heads/feature/login",
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	rewritten, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read rewritten report: %v", err)
	}
	if string(rewritten) != "SF:src/utils/helper.ts\nDA:10,1\nend_of_record\n" {
		t.Errorf("unexpected rewritten content: %q", rewritten)
	}

	backup, err := os.ReadFile(path + safewrite.BackupSuffix)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(backup) != "SF:utils/helper.ts\nDA:10,1\nend_of_record\n" {
		t.Errorf("unexpected backup content: %q", backup)
	}

	if summary.SourceFiles != 1 || summary.Rewritten != 1 {
		t.Errorf("unexpected summary stats: %+v", summary)
	}
	if summary.BranchCategory != branch.CategoryFeature {
		t.Errorf("expected feature category, got %s", summary.BranchCategory)
	}

	if len(stub.created) != 1 {
		t.Fatalf("expected 1 stored run, got %d", len(stub.created))
	}
	if stub.created[0].RunID != summary.RunID {
		t.Errorf("stored run ID %s does not match summary %s", stub.created[0].RunID, summary.RunID)
	}

	if len(logger.runs) != 1 {
		t.Fatalf("expected 1 run log entry, got %d", len(logger.runs))
	}
	if logger.runs[0].Branch != "feature/login" {
		t.Errorf("expected short branch name in log, got %s", logger.runs[0].Branch)
	}
}

func TestNormalize_SeparateOutput(t *testing.T) {
	path := writeReport(t, "SF:a.ts\nend_of_record\n")
	out := filepath.Join(t.TempDir(), "nested", "lcov.info")

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{})

	summary, err := orch.Normalize(context.Background(), prep.Request{
		InputPath:  path,
		OutputPath: out,
		Prefix:     "src",
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if summary.OutputPath != out {
		t.Errorf("expected output path %s, got %s", out, summary.OutputPath)
	}

	// The input file stays untouched.
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read input: %v", err)
	}
	if string(original) != "SF:a.ts\nend_of_record\n" {
		t.Errorf("input was modified: %q", original)
	}

	rewritten, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(rewritten) != "SF:src/a.ts\nend_of_record\n" {
		t.Errorf("unexpected output content: %q", rewritten)
	}
}

func TestNormalize_MalformedInputAborts(t *testing.T) {
	path := writeReport(t, "SF:\nend_of_record\n")
	logger := &loggerStub{}

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{Logger: logger})

	_, err := orch.Normalize(context.Background(), prep.Request{
		InputPath: path,
		Prefix:    "src",
	})

	var malformed *normalize.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}

	// The original file must be untouched on failure.
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("read input: %v", readErr)
	}
	if string(content) != "SF:\nend_of_record\n" {
		t.Errorf("input was modified despite failure: %q", content)
	}

	if len(logger.errors) != 1 {
		t.Errorf("expected 1 error log entry, got %d", len(logger.errors))
	}
}

func TestNormalize_CheckRecordsValidation(t *testing.T) {
	path := writeReport(t, "SF:a.ts\nend_of_record\n")

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{})

	summary, err := orch.Normalize(context.Background(), prep.Request{
		InputPath: path,
		Prefix:    "src",
		Check:     true,
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if !summary.Validated {
		t.Error("expected summary to be marked validated")
	}
	if summary.MismatchCount != 0 {
		t.Errorf("expected no mismatches after rewrite, got %d", summary.MismatchCount)
	}
}

func TestNormalize_StoreFailureIsNonFatal(t *testing.T) {
	path := writeReport(t, "SF:a.ts\nend_of_record\n")
	logger := &loggerStub{}

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{
		Store:  &storeStub{err: errors.New("disk full")},
		Logger: logger,
	})

	_, err := orch.Normalize(context.Background(), prep.Request{
		InputPath: path,
		Prefix:    "src",
	})
	if err != nil {
		t.Fatalf("expected store failure to be non-fatal, got %v", err)
	}

	if len(logger.warnings) != 1 {
		t.Errorf("expected a warning about the store failure, got %v", logger.warnings)
	}
}

func TestNormalize_WritesReports(t *testing.T) {
	path := writeReport(t, "SF:a.ts\nend_of_record\n")
	md := &markdownStub{}
	reportDir := t.TempDir()

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{Markdown: md})

	_, err := orch.Normalize(context.Background(), prep.Request{
		InputPath: path,
		Prefix:    "src",
		OutputDir: reportDir,
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if len(md.artifacts) != 1 {
		t.Fatalf("expected 1 markdown artifact, got %d", len(md.artifacts))
	}
	if md.artifacts[0].OutputDir != reportDir {
		t.Errorf("expected report dir %s, got %s", reportDir, md.artifacts[0].OutputDir)
	}
}

func TestCheck_ReportsMismatch(t *testing.T) {
	path := writeReport(t, "SF:src/a.ts\nend_of_record\nSF:b.ts\nend_of_record\n")

	orch := prep.NewOrchestrator(prep.OrchestratorDeps{})

	report, err := orch.Check(context.Background(), path, "src")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if report.Mismatch == nil {
		t.Fatal("expected a prefix mismatch")
	}
	if report.Mismatch.Missing != 1 {
		t.Errorf("expected 1 missing, got %d", report.Mismatch.Missing)
	}
}

func TestListRuns_WithoutStore(t *testing.T) {
	orch := prep.NewOrchestrator(prep.OrchestratorDeps{})

	if _, err := orch.ListRuns(context.Background(), 10); err == nil {
		t.Fatal("expected error when store is disabled")
	}
}
