package markdown_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/covtools/covprep/internal/adapter/output/markdown"
	"github.com/covtools/covprep/internal/branch"
	"github.com/covtools/covprep/internal/domain"
)

func fixedClock() string {
	return "20260825T101500Z"
}

func TestWrite_CreatesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	writer := markdown.NewWriter(fixedClock)

	path, err := writer.Write(context.Background(), domain.MarkdownArtifact{
		OutputDir: dir,
		Summary: domain.RunSummary{
			RunID:          "run-20260825T101500Z-a3f9c2",
			Timestamp:      time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC),
			InputPath:      "coverage/lcov.info",
			OutputPath:     "coverage/lcov.info",
			Prefix:         "src",
			BranchRef:      "refs/heads/feature/login",
			BranchCategory: branch.CategoryFeature,
			SourceFiles:    12,
			Rewritten:      9,
		},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if !strings.HasSuffix(path, "coverage-prep_refs-heads-feature-login_20260825T101500Z.md") {
		t.Errorf("unexpected file name: %s", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	text := string(content)
	for _, want := range []string{
		"# Coverage Preparation Report",
		"run-20260825T101500Z-a3f9c2",
		"Prefix: src",
		"Source files: 12",
		"Paths rewritten: 9",
		"Already prefixed: 3",
		"(Feature)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}
}

func TestWrite_ValidationSection(t *testing.T) {
	dir := t.TempDir()
	writer := markdown.NewWriter(fixedClock)

	path, err := writer.Write(context.Background(), domain.MarkdownArtifact{
		OutputDir: dir,
		Summary: domain.RunSummary{
			RunID:          "run-x",
			BranchRef:      "main",
			BranchCategory: branch.CategoryOther,
			SourceFiles:    4,
			Rewritten:      4,
			Validated:      true,
			MismatchCount:  2,
		},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(content), "2 paths missing the prefix") {
		t.Errorf("expected mismatch line in report:\n%s", content)
	}
}
