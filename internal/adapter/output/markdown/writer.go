package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/covtools/covprep/internal/domain"
)

type clock func() string

// Writer renders run summaries into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk.
func (w *Writer) Write(ctx context.Context, artifact domain.MarkdownArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("coverage-prep_%s_%s.md",
		sanitise(artifact.Summary.BranchRef),
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	content := buildContent(artifact.Summary)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(summary domain.RunSummary) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Coverage Preparation Report\n\n")
	builder.WriteString(fmt.Sprintf("- Run: %s\n", summary.RunID))
	builder.WriteString(fmt.Sprintf("- Input: %s\n", summary.InputPath))
	builder.WriteString(fmt.Sprintf("- Output: %s\n", summary.OutputPath))
	builder.WriteString(fmt.Sprintf("- Prefix: %s\n", summary.Prefix))
	builder.WriteString(fmt.Sprintf("- Branch: %s (%s)\n\n",
		summary.BranchRef, caser.String(string(summary.BranchCategory))))

	builder.WriteString("## Results\n\n")
	builder.WriteString(fmt.Sprintf("- Source files: %d\n", summary.SourceFiles))
	builder.WriteString(fmt.Sprintf("- Paths rewritten: %d\n", summary.Rewritten))
	builder.WriteString(fmt.Sprintf("- Already prefixed: %d\n", summary.SourceFiles-summary.Rewritten))

	if summary.Validated {
		if summary.MismatchCount == 0 {
			builder.WriteString("- Validation: all paths carry the prefix\n")
		} else {
			builder.WriteString(fmt.Sprintf("- Validation: %d paths missing the prefix\n", summary.MismatchCount))
		}
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
