package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/covtools/covprep/internal/domain"
)

// Writer persists run summaries as JSON files.
type Writer struct {
	now func() string
}

// NewWriter creates a new JSON writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a run summary to disk as a JSON file.
func (w *Writer) Write(ctx context.Context, artifact domain.JSONArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(artifact.OutputDir, fmt.Sprintf("coverage-prep-%s.json", w.now()))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(artifact.Summary); err != nil {
		return "", fmt.Errorf("failed to encode summary to json: %w", err)
	}

	return filePath, nil
}
