package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/covtools/covprep/internal/branch"
)

// RunSummary describes one coverage preparation run.
type RunSummary struct {
	RunID          string          `json:"runId"`
	Timestamp      time.Time       `json:"timestamp"`
	InputPath      string          `json:"inputPath"`
	OutputPath     string          `json:"outputPath"`
	Prefix         string          `json:"prefix"`
	BranchRef      string          `json:"branchRef"`
	BranchCategory branch.Category `json:"branchCategory"`
	SourceFiles    int             `json:"sourceFiles"`
	Rewritten      int             `json:"rewritten"`
	Validated      bool            `json:"validated"`
	MismatchCount  int             `json:"mismatchCount"`
}

// RunInput captures the information required to derive a run ID.
type RunInput struct {
	InputPath string
	Prefix    string
	BranchRef string
	Timestamp time.Time
}

// NewRunID builds a unique, time-ordered run identifier.
// Format: run-<timestamp>-<hash>, e.g. run-20260825T101500Z-a3f9c2.
func NewRunID(input RunInput) string {
	ts := input.Timestamp.UTC().Format("20060102T150405Z")

	payload := fmt.Sprintf("%s|%s|%s|%d",
		input.InputPath,
		input.Prefix,
		input.BranchRef,
		input.Timestamp.UnixNano(),
	)
	sum := sha256.Sum256([]byte(payload))
	short := hex.EncodeToString(sum[:3])

	return fmt.Sprintf("run-%s-%s", ts, short)
}

// MarkdownArtifact encapsulates the Markdown report generation inputs.
type MarkdownArtifact struct {
	OutputDir string
	Summary   RunSummary
}

// JSONArtifact encapsulates the JSON report generation inputs.
type JSONArtifact struct {
	OutputDir string
	Summary   RunSummary
}
