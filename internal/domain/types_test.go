package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/covtools/covprep/internal/domain"
)

func TestNewRunID_Deterministic(t *testing.T) {
	input := domain.RunInput{
		InputPath: "coverage/lcov.info",
		Prefix:    "src",
		BranchRef: "refs/heads/main",
		Timestamp: time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC),
	}

	first := domain.NewRunID(input)
	second := domain.NewRunID(input)

	if first != second {
		t.Errorf("expected deterministic run IDs, got %s and %s", first, second)
	}
	if !strings.HasPrefix(first, "run-20260825T101500Z-") {
		t.Errorf("unexpected run ID format: %s", first)
	}
}

func TestNewRunID_DiffersAcrossInputs(t *testing.T) {
	ts := time.Date(2026, 8, 25, 10, 15, 0, 0, time.UTC)
	a := domain.NewRunID(domain.RunInput{InputPath: "a/lcov.info", Prefix: "src", Timestamp: ts})
	b := domain.NewRunID(domain.RunInput{InputPath: "b/lcov.info", Prefix: "src", Timestamp: ts})

	if a == b {
		t.Errorf("expected distinct run IDs for distinct inputs, both %s", a)
	}
}
