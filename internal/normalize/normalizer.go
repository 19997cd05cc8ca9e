// Package normalize rewrites source-file paths in LCOV coverage reports
// so they match the source root expected by the downstream analysis service.
//
// Coverage produced inside a build container is typically relative to the
// package under test (e.g. "utils/helper.ts"), while the analyzer resolves
// paths against the repository root (e.g. "src/utils/helper.ts"). Rewrite
// closes that gap by prepending a prefix to every SF: line that does not
// already carry it. Everything that is not an SF: line passes through
// byte for byte.
package normalize

import (
	"fmt"
	"strings"
)

// sourceFileMarker introduces a per-file record in an LCOV report.
const sourceFileMarker = "SF:"

// MalformedInputError indicates a source-file line with an empty path.
// The transformation aborts; no partial output is produced.
type MalformedInputError struct {
	Line int // 1-indexed line number of the offending SF: line
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed coverage report: empty source path on line %d", e.Line)
}

// PrefixMismatchError reports source-file lines that still lack the required
// prefix after transformation. It is diagnostic, not fatal: the caller
// decides whether to fail the build on it.
type PrefixMismatchError struct {
	Missing int // SF: lines without the prefix
	Total   int // all SF: lines seen
}

func (e *PrefixMismatchError) Error() string {
	return fmt.Sprintf("%d of %d source paths missing required prefix", e.Missing, e.Total)
}

// Stats summarises a Rewrite pass.
type Stats struct {
	SourceFiles int // SF: lines seen
	Rewritten   int // SF: lines that had the prefix prepended
}

// Rewrite prepends prefix to the path of every SF: line that does not
// already carry it. All other lines are copied through unchanged, so record
// boundaries, hit counts and ordering are preserved exactly.
//
// The operation is idempotent: paths already under the prefix are left
// alone, so applying Rewrite twice yields the same output as applying it
// once. An empty input yields an empty output. A SF: line with no path
// returns *MalformedInputError.
func Rewrite(input, prefix string) (string, Stats, error) {
	stats := Stats{}
	if input == "" {
		return "", stats, nil
	}

	prefix = strings.TrimSuffix(prefix, "/")

	lines := strings.Split(input, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		if !strings.HasPrefix(line, sourceFileMarker) {
			out = append(out, line)
			continue
		}

		path := line[len(sourceFileMarker):]
		if strings.TrimSpace(path) == "" {
			return "", Stats{}, &MalformedInputError{Line: i + 1}
		}

		stats.SourceFiles++
		if hasPrefix(path, prefix) {
			out = append(out, line)
			continue
		}

		stats.Rewritten++
		out = append(out, sourceFileMarker+prefix+"/"+path)
	}

	return strings.Join(out, "\n"), stats, nil
}

// ValidationReport summarises a post-transform prefix check.
type ValidationReport struct {
	SourceFiles int
	WithPrefix  int
	Mismatch    *PrefixMismatchError // nil when every path carries the prefix
}

// Validate counts SF: lines and how many carry the required prefix. A
// mismatch is returned inside the report rather than as a hard failure;
// given Rewrite's contract it should be unreachable and indicates an
// upstream format change. The error return is reserved for malformed
// input (empty source path).
func Validate(input, prefix string) (ValidationReport, error) {
	report := ValidationReport{}
	prefix = strings.TrimSuffix(prefix, "/")

	for i, line := range strings.Split(input, "\n") {
		if !strings.HasPrefix(line, sourceFileMarker) {
			continue
		}
		path := line[len(sourceFileMarker):]
		if strings.TrimSpace(path) == "" {
			return ValidationReport{}, &MalformedInputError{Line: i + 1}
		}
		report.SourceFiles++
		if hasPrefix(path, prefix) {
			report.WithPrefix++
		}
	}

	if missing := report.SourceFiles - report.WithPrefix; missing > 0 {
		report.Mismatch = &PrefixMismatchError{
			Missing: missing,
			Total:   report.SourceFiles,
		}
	}

	return report, nil
}

// hasPrefix reports whether path already lives under prefix. A bare path
// equal to the prefix counts as prefixed; "srcfoo/bar" does not count as
// being under "src".
func hasPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
