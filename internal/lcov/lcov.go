package lcov

import (
	"fmt"
	"strconv"
	"strings"
)

// LineHit is one DA: entry: an execution count for a single line.
type LineHit struct {
	Line  int // 1-indexed source line number
	Count int // executions observed
}

// Record is the coverage data for a single source file, delimited by a
// SF: line and an end_of_record sentinel.
type Record struct {
	SourcePath     string
	LineHits       []LineHit
	FunctionsFound int
	FunctionsHit   int
	LinesFound     int
	LinesHit       int
}

// Report is an ordered sequence of records.
type Report struct {
	Records []Record
}

// Parse reads LCOV text into a Report. Directives the model does not
// track (TN:, FN:, FNDA:, BRDA:, ...) are ignored. A SF: line with an
// empty path is an error; an empty input is a valid empty report.
func Parse(text string) (Report, error) {
	report := Report{}
	if strings.TrimSpace(text) == "" {
		return report, nil
	}

	var current *Record

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "SF:"):
			path := line[len("SF:"):]
			if strings.TrimSpace(path) == "" {
				return Report{}, fmt.Errorf("line %d: source file entry with empty path", i+1)
			}
			if current != nil {
				return Report{}, fmt.Errorf("line %d: source file entry before end_of_record", i+1)
			}
			current = &Record{SourcePath: path}

		case line == "end_of_record":
			if current == nil {
				return Report{}, fmt.Errorf("line %d: end_of_record outside a record", i+1)
			}
			report.Records = append(report.Records, *current)
			current = nil

		case current == nil:
			// Header noise outside any record (e.g. TN:) is tolerated.
			continue

		case strings.HasPrefix(line, "DA:"):
			hit, err := parseLineHit(line[len("DA:"):])
			if err != nil {
				return Report{}, fmt.Errorf("line %d: %w", i+1, err)
			}
			current.LineHits = append(current.LineHits, hit)

		case strings.HasPrefix(line, "FNF:"):
			current.FunctionsFound = parseCount(line[len("FNF:"):])
		case strings.HasPrefix(line, "FNH:"):
			current.FunctionsHit = parseCount(line[len("FNH:"):])
		case strings.HasPrefix(line, "LF:"):
			current.LinesFound = parseCount(line[len("LF:"):])
		case strings.HasPrefix(line, "LH:"):
			current.LinesHit = parseCount(line[len("LH:"):])
		}
	}

	if current != nil {
		return Report{}, fmt.Errorf("unterminated record for %s", current.SourcePath)
	}

	return report, nil
}

// String renders the record back to LCOV text, sentinel included.
func (r Record) String() string {
	var b strings.Builder
	b.WriteString("SF:")
	b.WriteString(r.SourcePath)
	b.WriteString("\n")
	for _, hit := range r.LineHits {
		fmt.Fprintf(&b, "DA:%d,%d\n", hit.Line, hit.Count)
	}
	if r.FunctionsFound > 0 || r.FunctionsHit > 0 {
		fmt.Fprintf(&b, "FNF:%d\nFNH:%d\n", r.FunctionsFound, r.FunctionsHit)
	}
	fmt.Fprintf(&b, "LF:%d\nLH:%d\n", r.LinesFound, r.LinesHit)
	b.WriteString("end_of_record\n")
	return b.String()
}

// String renders the whole report as the concatenation of its records.
func (r Report) String() string {
	var b strings.Builder
	for _, rec := range r.Records {
		b.WriteString(rec.String())
	}
	return b.String()
}

// TotalLineHits sums DA: entries across all records.
func (r Report) TotalLineHits() int {
	total := 0
	for _, rec := range r.Records {
		total += len(rec.LineHits)
	}
	return total
}

func parseLineHit(s string) (LineHit, error) {
	idx := strings.Index(s, ",")
	if idx < 0 {
		return LineHit{}, fmt.Errorf("malformed DA entry %q", s)
	}
	line, err := strconv.Atoi(s[:idx])
	if err != nil || line <= 0 {
		return LineHit{}, fmt.Errorf("malformed DA line number %q", s[:idx])
	}
	// Some producers append a checksum after the count; ignore it.
	countField := s[idx+1:]
	if ci := strings.Index(countField, ","); ci >= 0 {
		countField = countField[:ci]
	}
	count, err := strconv.Atoi(countField)
	if err != nil || count < 0 {
		return LineHit{}, fmt.Errorf("malformed DA count %q", countField)
	}
	return LineHit{Line: line, Count: count}, nil
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
