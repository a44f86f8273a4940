package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"flowscanner/internal/rules"
	"flowscanner/internal/scanner"
)

// ReportSink renders a markdown summary of a run on Close.
type ReportSink struct {
	path         string
	file         *os.File
	mu           sync.Mutex
	results      []scanner.Result
	operations   []string
	written      []string
	advisories   []string
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path: path,
		file: f,
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case scanner.Result:
		s.results = append(s.results, t)
	case Event:
		switch t.Type {
		case EventSessionStarted:
			s.operations = append(s.operations, t.Operation)
		case EventSessionFinished:
			s.written = append(s.written, t.Written...)
		case EventAdvisory:
			s.advisories = append(s.advisories, t.Message)
		case EventRunFinished:
			s.exitCode = t.ExitCode
			s.haveExitCode = true
		}
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.file.WriteString(s.render()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

func (s *ReportSink) render() string {
	var b strings.Builder
	b.WriteString("# Flow Scanner Report\n\n")

	failing := 0
	for _, r := range s.results {
		if len(r.Violations) > 0 {
			failing++
		}
	}
	total := scanner.CountViolations(s.results)
	bySeverity := make(map[string]int)
	for _, f := range Findings(s.results) {
		bySeverity[f.Severity]++
	}

	// --- Summary ---
	b.WriteString("## Summary\n\n")
	if len(s.operations) > 0 {
		b.WriteString(fmt.Sprintf("- Operations: %s\n", strings.Join(s.operations, ", ")))
	}
	b.WriteString(fmt.Sprintf("- Flows: %d (%d with violations)\n", len(s.results), failing))
	b.WriteString(fmt.Sprintf("- Violations: %d (%d error, %d warning)\n", total,
		bySeverity[string(rules.SeverityError)], bySeverity[string(rules.SeverityWarning)]))
	if n := scanner.ModifiedCount(s.results); n > 0 {
		b.WriteString(fmt.Sprintf("- Flows fixed: %d\n", n))
	}
	if s.haveExitCode {
		b.WriteString(fmt.Sprintf("- Exit code: %d\n", s.exitCode))
	}
	b.WriteString("\n")

	// --- Violations by Rule ---
	b.WriteString("## Violations by Rule\n\n")
	counts := countByRule(s.results)
	if len(counts) == 0 {
		b.WriteString("No violations.\n\n")
	} else {
		b.WriteString("| Rule | Violations | Flows |\n")
		b.WriteString("| --- | ---: | --- |\n")
		for _, rc := range counts {
			b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", rules.DisplayName(rc.Rule), rc.Count, formatFlowList(rc.Flows, 3)))
		}
		b.WriteString("\n")
	}

	// --- Per-Flow Findings ---
	b.WriteString("## Findings\n\n")
	results := make([]scanner.Result, 0, len(s.results))
	for _, r := range s.results {
		if len(r.Violations) > 0 {
			results = append(results, r)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Artifact.Path < results[j].Artifact.Path
	})
	if len(results) == 0 {
		b.WriteString("- None\n\n")
	}
	for _, r := range results {
		b.WriteString(fmt.Sprintf("### %s\n\n", flowName(r.Artifact)))
		b.WriteString(fmt.Sprintf("`%s`\n\n", r.Artifact.Path))
		b.WriteString("| Severity | Rule | Element | Type |\n")
		b.WriteString("| --- | --- | --- | --- |\n")
		for _, v := range r.Violations {
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", severityOf(v), rules.DisplayName(v.Rule), escapeCell(v.Element), escapeCell(v.Type)))
		}
		b.WriteString("\n")
	}

	// --- Fixed Files ---
	if len(s.written) > 0 {
		b.WriteString("## Fixed Files\n\n")
		written := append([]string(nil), s.written...)
		sort.Strings(written)
		for _, p := range written {
			b.WriteString(fmt.Sprintf("- %s\n", p))
		}
		b.WriteString("\n")
	}

	// --- Notes ---
	if len(s.advisories) > 0 {
		b.WriteString("## Notes\n\n")
		for _, a := range s.advisories {
			b.WriteString(fmt.Sprintf("- %s\n", a))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatFlowList(flows []string, max int) string {
	if len(flows) == 0 {
		return ""
	}
	if len(flows) <= max {
		return strings.Join(flows, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(flows[:max], ", "), len(flows)-max)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
