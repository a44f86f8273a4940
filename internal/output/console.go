package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"flowscanner/internal/rules"
	"flowscanner/internal/scanner"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgYellow)
	passStyle    = color.New(color.FgGreen)
	headerStyle  = color.New(color.Bold)
	mutedStyle   = color.New(color.Faint)
)

type ConsoleSink struct {
	writer            io.Writer
	format            string // "text", "json", "ndjson"
	mu                sync.Mutex
	results           []scanner.Result // For JSON array output
	allowedSeverities map[string]bool
}

// NewConsoleSink writes to w (stdout when nil). filterSeverities limits the
// violations shown, e.g. ["error"].
func NewConsoleSink(w io.Writer, format string, filterSeverities []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{
		writer: w,
		format: format,
	}

	if len(filterSeverities) > 0 {
		s.allowedSeverities = make(map[string]bool)
		for _, sev := range filterSeverities {
			s.allowedSeverities[strings.ToLower(strings.TrimSpace(sev))] = true
		}
	}

	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

// filter keeps the violations whose severity is allowed. With a filter set,
// flows left without violations are not shown.
func (s *ConsoleSink) filter(r scanner.Result) (scanner.Result, bool) {
	if len(s.allowedSeverities) == 0 {
		return r, true
	}
	kept := make([]scanner.Violation, 0, len(r.Violations))
	for _, v := range r.Violations {
		if s.allowedSeverities[severityOf(v)] {
			kept = append(kept, v)
		}
	}
	r.Violations = kept
	return r, len(kept) > 0
}

func (s *ConsoleSink) writeLocked(v any) error {
	if r, ok := v.(scanner.Result); ok {
		filtered, keep := s.filter(r)
		if !keep {
			return nil
		}
		v = filtered
	}

	switch s.format {
	case "json":
		r, ok := v.(scanner.Result)
		if !ok {
			return nil
		}
		s.results = append(s.results, r)
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case scanner.Result:
			if err := encoder.Encode(eventFromResult(t)); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		if err := s.writeText(v); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeText(v any) error {
	w := s.writer
	switch t := v.(type) {
	case Event:
		switch t.Type {
		case EventSessionStarted:
			op := "Run"
			if t.Operation != "" {
				op = strings.ToUpper(t.Operation[:1]) + t.Operation[1:]
			}
			_, err := headerStyle.Fprintf(w, "%s: %d flow(s)\n", op, t.Flows)
			return err
		case EventSessionFinished:
			line := fmt.Sprintf("%d flow(s), %d violation(s)", t.Flows, t.ViolationCount)
			if len(t.Written) > 0 {
				line += fmt.Sprintf(", %d file(s) written", len(t.Written))
			}
			_, err := mutedStyle.Fprintln(w, line)
			return err
		}
		return nil
	case scanner.Result:
		if len(t.Violations) == 0 {
			label := "[PASS]"
			if t.Artifact.Modified {
				label = "[FIXED]"
			}
			_, err := fmt.Fprintf(w, "%s %s\n", passStyle.Sprint(label), t.Artifact.Path)
			return err
		}
		label := "[FAIL]"
		if t.Artifact.Modified {
			label = "[PARTIAL]"
		}
		if _, err := fmt.Fprintf(w, "%s %s (%d)\n", errorStyle.Sprint(label), t.Artifact.Path, len(t.Violations)); err != nil {
			return err
		}
		for _, v := range t.Violations {
			if err := writeViolation(w, v); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func writeViolation(w io.Writer, v scanner.Violation) error {
	sev := severityOf(v)
	style := warningStyle
	if sev == string(rules.SeverityError) {
		style = errorStyle
	}
	line := fmt.Sprintf("  %s %s", style.Sprintf("%-7s", sev), rules.DisplayName(v.Rule))
	if v.Element != "" {
		line += " - " + v.Element
	}
	if v.Type != "" {
		line += mutedStyle.Sprintf(" (%s)", v.Type)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		results := s.results
		if results == nil {
			results = []scanner.Result{}
		}
		if err := encoder.Encode(results); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	if s.format != "text" && s.format != "ndjson" {
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
	return nil
}
