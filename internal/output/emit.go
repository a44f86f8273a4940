package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"flowscanner/internal/scanner"
)

// EmitSink writes additional structured outputs.
//
// Formats:
//   - json: aggregates flow results and writes a single JSON array on Close
//   - ndjson: streams Event values (one JSON object per line)
type EmitSink struct {
	writer  io.Writer
	format  string // "json" | "ndjson"
	mu      sync.Mutex
	results []scanner.Result
}

func NewEmitSink(w io.Writer, format string) (*EmitSink, error) {
	if w == nil {
		return nil, fmt.Errorf("emit sink writer must not be nil")
	}
	if format != FormatJSON && format != FormatNDJSON {
		return nil, fmt.Errorf("unsupported emit format: %s", format)
	}
	return &EmitSink{writer: w, format: format}, nil
}

func (s *EmitSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatJSON {
		if r, ok := v.(scanner.Result); ok {
			s.results = append(s.results, r)
		}
		return nil
	}

	var e Event
	switch t := v.(type) {
	case Event:
		e = t
	case scanner.Result:
		e = eventFromResult(t)
	default:
		return nil
	}
	if err := json.NewEncoder(s.writer).Encode(e); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}

func (s *EmitSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format != FormatJSON {
		return nil
	}
	results := s.results
	if results == nil {
		results = []scanner.Result{}
	}
	encoder := json.NewEncoder(s.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return err
	}
	return flushIfPossible(s.writer)
}
