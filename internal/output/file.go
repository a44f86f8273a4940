package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"flowscanner/internal/scanner"
)

// Formats a FileSink can write.
const (
	FormatJSON   = "json"
	FormatNDJSON = "ndjson"
	FormatCSV    = "csv"
	FormatSARIF  = "sarif"
)

type FileSink struct {
	path    string
	format  string
	file    *os.File
	mu      sync.Mutex
	results []scanner.Result
}

// InferFormat maps a file extension to an output format.
func InferFormat(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".ndjson", ".jsonl":
		return FormatNDJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("cannot infer output format from file extension %q", ext)
	}
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	if format == "" {
		inferred, err := InferFormat(path)
		if err != nil {
			return nil, err
		}
		format = inferred
	}

	switch format {
	case FormatJSON, FormatNDJSON, FormatCSV, FormatSARIF:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &FileSink{
		path:   path,
		format: format,
		file:   f,
	}, nil
}

func (s *FileSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == FormatNDJSON {
		encoder := json.NewEncoder(s.file)
		switch t := v.(type) {
		case Event:
			return encoder.Encode(t)
		case scanner.Result:
			return encoder.Encode(eventFromResult(t))
		}
		return nil
	}

	// Aggregating formats ignore lifecycle events.
	if r, ok := v.(scanner.Result); ok {
		s.results = append(s.results, r)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch s.format {
	case FormatJSON:
		results := s.results
		if results == nil {
			results = []scanner.Result{}
		}
		encoder := json.NewEncoder(s.file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(results)
	case FormatCSV:
		err = writeCSV(s.file, s.results)
	case FormatSARIF:
		encoder := json.NewEncoder(s.file)
		encoder.SetIndent("", "  ")
		err = encoder.Encode(buildSARIF(s.results))
	}

	if closeErr := s.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

var csvHeader = []string{"flow", "path", "rule", "alias", "severity", "element", "type"}

func writeCSV(f *os.File, results []scanner.Result) error {
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, fd := range Findings(results) {
		if err := w.Write([]string{fd.Flow, fd.Path, fd.Rule, fd.Alias, fd.Severity, fd.Element, fd.Type}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
