package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowscanner/internal/scanner"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out.json", FormatJSON, false},
		{"out.NDJSON", FormatNDJSON, false},
		{"out.jsonl", FormatNDJSON, false},
		{"results/findings.csv", FormatCSV, false},
		{"scan.sarif", FormatSARIF, false},
		{"out.txt", "", true},
		{"out", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := InferFormat(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InferFormat(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("InferFormat(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewFileSink_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewFileSink("", ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	_, err := NewFileSink(filepath.Join(dir, "out.unknown"), "")
	if err == nil || !strings.Contains(err.Error(), "cannot infer output format") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = NewFileSink(filepath.Join(dir, "out.json"), "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFileSink_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.json")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func writeAll(t *testing.T, s Sink, values ...any) {
	t.Helper()
	for _, v := range values {
		if err := s.Write(v); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestFileSink_JSON_AggregatesResults_AndIgnoresEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	writeAll(t, s,
		Event{Type: EventSessionStarted},
		flowResult("a.flow-meta.xml", "error"),
		Event{Type: EventSessionFinished},
	)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var got []scanner.Result
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("output is not a JSON array of results: %v\n%s", err, b)
	}
	if len(got) != 1 || got[0].Artifact.Path != "a.flow-meta.xml" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestFileSink_NDJSON_WritesIncrementally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ndjson")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Write(Event{Type: EventSessionStarted, Operation: "scan"}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	b1, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.HasSuffix(string(b1), "\n") || !strings.Contains(string(b1), `"type":"session.started"`) {
		t.Fatalf("expected first event on disk after Write, got %q", b1)
	}

	if err := s.Write(flowResult("a.flow-meta.xml")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	b2, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(b2)), "\n"); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), b2)
	}
}

func TestFileSink_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.csv")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	r := scanner.Result{
		Artifact: scanner.Artifact{Path: "flows/Order_Sync.flow-meta.xml"},
		Violations: []scanner.Violation{
			{Rule: "DMLStatementInLoop", Severity: "error", Element: "Update, Records", Type: "recordUpdates"},
			{Rule: "CustomRule", Severity: "Warning"},
		},
	}
	writeAll(t, s, flowResult("clean.flow-meta.xml"), r)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != "flow,path,rule,alias,severity,element,type" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	want := []string{"Order_Sync", "flows/Order_Sync.flow-meta.xml", "DMLStatementInLoop", "DMLInLoop", "error", "Update, Records", "recordUpdates"}
	if strings.Join(records[1], "|") != strings.Join(want, "|") {
		t.Fatalf("row 1 = %v, want %v", records[1], want)
	}
	if records[2][3] != "" || records[2][4] != "warning" {
		t.Fatalf("row 2 = %v", records[2])
	}
}

func TestFileSink_SARIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.sarif")
	s, err := NewFileSink(path, "")
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	writeAll(t, s,
		flowResult("flows/A.flow-meta.xml", "error"),
		flowResult("flows/B.flow-meta.xml", "warning"),
	)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(b, &log); err != nil {
		t.Fatalf("invalid sarif: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected sarif envelope: %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != 1 || run.Tool.Driver.Rules[0].ID != "FlowName" {
		t.Fatalf("unexpected rules: %+v", run.Tool.Driver.Rules)
	}
	if run.Tool.Driver.Rules[0].Prop == nil || run.Tool.Driver.Rules[0].Prop.Alias != "InvalidNamingConvention" {
		t.Fatalf("expected legacy alias on rule")
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	if run.Results[0].Level != "error" || run.Results[1].Level != "warning" {
		t.Fatalf("unexpected levels: %s, %s", run.Results[0].Level, run.Results[1].Level)
	}
	if uri := run.Results[1].Locations[0].Physical.Artifact.URI; uri != "flows/B.flow-meta.xml" {
		t.Fatalf("unexpected uri %q", uri)
	}
}
