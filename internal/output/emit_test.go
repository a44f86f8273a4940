package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"flowscanner/internal/scanner"
)

func TestEmitSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewEmitSink(&buf, "json")
	if err != nil {
		t.Fatalf("NewEmitSink returned error: %v", err)
	}

	_ = s.Write(Event{Type: EventSessionStarted})
	_ = s.Write(flowResult("a.flow-meta.xml"))
	_ = s.Write(flowResult("b.flow-meta.xml", "error"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	var got []scanner.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal json output: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[1].Artifact.Path != "b.flow-meta.xml" || len(got[1].Violations) != 1 {
		t.Fatalf("unexpected second result: %+v", got[1])
	}
}

func TestEmitSink_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewEmitSink(&buf, "ndjson")
	if err != nil {
		t.Fatalf("NewEmitSink returned error: %v", err)
	}

	_ = s.Write(flowResult("a.flow-meta.xml"))
	_ = s.Write(flowResult("b.flow-meta.xml", "warning"))
	_ = s.Write("ignored")
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 ndjson lines, got %d", len(lines))
	}
	for _, line := range lines {
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		if e.Type != EventFlowResult {
			t.Fatalf("expected event type %s, got %q", EventFlowResult, e.Type)
		}
		if e.Result == nil || e.Artifact.Path == "" {
			t.Fatalf("expected event to include the flow result, got %q", line)
		}
	}
}

func TestEmitSink_InvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewEmitSink(&buf, "csv"); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if _, err := NewEmitSink(nil, "json"); err == nil {
		t.Fatalf("expected error for nil writer, got nil")
	}
}

// readFirstLine asserts that a sink writing through a large bufio.Writer
// still delivers each ndjson line immediately.
func readFirstLine(t *testing.T, write func(w io.Writer) error) string {
	t.Helper()
	pr, pw := io.Pipe()
	defer pr.Close()
	defer pw.Close()

	bw := bufio.NewWriterSize(pw, 64*1024)
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(pr).ReadString('\n')
		if err != nil {
			errCh <- err
			return
		}
		lineCh <- line
	}()

	if err := write(bw); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	select {
	case line := <-lineCh:
		return line
	case err := <-errCh:
		t.Fatalf("read error: %v", err)
	case <-time.After(250 * time.Millisecond):
		t.Fatalf("timed out waiting for ndjson line; writer likely not flushing")
	}
	return ""
}

func TestNDJSON_FlushesPerWrite(t *testing.T) {
	t.Run("emit", func(t *testing.T) {
		line := readFirstLine(t, func(w io.Writer) error {
			s, err := NewEmitSink(w, "ndjson")
			if err != nil {
				return err
			}
			return s.Write(Event{Type: EventSessionStarted, Operation: "scan"})
		})
		if !strings.Contains(line, `"type":"session.started"`) {
			t.Fatalf("unexpected line %q", line)
		}
	})

	t.Run("console", func(t *testing.T) {
		line := readFirstLine(t, func(w io.Writer) error {
			return NewConsoleSink(w, "ndjson", nil).Write(Event{Type: EventAdvisory, Message: "No issues to fix."})
		})
		if !strings.Contains(line, `"message":"No issues to fix."`) {
			t.Fatalf("unexpected line %q", line)
		}
	})
}
