package output

import (
	"io"

	"flowscanner/internal/scanner"
)

// Event types emitted in NDJSON mode.
const (
	EventSessionStarted  = "session.started"
	EventFlowResult      = "flow.result"
	EventAdvisory        = "advisory"
	EventSessionFinished = "session.finished"
	EventRunFinished     = "run.finished"
)

// Event is a lifecycle record for NDJSON streaming output. Aggregating
// formats (json, csv, sarif) only collect scanner.Result values.
type Event struct {
	Type      string `json:"type"`
	Operation string `json:"operation,omitempty"`
	Status    string `json:"status,omitempty"`
	*scanner.Result
	Message        string   `json:"message,omitempty"`
	Flows          int      `json:"flows,omitempty"`
	ViolationCount int      `json:"violation_count,omitempty"`
	Written        []string `json:"written,omitempty"`
	ExitCode       int      `json:"exit_code,omitempty"`
}

func eventFromResult(r scanner.Result) Event {
	return Event{Type: EventFlowResult, Result: &r}
}

type flusher interface {
	Flush() error
}

func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
