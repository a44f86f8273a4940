package output

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"flowscanner/internal/scanner"
	"flowscanner/internal/session"
)

var noticeStyle = color.New(color.FgCyan)

// Presenter streams session results through a Manager and prints
// advisories to Notices, which is kept apart from the result stream so that
// machine-readable console output stays parseable.
type Presenter struct {
	Manager *Manager
	Notices io.Writer
	Logger  *slog.Logger
}

func NewPresenter(m *Manager, notices io.Writer, logger *slog.Logger) *Presenter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Presenter{Manager: m, Notices: notices, Logger: logger}
}

func (p *Presenter) Present(ctx context.Context, pr session.Presentation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	results := stripContent(pr.Results)
	op := string(pr.Operation)

	if err := p.Manager.Write(Event{Type: EventSessionStarted, Operation: op, Flows: len(results)}); err != nil {
		return err
	}
	for _, r := range results {
		if err := p.Manager.Write(r); err != nil {
			return err
		}
	}
	return p.Manager.Write(Event{
		Type:           EventSessionFinished,
		Operation:      op,
		Status:         string(pr.Status),
		Flows:          len(results),
		ViolationCount: scanner.CountViolations(results),
		Written:        pr.Written,
	})
}

func (p *Presenter) Notify(_ context.Context, message string) {
	if p.Notices != nil {
		_, _ = noticeStyle.Fprintln(p.Notices, message)
	}
	if p.Manager == nil {
		return
	}
	if err := p.Manager.Write(Event{Type: EventAdvisory, Message: message}); err != nil {
		p.Logger.Warn("writing advisory failed", "error", err)
	}
}

// Finish records the process exit code for sinks that report it.
func (p *Presenter) Finish(exitCode int) error {
	if err := p.Manager.Write(Event{Type: EventRunFinished, ExitCode: exitCode}); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}
