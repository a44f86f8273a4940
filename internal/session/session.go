// Package session drives the scan and fix workflows: target selection, rule
// config resolution, engine calls, artifact persistence and the result cache.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"flowscanner/internal/cache"
	"flowscanner/internal/fsutil"
	"flowscanner/internal/prompt"
	"flowscanner/internal/rules"
	"flowscanner/internal/ruleconfig"
	"flowscanner/internal/scanner"
)

type Operation string

const (
	OpScan      Operation = "scan"
	OpFix       Operation = "fix"
	OpConfigure Operation = "configure"
)

type Status string

const (
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
	StatusNothingToFix Status = "nothing-to-fix"
)

// User-facing messages.
const (
	MsgNoTargets       = "No flow files selected."
	MsgNothingToFix    = "No issues to fix."
	AdvisoryFixScope   = "The engine changed nothing: only unused variables and unconnected elements are fixed automatically. Showing the scan results instead."
	MsgConfigSaved     = "Rule configuration saved to %s."
	MsgConfigUnchanged = "Rule configuration unchanged."
)

// Outcome describes how a session ended. Results holds the scan results the
// session worked from; Presented is what was handed to the presenter.
type Outcome struct {
	Operation  Operation
	Status     Status
	Results    []scanner.Result
	Presented  []scanner.Result
	Fixed      []scanner.Result
	Written    []string
	Config     *rules.Document
	Changed    bool
	Advisories []string
}

// Presentation is handed to the presenter at the end of a scan or fix.
type Presentation struct {
	Operation  Operation
	Status     Status
	Results    []scanner.Result
	Written    []string
	Advisories []string
}

type Presenter interface {
	Present(ctx context.Context, p Presentation) error
	Notify(ctx context.Context, message string)
}

// ConfigResolver is satisfied by *ruleconfig.Resolver.
type ConfigResolver interface {
	Resolve(ctx context.Context, root string) (*rules.Document, error)
	Persist(ctx context.Context, root string, doc *rules.Document) error
}

// TargetFinder lists flow files under the workspace and expands explicit
// paths. Satisfied by *targets.Finder.
type TargetFinder interface {
	Find(ctx context.Context) ([]string, error)
	Expand(ctx context.Context, paths []string) ([]string, error)
}

// Session wires the collaborators of one workspace root. It is safe to run
// operations one after another on the same Session; they share Cache.
type Session struct {
	Root      string
	Engine    scanner.Engine
	Catalog   ruleconfig.CatalogSource
	Resolver  ConfigResolver
	Targets   TargetFinder
	Cache     cache.Store
	Prompter  prompt.Prompter
	Presenter Presenter
	Logger    *slog.Logger

	// Reset runs the configure workflow before every scan.
	Reset bool

	// WriteArtifact persists fixed flow content. Defaults to an atomic write.
	WriteArtifact func(path string, content []byte) error
}

// run is the per-operation state.
type run struct {
	log     *slog.Logger
	outcome *Outcome
	partial []error
}

func (s *Session) begin(op Operation) *run {
	log := s.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("session_id", uuid.NewString(), "op", string(op))
	log.Debug("session started", "root", s.Root)
	return &run{
		log:     log,
		outcome: &Outcome{Operation: op, Status: StatusCompleted},
	}
}

// finish converts cancellation into an outcome. A non-nil Outcome returned
// together with an error is a partial success.
func (s *Session) finish(r *run, err error) (*Outcome, error) {
	if errors.Is(err, ErrSelectionCancelled) {
		r.outcome.Status = StatusCancelled
		err = nil
	}
	if err != nil {
		r.log.Error("session failed", "error", err)
		return nil, err
	}
	r.log.Debug("session finished", "status", string(r.outcome.Status), "results", len(r.outcome.Results))
	return r.outcome, errors.Join(r.partial...)
}

func (s *Session) notify(ctx context.Context, r *run, msg string) {
	r.outcome.Advisories = append(r.outcome.Advisories, msg)
	if s.Presenter != nil {
		s.Presenter.Notify(ctx, msg)
	}
}

func (s *Session) present(ctx context.Context, r *run, results []scanner.Result) {
	if results == nil {
		results = []scanner.Result{}
	}
	r.outcome.Presented = results
	if s.Presenter == nil {
		return
	}
	err := s.Presenter.Present(ctx, Presentation{
		Operation:  r.outcome.Operation,
		Status:     r.outcome.Status,
		Results:    results,
		Written:    r.outcome.Written,
		Advisories: r.outcome.Advisories,
	})
	if err != nil {
		r.log.Warn("presenting results failed", "error", err)
		r.partial = append(r.partial, fmt.Errorf("present results: %w", err))
	}
}

func (s *Session) writeArtifact(path string, content []byte) error {
	if s.WriteArtifact != nil {
		return s.WriteArtifact(path, content)
	}
	return fsutil.WriteFileAtomic(path, content)
}
