package session

import (
	"context"
	"errors"

	"flowscanner/internal/cache"
	"flowscanner/internal/prompt"
	"flowscanner/internal/scanner"
)

// Fix applies the engine auto-fixes to the cached results or to a fresh scan,
// writes the changed flows back and replaces the cached results with the fix
// output. targets is only used when a fresh scan is needed.
func (s *Session) Fix(ctx context.Context, targets []string) (*Outcome, error) {
	r := s.begin(OpFix)

	var results []scanner.Result
	reused := false
	if cached, ok := cache.Results(s.Cache); ok && len(cached) > 0 {
		choice, err := s.Prompter.ChooseReuse(ctx, len(cached))
		if err != nil {
			return s.finish(r, err)
		}
		switch choice {
		case prompt.ReuseLast:
			results, reused = cached, true
		case prompt.ReuseReselect:
		default:
			return s.finish(r, ErrSelectionCancelled)
		}
	}

	if !reused {
		scanned, _, err := s.scanTargets(ctx, r, targets, false)
		if err != nil {
			return s.finish(r, err)
		}
		results = scanned
	}
	r.outcome.Results = results
	r.log.Debug("fix input ready", "flows", len(results), "reused", reused)

	if len(results) == 0 {
		r.outcome.Status = StatusNothingToFix
		s.notify(ctx, r, MsgNothingToFix)
		s.present(ctx, r, nil)
		return s.finish(r, nil)
	}

	fixed, err := s.Engine.Fix(ctx, results)
	if err != nil {
		return s.finish(r, &EngineError{Stage: StageFix, Err: err})
	}
	if fixed == nil {
		fixed = []scanner.Result{}
	}
	r.outcome.Fixed = fixed

	s.persistArtifacts(ctx, r, fixed)

	cache.SetResults(s.Cache, fixed)
	r.log.Info("fix finished", "flows", len(fixed), "written", len(r.outcome.Written))

	presented := fixed
	if len(fixed) == 0 {
		presented = results
		s.notify(ctx, r, AdvisoryFixScope)
	}
	s.present(ctx, r, presented)
	return s.finish(r, nil)
}

// persistArtifacts writes every modified artifact in order. Failures are
// collected and never stop the remaining writes.
func (s *Session) persistArtifacts(ctx context.Context, r *run, fixed []scanner.Result) {
	for _, res := range fixed {
		a := res.Artifact
		if !a.Modified {
			continue
		}
		var err error
		switch {
		case ctx.Err() != nil:
			err = ctx.Err()
		case a.Path == "":
			err = errors.New("fixed flow has no path")
		case a.Content == nil:
			err = errors.New("fixed flow has no content")
		default:
			err = s.writeArtifact(a.Path, a.Content)
		}
		if err != nil {
			r.log.Warn("writing fixed flow failed", "path", a.Path, "error", err)
			r.partial = append(r.partial, &ArtifactWriteError{Path: a.Path, Err: err})
			continue
		}
		r.log.Debug("fixed flow written", "path", a.Path, "bytes", len(a.Content))
		r.outcome.Written = append(r.outcome.Written, a.Path)
	}
}
