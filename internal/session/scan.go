package session

import (
	"context"
	"errors"

	"flowscanner/internal/cache"
	"flowscanner/internal/prompt"
	"flowscanner/internal/rules"
	"flowscanner/internal/ruleconfig"
	"flowscanner/internal/scanner"
)

// Scan selects targets, resolves the rule config, runs the engine and caches
// the results. Empty targets prompt for a selection among the workspace flows.
func (s *Session) Scan(ctx context.Context, targets []string) (*Outcome, error) {
	r := s.begin(OpScan)

	results, doc, err := s.scanTargets(ctx, r, targets, s.Reset)
	if err != nil {
		return s.finish(r, err)
	}

	cache.SetResults(s.Cache, results)
	cache.SetRuleConfig(s.Cache, doc)
	r.log.Info("scan finished", "flows", len(results), "violations", scanner.CountViolations(results))

	r.outcome.Results = results
	s.present(ctx, r, results)
	return s.finish(r, nil)
}

// scanTargets is the shared select, resolve, parse and scan path. It never
// touches the cache.
func (s *Session) scanTargets(ctx context.Context, r *run, targets []string, reset bool) ([]scanner.Result, *rules.Document, error) {
	paths, err := s.selectTargets(ctx, r, targets)
	if err != nil {
		return nil, nil, err
	}

	if reset {
		if _, err := s.configure(ctx, r); err != nil && !errors.Is(err, ErrSelectionCancelled) {
			return nil, nil, err
		}
	}

	doc, err := s.resolveConfig(ctx, r)
	if err != nil {
		return nil, nil, err
	}

	r.log.Debug("parsing flows", "count", len(paths))
	parsed, err := s.Engine.Parse(ctx, paths)
	if err != nil {
		return nil, nil, &EngineError{Stage: StageParse, Err: err}
	}
	r.log.Debug("scanning flows", "count", len(parsed), "rules", doc.Len())
	results, err := s.Engine.Scan(ctx, parsed, doc)
	if err != nil {
		return nil, nil, &EngineError{Stage: StageScan, Err: err}
	}
	if results == nil {
		results = []scanner.Result{}
	}
	return results, doc, nil
}

func (s *Session) selectTargets(ctx context.Context, r *run, targets []string) ([]string, error) {
	var paths []string
	switch {
	case len(targets) > 0 && s.Targets != nil:
		expanded, err := s.Targets.Expand(ctx, targets)
		if err != nil {
			return nil, err
		}
		paths = expanded
	case len(targets) > 0:
		paths = targets
	default:
		var candidates []string
		if s.Targets != nil {
			found, err := s.Targets.Find(ctx)
			if err != nil {
				return nil, err
			}
			candidates = found
		}
		selected, err := s.Prompter.SelectTargets(ctx, candidates)
		if err != nil {
			if errors.Is(err, prompt.ErrCancelled) {
				s.notify(ctx, r, MsgNoTargets)
			}
			return nil, err
		}
		paths = selected
	}

	if len(paths) == 0 {
		s.notify(ctx, r, MsgNoTargets)
		return nil, ErrSelectionCancelled
	}
	r.log.Debug("targets selected", "count", len(paths))
	return paths, nil
}

// resolveConfig resolves the rule document and handles an empty one. A
// config write failure is recorded as partial and the session continues with
// the in-memory document.
func (s *Session) resolveConfig(ctx context.Context, r *run) (*rules.Document, error) {
	doc, err := s.resolve(ctx, r)
	if err != nil {
		return nil, err
	}

	if doc.Len() == 0 {
		choice, err := s.Prompter.ChooseEmptyConfig(ctx)
		if err != nil {
			return nil, err
		}
		switch choice {
		case prompt.EmptyConfigConfigure:
			configured, err := s.configure(ctx, r)
			if err != nil {
				return nil, err
			}
			doc = configured
		case prompt.EmptyConfigProceed:
			r.log.Info("scanning with an empty rule set")
		default:
			return nil, ErrSelectionCancelled
		}
	}

	r.outcome.Config = doc
	return doc, nil
}

func (s *Session) resolve(ctx context.Context, r *run) (*rules.Document, error) {
	doc, err := s.Resolver.Resolve(ctx, s.Root)
	if err == nil {
		return doc, nil
	}
	var werr *ruleconfig.ConfigWriteError
	if doc == nil || !errors.As(err, &werr) {
		return nil, err
	}
	r.log.Warn("rule config not persisted, continuing with in-memory config", "path", werr.Path, "error", werr.Err)
	r.partial = append(r.partial, err)
	return doc, nil
}
