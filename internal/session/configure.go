package session

import (
	"context"
	"errors"
	"fmt"

	"flowscanner/internal/cache"
	"flowscanner/internal/prompt"
	"flowscanner/internal/rules"
	"flowscanner/internal/ruleconfig"
)

// Configure lets the user pick the enabled rules and the expressions of the
// parameterized ones, then persists the document when it changed.
func (s *Session) Configure(ctx context.Context) (*Outcome, error) {
	r := s.begin(OpConfigure)
	doc, err := s.configure(ctx, r)
	if err != nil {
		return s.finish(r, err)
	}
	r.outcome.Config = doc
	if r.outcome.Changed {
		s.notify(ctx, r, fmt.Sprintf(MsgConfigSaved, doc.Path))
	} else {
		s.notify(ctx, r, MsgConfigUnchanged)
	}
	return s.finish(r, nil)
}

func (s *Session) configure(ctx context.Context, r *run) (*rules.Document, error) {
	if s.Catalog == nil {
		return nil, errors.New("configure: rule catalog not available")
	}
	catalog, err := s.Catalog.Catalog(ctx)
	if err != nil {
		return nil, &EngineError{Stage: StageCatalog, Err: err}
	}

	current, err := s.resolve(ctx, r)
	if err != nil {
		return nil, err
	}

	var preselected []string
	if current.Len() == 0 {
		for _, e := range catalog.List() {
			preselected = append(preselected, e.Name)
		}
	} else {
		for _, name := range current.Names() {
			if catalog.Has(name) {
				preselected = append(preselected, name)
			}
		}
	}

	selected, err := s.Prompter.SelectRules(ctx, catalog.List(), preselected)
	if err != nil {
		return nil, err
	}

	next := rules.NewDocument(current.Path)
	for _, name := range selected {
		if !catalog.Has(name) {
			continue
		}
		entry, ok := current.Get(name)
		if !ok {
			entry = rules.Entry{Severity: rules.SeverityError}
		}
		next.Set(name, entry)
	}
	// Rules the catalog does not list cannot be offered, so they are kept.
	for _, name := range current.Names() {
		if !catalog.Has(name) {
			entry, _ := current.Get(name)
			next.Set(name, entry)
		}
	}

	for _, name := range []string{rules.RuleFlowName, rules.RuleAPIVersion} {
		entry, ok := next.Get(name)
		if !ok {
			continue
		}
		value, answered, err := s.Prompter.PromptExpression(ctx, name, entry.Expression, rules.DefaultExpression(name))
		if err != nil {
			if errors.Is(err, prompt.ErrCancelled) {
				continue
			}
			return nil, err
		}
		if answered && value != entry.Expression {
			entry.Expression = value
			next.Set(name, entry)
		}
	}

	if !next.Equal(current) {
		r.outcome.Changed = true
		if err := s.Resolver.Persist(ctx, s.Root, next); err != nil {
			var werr *ruleconfig.ConfigWriteError
			if !errors.As(err, &werr) {
				return nil, err
			}
			r.log.Warn("rule config not persisted", "path", werr.Path, "error", werr.Err)
			r.partial = append(r.partial, err)
		} else {
			r.log.Info("rule config updated", "path", next.Path, "rules", next.Len())
		}
	}

	cache.SetRuleConfig(s.Cache, next)
	return next, nil
}
