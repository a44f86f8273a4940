package prompt

import (
	"context"

	"flowscanner/internal/rules"
)

// Scripted answers every prompt with preset values. It drives
// non-interactive runs and tests.
//
// Zero values select every target, reuse cached results, proceed with an
// empty config, keep the preselected rules and accept placeholders.
type Scripted struct {
	Targets     []string
	Reuse       ReuseChoice
	EmptyConfig EmptyConfigChoice
	Rules       []string
	// Expressions maps rule names to answers; an empty answer clears the
	// expression.
	Expressions map[string]string
	// DismissExpressions dismisses every expression prompt.
	DismissExpressions bool
	// Actions are returned by ChooseAction in order.
	Actions []Action

	// Asked records prompt names in call order.
	Asked []string
}

var _ Prompter = (*Scripted)(nil)

func (s *Scripted) SelectTargets(ctx context.Context, candidates []string) ([]string, error) {
	s.Asked = append(s.Asked, "targets")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Targets != nil {
		return s.Targets, nil
	}
	return candidates, nil
}

func (s *Scripted) ChooseReuse(ctx context.Context, cached int) (ReuseChoice, error) {
	s.Asked = append(s.Asked, "reuse")
	if err := ctx.Err(); err != nil {
		return ReuseCancel, err
	}
	if s.Reuse == "" {
		return ReuseLast, nil
	}
	return s.Reuse, nil
}

func (s *Scripted) ChooseEmptyConfig(ctx context.Context) (EmptyConfigChoice, error) {
	s.Asked = append(s.Asked, "empty-config")
	if err := ctx.Err(); err != nil {
		return EmptyConfigCancel, err
	}
	if s.EmptyConfig == "" {
		return EmptyConfigProceed, nil
	}
	return s.EmptyConfig, nil
}

func (s *Scripted) SelectRules(ctx context.Context, catalog []rules.CatalogEntry, preselected []string) ([]string, error) {
	s.Asked = append(s.Asked, "rules")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Rules != nil {
		return s.Rules, nil
	}
	return preselected, nil
}

func (s *Scripted) PromptExpression(ctx context.Context, rule, current, placeholder string) (string, bool, error) {
	s.Asked = append(s.Asked, "expression:"+rule)
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if s.DismissExpressions {
		return "", false, nil
	}
	if v, ok := s.Expressions[rule]; ok {
		return v, true, nil
	}
	if current != "" {
		return current, true, nil
	}
	return placeholder, placeholder != "", nil
}
