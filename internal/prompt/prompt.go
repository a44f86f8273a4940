// Package prompt is the interactive capability used by scan, fix and
// configure sessions. Sessions depend only on Prompter so they can run
// headless with scripted answers.
package prompt

import (
	"context"
	"errors"

	"flowscanner/internal/rules"
)

// ErrCancelled is returned when the user dismisses a prompt.
var ErrCancelled = errors.New("selection cancelled")

// ReuseChoice answers whether fix should act on the cached scan results.
type ReuseChoice string

const (
	ReuseLast     ReuseChoice = "reuse"
	ReuseReselect ReuseChoice = "reselect"
	ReuseCancel   ReuseChoice = "cancel"
)

// EmptyConfigChoice answers what to do when the resolved config has no rules.
type EmptyConfigChoice string

const (
	EmptyConfigConfigure EmptyConfigChoice = "configure"
	EmptyConfigProceed   EmptyConfigChoice = "proceed"
	EmptyConfigCancel    EmptyConfigChoice = "cancel"
)

// Prompter asks the user for decisions. Implementations return ErrCancelled
// (or the Cancel choice) when the user backs out.
type Prompter interface {
	// SelectTargets picks flow files among candidates. An empty result means
	// nothing was selected.
	SelectTargets(ctx context.Context, candidates []string) ([]string, error)
	ChooseReuse(ctx context.Context, cached int) (ReuseChoice, error)
	ChooseEmptyConfig(ctx context.Context) (EmptyConfigChoice, error)
	// SelectRules picks rule names from catalog with preselected checked.
	SelectRules(ctx context.Context, catalog []rules.CatalogEntry, preselected []string) ([]string, error)
	// PromptExpression asks for a rule expression. ok is false when the
	// prompt was dismissed, which leaves the expression unchanged. An empty
	// value clears it.
	PromptExpression(ctx context.Context, rule, current, placeholder string) (value string, ok bool, err error)
}

// Reuse labels match the choices offered by the fix workflow.
const (
	labelReuse    = "Use last scan results"
	labelReselect = "Select different files to fix"
	labelCancel   = "Cancel"

	labelConfigure = "Configure Now"
	labelProceed   = "Scan Anyway"
)
