package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"flowscanner/internal/rules"
)

// Terminal prompts with huh forms. When input is not a terminal the forms
// run in accessible mode, reading numbered answers line by line.
type Terminal struct {
	In         io.Reader
	Out        io.Writer
	Accessible bool
	// Root shortens displayed target paths.
	Root string
}

var _ Prompter = (*Terminal)(nil)

// NewTerminal prompts on stdin/stderr.
func NewTerminal(root string) *Terminal {
	return &Terminal{
		In:         os.Stdin,
		Out:        os.Stderr,
		Accessible: !IsInteractive(os.Stdin),
		Root:       root,
	}
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (t *Terminal) run(ctx context.Context, fields ...huh.Field) error {
	form := huh.NewForm(huh.NewGroup(fields...)).
		WithAccessible(t.Accessible).
		WithShowHelp(!t.Accessible)
	if t.In != nil {
		form = form.WithInput(t.In)
	}
	if t.Out != nil {
		form = form.WithOutput(t.Out)
	}
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return ctx.Err()
}

func (t *Terminal) display(path string) string {
	if t.Root == "" {
		return path
	}
	if rel, err := filepath.Rel(t.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func (t *Terminal) SelectTargets(ctx context.Context, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	opts := make([]huh.Option[string], 0, len(candidates))
	for _, c := range candidates {
		opts = append(opts, huh.NewOption(t.display(c), c).Selected(true))
	}
	var selected []string
	field := huh.NewMultiSelect[string]().
		Title("Select flow files").
		Options(opts...).
		Filterable(true).
		Value(&selected)
	if err := t.run(ctx, field); err != nil {
		return nil, err
	}
	return selected, nil
}

func (t *Terminal) ChooseReuse(ctx context.Context, cached int) (ReuseChoice, error) {
	choice := ReuseLast
	field := huh.NewSelect[ReuseChoice]().
		Title(fmt.Sprintf("Fix the %d results from the last scan?", cached)).
		Options(
			huh.NewOption(labelReuse, ReuseLast),
			huh.NewOption(labelReselect, ReuseReselect),
			huh.NewOption(labelCancel, ReuseCancel),
		).
		Value(&choice)
	if err := t.run(ctx, field); err != nil {
		if errors.Is(err, ErrCancelled) {
			return ReuseCancel, nil
		}
		return ReuseCancel, err
	}
	return choice, nil
}

func (t *Terminal) ChooseEmptyConfig(ctx context.Context) (EmptyConfigChoice, error) {
	choice := EmptyConfigConfigure
	field := huh.NewSelect[EmptyConfigChoice]().
		Title("No rules are configured.").
		Description("Configure rules now, or scan with an empty rule set.").
		Options(
			huh.NewOption(labelConfigure, EmptyConfigConfigure),
			huh.NewOption(labelProceed, EmptyConfigProceed),
			huh.NewOption(labelCancel, EmptyConfigCancel),
		).
		Value(&choice)
	if err := t.run(ctx, field); err != nil {
		if errors.Is(err, ErrCancelled) {
			return EmptyConfigCancel, nil
		}
		return EmptyConfigCancel, err
	}
	return choice, nil
}

func (t *Terminal) SelectRules(ctx context.Context, catalog []rules.CatalogEntry, preselected []string) ([]string, error) {
	checked := make(map[string]bool, len(preselected))
	for _, n := range preselected {
		checked[n] = true
	}
	opts := make([]huh.Option[string], 0, len(catalog))
	for _, e := range catalog {
		label := rules.DisplayName(e.Name)
		if e.Label != "" && e.Label != e.Name {
			label += " - " + e.Label
		}
		opts = append(opts, huh.NewOption(label, e.Name).Selected(checked[e.Name]))
	}
	var selected []string
	field := huh.NewMultiSelect[string]().
		Title("Select rules to enable").
		Options(opts...).
		Filterable(true).
		Value(&selected)
	if err := t.run(ctx, field); err != nil {
		return nil, err
	}
	return selected, nil
}

func (t *Terminal) PromptExpression(ctx context.Context, rule, current, placeholder string) (string, bool, error) {
	value := current
	if value == "" {
		value = placeholder
	}
	title := fmt.Sprintf("Expression for %s", rules.DisplayName(rule))
	switch rule {
	case rules.RuleFlowName:
		title = "Define naming convention (regex) for FlowName"
	case rules.RuleAPIVersion:
		title = fmt.Sprintf("Set API version rule (e.g. %q)", rules.DefaultAPIVersion)
	}
	field := huh.NewInput().
		Title(title).
		Description("Leave empty to use the engine default.").
		Placeholder(placeholder).
		Value(&value)
	if err := t.run(ctx, field); err != nil {
		if errors.Is(err, ErrCancelled) {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(value), true, nil
}
