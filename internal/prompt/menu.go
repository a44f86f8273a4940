package prompt

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
)

// Action is a top-level choice in the interactive menu.
type Action string

const (
	ActionScan      Action = "scan"
	ActionFix       Action = "fix"
	ActionConfigure Action = "configure"
	ActionQuit      Action = "quit"
)

// Menu picks the next action of an interactive run.
type Menu interface {
	ChooseAction(ctx context.Context) (Action, error)
}

var (
	_ Menu = (*Terminal)(nil)
	_ Menu = (*Scripted)(nil)
)

// ChooseAction treats a dismissed menu as quit.
func (t *Terminal) ChooseAction(ctx context.Context) (Action, error) {
	action := ActionScan
	field := huh.NewSelect[Action]().
		Title("Flow Scanner").
		Options(
			huh.NewOption("Scan flows", ActionScan),
			huh.NewOption("Fix flows", ActionFix),
			huh.NewOption("Configure rules", ActionConfigure),
			huh.NewOption("Quit", ActionQuit),
		).
		Value(&action)
	if err := t.run(ctx, field); err != nil {
		if errors.Is(err, ErrCancelled) {
			return ActionQuit, nil
		}
		return ActionQuit, err
	}
	return action, nil
}

// ChooseAction pops the next scripted action, then quits.
func (s *Scripted) ChooseAction(ctx context.Context) (Action, error) {
	s.Asked = append(s.Asked, "menu")
	if err := ctx.Err(); err != nil {
		return ActionQuit, err
	}
	if len(s.Actions) == 0 {
		return ActionQuit, nil
	}
	next := s.Actions[0]
	s.Actions = s.Actions[1:]
	return next, nil
}
