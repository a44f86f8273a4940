package cli

import (
	"github.com/spf13/cobra"

	"flowscanner/internal/prompt"
	"flowscanner/internal/session"
)

// runInteractive loops over the menu with one app, so fix can reuse the
// results of an earlier scan.
func runInteractive(cmd *cobra.Command) error {
	a, err := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), true)
	if err != nil {
		return exitWith(3, err)
	}
	return exitWith(a.finish(menuLoop(cmd, a)), nil)
}

// menuLoop returns the exit code of the last operation.
func menuLoop(cmd *cobra.Command, a *app) int {
	ctx := cmd.Context()
	code := 0
	for {
		action, err := a.menu.ChooseAction(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return code
			}
			a.logger.Error("menu failed", "error", err)
			return 3
		}
		switch action {
		case prompt.ActionScan:
			code = a.run(ctx, session.OpScan, nil)
		case prompt.ActionFix:
			code = a.run(ctx, session.OpFix, nil)
		case prompt.ActionConfigure:
			code = a.run(ctx, session.OpConfigure, nil)
		default:
			return code
		}
	}
}
