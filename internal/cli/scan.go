package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"flowscanner/internal/flags"
	"flowscanner/internal/session"
	"flowscanner/internal/targets"
	"flowscanner/internal/watch"
)

const outputHelp = `Output:
	Console output is controlled by --console-format (default: text) and can be
	limited to some severities with --console-severity.
	Structured outputs can be written via:
	- --out / --out-format: json, ndjson, csv or sarif file
	- --report: Markdown summary
	- --emit: additional structured stream on stdout (json or ndjson)
	- --no-console: suppress the console sink

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (session.started, flow.result, advisory, session.finished,
	run.finished). Flow results carry "artifact" and "violations" fields.

Exit codes:
	0 = no violations
	1 = violations found
	2 = partial failure (e.g. a fixed file or the rule config could not be written)
	3 = fatal error (the operation did not run)`

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan flow files",
	Long: `Scan flow files with the rules of the workspace configuration.

Without paths, every flow under --root is offered for selection. Paths may
be files or directories.

The rule configuration is discovered under --root (.flow-scanner.yml and
friends). Without one, every rule the engine knows is enabled at error
severity and written to .flow-scanner.yml.

` + outputHelp + `

Examples:
	flowscanner scan
	flowscanner scan force-app/main/default/flows --out results.sarif
	flowscanner scan --non-interactive --no-console --emit ndjson
	flowscanner scan --watch
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), true)
		if err != nil {
			return exitWith(3, err)
		}
		code := a.run(cmd.Context(), session.OpScan, args)
		if cfg.Runtime.Watch && code != 3 {
			code = watchAndRescan(cmd.Context(), a, args)
		}
		return exitWith(a.finish(code), nil)
	},
}

// watchAndRescan re-scans on every change until the context is done. Later
// scans cover the given paths, or the whole root, without prompting.
func watchAndRescan(ctx context.Context, a *app, paths []string) int {
	if len(paths) == 0 {
		paths = []string{a.cfg.Targeting.Root}
	}
	a.session.Reset = false

	configNames := make(map[string]struct{})
	for _, c := range a.resolver.Candidates(a.cfg.Targeting.Root) {
		configNames[filepath.Base(c)] = struct{}{}
	}
	w := &watch.Watcher{
		Root:     a.cfg.Targeting.Root,
		Debounce: watch.DefaultDebounce,
		Logger:   a.logger,
		Relevant: func(p string) bool {
			base := filepath.Base(p)
			if _, ok := configNames[base]; ok {
				return true
			}
			return targets.IsFlowFile(base)
		},
	}

	a.presenter.Notify(ctx, "Watching "+a.cfg.Targeting.Root+" for changes. Press Ctrl+C to stop.")
	code := 0
	err := w.Run(ctx, func(ctx context.Context) {
		code = a.run(ctx, session.OpScan, paths)
	})
	if err != nil {
		a.logger.Error("watch stopped", "error", err)
		return 3
	}
	return code
}

func addTargetingFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&cfg.Targeting.Include, flags.FlagInclude, nil, "Include pattern(s) (repeatable; comma-separated accepted). Go path.Match style; if pattern contains '/', matches the path relative to --root, else the file name")
	cmd.Flags().StringSliceVar(&cfg.Targeting.Exclude, flags.FlagExclude, nil, "Exclude pattern(s) (repeatable; comma-separated accepted). Same matching rules as --include")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	cmd.Flags().StringSliceVar(&cfg.Output.ConsoleSeverity, flags.FlagConsoleSeverity, nil, "Only show violations of these severities on the console (error, warning). Comma-separated.")
	cmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	cmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	cmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson|csv|sarif (default: inferred from file extension)")
	cmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	cmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addTargetingFlags(scanCmd)
	addOutputFlags(scanCmd)
	scanCmd.Flags().BoolVar(&cfg.Rules.Reset, flags.FlagReset, false, "Choose the enabled rules before scanning")
	scanCmd.Flags().BoolVar(&cfg.Runtime.Watch, flags.FlagWatch, false, "Re-scan when flows or the rule configuration change")
}
