package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"flowscanner/internal/cache"
	"flowscanner/internal/config"
	"flowscanner/internal/logging"
	"flowscanner/internal/output"
	"flowscanner/internal/prompt"
	"flowscanner/internal/ruleconfig"
	"flowscanner/internal/scanner"
	"flowscanner/internal/scanner/process"
	"flowscanner/internal/session"
	"flowscanner/internal/targets"
)

// app holds the collaborators shared by every operation of one process, so
// an interactive run keeps a single result cache.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	engine    *process.Engine
	catalog   *scanner.CatalogLoader
	resolver  *ruleconfig.Resolver
	manager   *output.Manager
	presenter *output.Presenter
	session   *session.Session
	prompter  prompt.Prompter
	menu      prompt.Menu
	stderr    io.Writer
}

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func exitWith(code int, err error) error {
	if code == 0 && err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// interactive reports whether prompts should be shown.
func interactive(cfg *config.Config) bool {
	return !cfg.Runtime.NonInteractive && prompt.IsInteractive(os.Stdin)
}

func newApp(cfg *config.Config, stdout, stderr io.Writer, withSinks bool) (*app, error) {
	logger := logging.New(stderr, logging.Options{Verbose: cfg.Runtime.Verbose, JSON: cfg.Runtime.LogJSON})

	eng := process.New(cfg.Runtime.Engine)
	eng.Logger = logger
	catalog := scanner.NewCatalogLoader(eng)
	resolver := &ruleconfig.Resolver{
		Catalog: catalog,
		Overrides: ruleconfig.Overrides{
			NamingConvention: cfg.Rules.NamingConvention,
			APIVersion:       cfg.Rules.APIVersion,
		},
		Logger: logger,
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		engine:   eng,
		catalog:  catalog,
		resolver: resolver,
		stderr:   stderr,
	}

	if interactive(cfg) {
		t := prompt.NewTerminal(cfg.Targeting.Root)
		a.prompter, a.menu = t, t
	} else {
		s := &prompt.Scripted{}
		a.prompter, a.menu = s, s
	}

	mgr := output.NewManager()
	if withSinks {
		var err error
		mgr, err = setupOutputManager(cfg, stdout)
		if err != nil {
			return nil, err
		}
	}
	a.manager = mgr
	a.presenter = output.NewPresenter(mgr, stderr, logger)

	a.session = &session.Session{
		Root:     cfg.Targeting.Root,
		Engine:   eng,
		Catalog:  catalog,
		Resolver: resolver,
		Targets: &targets.Finder{
			Root:    cfg.Targeting.Root,
			Include: cfg.Targeting.Include,
			Exclude: cfg.Targeting.Exclude,
		},
		Cache:     cache.NewMemory(),
		Prompter:  a.prompter,
		Presenter: a.presenter,
		Logger:    logger,
		Reset:     cfg.Rules.Reset,
	}
	return a, nil
}

func (a *app) Close() error {
	return a.manager.Close()
}

func setupOutputManager(cfg *config.Config, stdout io.Writer) (*output.Manager, error) {
	outMgr := output.NewManager()

	// Console Sink
	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(stdout, cfg.Output.ConsoleFormat, cfg.Output.ConsoleSeverity)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Emit Sinks (additional structured streams)
	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// File Sink
	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	// Report Sink
	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// operationContext applies --timeout.
func (a *app) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Runtime.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Runtime.Timeout)
	}
	return context.WithCancel(ctx)
}

// run executes one session operation and reports its exit status.
func (a *app) run(ctx context.Context, op session.Operation, paths []string) int {
	ctx, cancel := a.operationContext(ctx)
	defer cancel()

	var (
		outcome *session.Outcome
		err     error
	)
	switch op {
	case session.OpScan:
		outcome, err = a.session.Scan(ctx, paths)
	case session.OpFix:
		outcome, err = a.session.Fix(ctx, paths)
	case session.OpConfigure:
		outcome, err = a.session.Configure(ctx)
	default:
		err = fmt.Errorf("unknown operation %q", op)
	}

	code := session.ExitCode(outcome, err)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	if outcome != nil && outcome.Status == session.StatusCancelled {
		fmt.Fprintln(a.stderr, "Cancelled.")
	}
	return code
}

// finish records the exit code in the sinks and closes them. Sink failures
// turn a clean run into a partial one.
func (a *app) finish(code int) int {
	var errs []error
	if err := a.presenter.Finish(code); err != nil {
		errs = append(errs, err)
	}
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		if code < 2 {
			code = 2
		}
	}
	return code
}
