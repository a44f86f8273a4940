package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flowscanner/internal/config"
	"flowscanner/internal/flags"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "flowscanner",
	Short: "Scan and fix Salesforce Flow metadata against configurable rules",
	Long: `flowscanner checks Salesforce Flow files against a configurable rule set,
fixes what the scanner engine can fix automatically, and keeps the rule
configuration of a workspace in a .flow-scanner.yml file.

Run without a command in a terminal to open the interactive menu. Scan
results are kept for the lifetime of that session, so "Fix flows" can act
on the last scan.

Examples:
	# Open the interactive menu
	flowscanner

	# Scan every flow under the current directory
	flowscanner scan --non-interactive

	# Fix the flows of a package directory
	flowscanner fix force-app/main/default/flows

	# Choose the enabled rules
	flowscanner config

	# List rules known to the scanner engine
	flowscanner rules list`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg.ApplyEnv(os.LookupEnv)
		if err := cfg.Validate(); err != nil {
			return exitWith(3, err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !interactive(cfg) {
			return cmd.Help()
		}
		return runInteractive(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.Targeting.Root, flags.FlagRoot, ".", "Workspace root holding flows and the rule configuration")
	pf.StringVar(&cfg.Runtime.Engine, flags.FlagEngine, "", "Scanner engine command (default: $FLOWSCANNER_ENGINE or flow-scanner-engine)")
	pf.StringVar(&cfg.Rules.NamingConvention, flags.FlagNamingConvention, "", "FlowName expression for this run (default: $FLOWSCANNER_NAMING_CONVENTION)")
	pf.StringVar(&cfg.Rules.APIVersion, flags.FlagAPIVersion, "", "APIVersion expression for this run, e.g. \">=50\" (default: $FLOWSCANNER_API_VERSION)")
	pf.BoolVar(&cfg.Runtime.NonInteractive, flags.FlagNonInteractive, false, "Never prompt; select every flow and keep the current rules")
	pf.DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, 0, "Timeout per operation (0 = none)")
	pf.BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable debug logging on stderr")
	pf.BoolVar(&cfg.Runtime.LogJSON, flags.FlagLogJSON, false, "Write logs as JSON")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 3
}
