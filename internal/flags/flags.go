package flags

// Package flags defines canonical CLI flag names shared across commands and
// config validation messages.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Rules.NamingConvention, flags.FlagNamingConvention, "", "...")
//	arg := "--" + flags.FlagNamingConvention
const (
	// Targeting
	FlagRoot    = "root"
	FlagInclude = "include"
	FlagExclude = "exclude"

	// Rules
	FlagNamingConvention = "naming-convention"
	FlagAPIVersion       = "api-version"
	FlagReset            = "reset"

	// Output
	FlagConsoleFormat   = "console-format"
	FlagConsoleSeverity = "console-severity"
	FlagReport          = "report"
	FlagOut             = "out"
	FlagOutFormat       = "out-format"
	FlagEmit            = "emit"
	FlagNoConsole       = "no-console"

	// Runtime
	FlagEngine         = "engine"
	FlagNonInteractive = "non-interactive"
	FlagWatch          = "watch"
	FlagTimeout        = "timeout"
	FlagVerbose        = "verbose"
	FlagLogJSON        = "log-json"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvNamingConvention = "FLOWSCANNER_NAMING_CONVENTION"
	EnvAPIVersion       = "FLOWSCANNER_API_VERSION"
	EnvEngine           = "FLOWSCANNER_ENGINE"
)
