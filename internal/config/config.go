package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"flowscanner/internal/flags"
	"flowscanner/internal/output"
	"flowscanner/internal/rules"
	"flowscanner/internal/scanner/process"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep the flag
	// wiring in internal/cli in sync.
	Targeting Targeting
	Rules     Rules
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Root is the workspace directory holding flows and the rule config (see --root).
	Root string

	// Paths are explicit files or directories given as arguments. Empty means
	// every flow under Root.
	Paths []string

	// Include filters flow files using Go path.Match style (see --include).
	// If a pattern contains '/', it matches the path relative to Root; otherwise the file name.
	Include []string

	// Exclude filters flow files (see --exclude). Same matching rules as Include.
	Exclude []string
}

type Rules struct {
	// NamingConvention overrides the FlowName expression for this process
	// (see --naming-convention, FLOWSCANNER_NAMING_CONVENTION).
	NamingConvention string

	// APIVersion overrides the APIVersion expression for this process
	// (see --api-version, FLOWSCANNER_API_VERSION).
	APIVersion string

	// Reset runs the rule configuration workflow before scanning (see --reset).
	Reset bool
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleSeverity filters console output by violation severity (see --console-severity).
	// Allowed values: error, warning.
	ConsoleSeverity []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson, csv, sarif. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Engine is the scanner engine command (see --engine, FLOWSCANNER_ENGINE).
	Engine string

	// NonInteractive answers every prompt with its default (see --non-interactive).
	NonInteractive bool

	// Watch re-runs the scan when flows or the rule config change (see --watch).
	Watch bool

	// Timeout bounds a single operation. 0 means no limit (see --timeout).
	Timeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches diagnostics to JSON records.
	LogJSON bool
}

func New() *Config {
	return &Config{
		Targeting: Targeting{
			Root: ".",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
	}
}

// ApplyEnv fills settings that were left empty from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	fill := func(dst *string, key string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&c.Rules.NamingConvention, flags.EnvNamingConvention)
	fill(&c.Rules.APIVersion, flags.EnvAPIVersion)
	fill(&c.Runtime.Engine, flags.EnvEngine)
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Targeting.Include = splitCommaList(c.Targeting.Include)
	c.Targeting.Exclude = splitCommaList(c.Targeting.Exclude)
	c.Output.ConsoleSeverity = splitCommaList(c.Output.ConsoleSeverity)
	c.Output.Emit = splitCommaList(c.Output.Emit)

	// Targeting
	root := strings.TrimSpace(c.Targeting.Root)
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid --%s value: %w", flags.FlagRoot, err)
	}
	c.Targeting.Root = abs

	// Rules
	c.Rules.NamingConvention = strings.TrimSpace(c.Rules.NamingConvention)
	c.Rules.APIVersion = strings.TrimSpace(c.Rules.APIVersion)

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for i, sev := range c.Output.ConsoleSeverity {
		v := normalizeEnumValue(sev)
		if v != string(rules.SeverityError) && v != string(rules.SeverityWarning) {
			return fmt.Errorf("unsupported --console-severity value: %s (must be one of: error, warning)", sev)
		}
		c.Output.ConsoleSeverity[i] = v
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
		c.Output.Emit[i] = v
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			f, err := output.InferFormat(c.Output.Out)
			if err != nil {
				return fmt.Errorf("%w; use --out-format", err)
			}
			c.Output.OutFormat = f
		}
		switch c.Output.OutFormat {
		case output.FormatJSON, output.FormatNDJSON, output.FormatCSV, output.FormatSARIF:
		default:
			return fmt.Errorf("unsupported output format: %s (must be one of: json, ndjson, csv, sarif)", c.Output.OutFormat)
		}
	}

	// Runtime validation
	c.Runtime.Engine = strings.TrimSpace(c.Runtime.Engine)
	if c.Runtime.Engine == "" {
		c.Runtime.Engine = process.DefaultCommand
	}
	if c.Runtime.Timeout < 0 {
		return errors.New("--timeout must be >= 0")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
