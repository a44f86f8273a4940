package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"flowscanner/internal/rules"
)

var rulesListQuiet bool
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules of the scanner engine",
	Long: `List the rules the scanner engine can evaluate.

Rules are enabled and configured per workspace (see "flowscanner config").

Examples:
  # List all available rules
  flowscanner rules list
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rules",
	Long: `List all rules reported by the scanner engine, sorted by name.

Rules renamed by the engine are shown with their former name in parentheses.

Examples:
  flowscanner rules list
  flowscanner rules list -q
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return exitWith(3, err)
		}
		for _, e := range catalog.Sorted() {
			if rulesListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), e.Name)
			} else {
				printRule(cmd.OutOrStdout(), e)
			}
		}
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [rule]",
	Short: "Show details of a specific rule",
	Long: `Show details of a rule by its name or former name.

Examples:
  flowscanner rules show FlowName
  flowscanner rules show InvalidNamingConvention
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return exitWith(3, err)
		}
		e, ok := catalog.Lookup(args[0])
		if !ok {
			return exitWith(3, fmt.Errorf("rule not found: %s", args[0]))
		}
		printRule(cmd.OutOrStdout(), e)
		return nil
	},
}

func loadCatalog(cmd *cobra.Command) (*rules.Catalog, error) {
	a, err := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
	if err != nil {
		return nil, err
	}
	ctx, cancel := a.operationContext(cmd.Context())
	defer cancel()
	return a.catalog.Catalog(ctx)
}

func printRule(w io.Writer, e rules.CatalogEntry) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "RULE: %s\n", rules.DisplayName(e.Name))
	fmt.Fprintln(w, "----------------------------------------")
	if e.Label != "" {
		fmt.Fprintln(w, e.Label)
	}
	if e.Description != "" {
		fmt.Fprintln(w, e.Description)
	}

	if rules.IsParameterized(e.Name) {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Expression:")
		fmt.Fprintf(w, "  Default: %s\n", rules.DefaultExpression(e.Name))
	}
	fmt.Fprintln(w)
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().BoolVarP(&rulesListQuiet, "quiet", "q", false, "Only print rule names")
	rulesCmd.AddCommand(rulesShowCmd)
}
