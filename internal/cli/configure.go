package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"flowscanner/internal/ruleconfig"
	"flowscanner/internal/session"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Choose the enabled rules and their expressions",
	Long: `Choose which rules are enabled and set the expressions of the FlowName
and APIVersion rules. The configuration is written to the discovered rule
config file, or .flow-scanner.yml when there is none, only when it changed.

Examples:
	flowscanner config
	flowscanner config show
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
		if err != nil {
			return exitWith(3, err)
		}
		code := a.run(cmd.Context(), session.OpConfigure, nil)
		return exitWith(a.finish(code), nil)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the rule configuration of the workspace",
	Long: `Print the rule configuration file discovered under --root without
changing it. Files are searched in this order:

	.flow-scanner.json, flow-scanner.json, .flow-scanner.yml,
	.flow-scanner.yaml, flow-scanner.yaml, flow-scanner.yml, .flow-scanner
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := &ruleconfig.Resolver{}
		path, found, err := r.Discover(cfg.Targeting.Root)
		if err != nil {
			return exitWith(3, err)
		}
		if !found {
			fmt.Fprintf(cmd.ErrOrStderr(), "No rule configuration found under %s.\n", cfg.Targeting.Root)
			return nil
		}
		doc, err := r.Load(path)
		if err != nil {
			return exitWith(3, err)
		}
		data, err := ruleconfig.Encode(doc)
		if err != nil {
			return exitWith(3, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "# %s\n", path)
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
