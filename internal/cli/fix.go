package cli

import (
	"github.com/spf13/cobra"

	"flowscanner/internal/session"
)

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Apply automatic fixes to flow files",
	Long: `Scan flow files and apply the fixes the scanner engine supports, writing
fixed files in place.

Only unused variables and unconnected elements are fixed automatically.
Fixed flows are re-reported; when nothing could be fixed the scan results
are shown instead.

In the interactive menu, fix offers to reuse the results of the last scan.

` + outputHelp + `

Examples:
	flowscanner fix
	flowscanner fix force-app/main/default/flows/Lead_Assign.flow-meta.xml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), true)
		if err != nil {
			return exitWith(3, err)
		}
		code := a.run(cmd.Context(), session.OpFix, args)
		return exitWith(a.finish(code), nil)
	},
}

func init() {
	rootCmd.AddCommand(fixCmd)
	addTargetingFlags(fixCmd)
	addOutputFlags(fixCmd)
}
