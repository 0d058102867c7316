package cli

import (
	"github.com/spf13/cobra"

	"github.com/osmo-tool/osmo/internal/config"
	"github.com/osmo-tool/osmo/report"
)

// AddKindsCommand registers the kinds command, which lists the registered
// algorithms, end condition specs, error strategies, and report formats.
func AddKindsCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List available algorithms, end conditions, strategies, and report formats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println("Algorithms:")
			for _, name := range config.AlgorithmNames() {
				cmd.Println("  " + name)
			}
			cmd.Println("End conditions (compose with & and |):")
			for _, name := range config.EndConditionNames() {
				cmd.Println("  " + name)
			}
			cmd.Println("Error strategies:")
			for _, name := range config.StrategyNames() {
				cmd.Println("  " + name)
			}
			cmd.Println("Report formats:")
			for _, name := range report.Formats() {
				cmd.Println("  " + name)
			}
			return nil
		},
	}
	root.AddCommand(cmd)
}
