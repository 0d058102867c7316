package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds flag values shared by all commands.
type GlobalFlags struct {
	// Verbose enables debug-level logging.
	Verbose bool

	// Quiet restricts logging to warnings and errors.
	Quiet bool
}

// AddGlobalFlags registers the persistent flags on the root command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "only log warnings and errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// RunFlags holds the run command's flag values. Set flags override the
// loaded configuration.
type RunFlags struct {
	Seed                int64
	Algorithm           string
	TestEndCondition    string
	SuiteEndCondition   string
	TestErrorStrategy   string
	SuiteErrorStrategy  string
	StopOnFail          bool
	StopTestOnException bool
	ReportFormats       []string
	ReportDir           string
	DumpConfig          bool
}

// AddRunFlags registers the run command's flags.
func AddRunFlags(cmd *cobra.Command, flags *RunFlags) {
	cmd.Flags().Int64Var(&flags.Seed, "seed", 0, "random seed (default: derived from current time)")
	cmd.Flags().StringVar(&flags.Algorithm, "algorithm", "", "step selection algorithm")
	cmd.Flags().StringVar(&flags.TestEndCondition, "test-end", "", "test end condition spec")
	cmd.Flags().StringVar(&flags.SuiteEndCondition, "suite-end", "", "suite end condition spec")
	cmd.Flags().StringVar(&flags.TestErrorStrategy, "test-errors", "", "test-level error strategy")
	cmd.Flags().StringVar(&flags.SuiteErrorStrategy, "suite-errors", "", "suite-level error strategy")
	cmd.Flags().BoolVar(&flags.StopOnFail, "stop-on-fail", false, "end the suite on any propagated test error")
	cmd.Flags().BoolVar(&flags.StopTestOnException, "stop-test-on-exception", false,
		"end the current test on any non-assertion error")
	cmd.Flags().StringSliceVar(&flags.ReportFormats, "report", nil, "report formats to write")
	cmd.Flags().StringVar(&flags.ReportDir, "report-dir", "", "report output directory")
	cmd.Flags().BoolVar(&flags.DumpConfig, "dump-config", false, "print the resolved configuration as YAML and exit")
}
