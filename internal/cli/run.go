package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/osmo-tool/osmo/engine"
	"github.com/osmo-tool/osmo/history"
	"github.com/osmo-tool/osmo/internal/config"
	"github.com/osmo-tool/osmo/internal/signal"
	"github.com/osmo-tool/osmo/model"
	"github.com/osmo-tool/osmo/report"
)

// AddRunCommand registers the run command, which drives the bundled demo
// model through the engine with the configured algorithm, end conditions,
// and error strategies.
func AddRunCommand(root *cobra.Command, _ *GlobalFlags) {
	flags := &RunFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and execute a test suite against the demo model",
		Long: `Run loads the layered configuration (flags > OSMO_* env > .osmo/config.yaml
> ~/.osmo/config.yaml > defaults), builds the engine, and generates a test
suite against the bundled vending machine model. The sealed history is
summarized on stdout and optionally rendered into report files.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSuite(cmd, flags)
		},
	}
	AddRunFlags(cmd, flags)
	root.AddCommand(cmd)
}

func runSuite(cmd *cobra.Command, flags *RunFlags) error {
	logger := GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, flags, cfg)

	if flags.DumpConfig {
		data, marshalErr := yaml.Marshal(cfg)
		if marshalErr != nil {
			return marshalErr
		}
		cmd.Print(string(data))
		return nil
	}

	cat, err := model.Collect(NewDemoModel())
	if err != nil {
		return err
	}

	engineCfg, err := cfg.Run.Resolve(cat.StepNames())
	if err != nil {
		return err
	}

	eng, err := engine.New(cat, engineCfg, logger)
	if err != nil {
		return err
	}

	handler := signal.NewHandler(cmd.Context())
	defer handler.Stop()

	hist, runErr := eng.Run(handler.Context())
	if hist != nil {
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(history.NewStatistics(hist), eng.Seed()))
		if len(cfg.Report.Formats) > 0 {
			if err := report.WriteAll(cmd.Context(), hist,
				cfg.Report.Dir, "osmo_report", cfg.Report.Title, cfg.Report.Formats); err != nil {
				logger.Error().Err(err).Msg("report rendering failed")
				if runErr == nil {
					runErr = err
				}
			} else {
				logger.Info().Str("dir", cfg.Report.Dir).
					Strs("formats", cfg.Report.Formats).Msg("reports written")
			}
		}
	}

	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

// applyRunFlags overlays set flags on top of the loaded configuration,
// the highest precedence layer.
func applyRunFlags(cmd *cobra.Command, flags *RunFlags, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		seed := flags.Seed
		cfg.Run.Seed = &seed
	}
	if cmd.Flags().Changed("algorithm") {
		cfg.Run.Algorithm = flags.Algorithm
	}
	if cmd.Flags().Changed("test-end") {
		cfg.Run.TestEndCondition = flags.TestEndCondition
	}
	if cmd.Flags().Changed("suite-end") {
		cfg.Run.SuiteEndCondition = flags.SuiteEndCondition
	}
	if cmd.Flags().Changed("test-errors") {
		cfg.Run.TestErrorStrategy = flags.TestErrorStrategy
	}
	if cmd.Flags().Changed("suite-errors") {
		cfg.Run.SuiteErrorStrategy = flags.SuiteErrorStrategy
	}
	if cmd.Flags().Changed("stop-on-fail") {
		cfg.Run.StopOnFail = flags.StopOnFail
	}
	if cmd.Flags().Changed("stop-test-on-exception") {
		cfg.Run.StopTestOnException = flags.StopTestOnException
	}
	if cmd.Flags().Changed("report") {
		cfg.Report.Formats = flags.ReportFormats
	}
	if cmd.Flags().Changed("report-dir") {
		cfg.Report.Dir = flags.ReportDir
	}
}
