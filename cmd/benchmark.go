package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spencerj41/droidmark-cli/internal/benchmark"
	"github.com/spencerj41/droidmark-cli/internal/config"
	"github.com/spencerj41/droidmark-cli/internal/observability"
)

// newBenchmarkCmd creates and configures the `benchmark` command.
func newBenchmarkCmd() *cobra.Command {
	var models []string
	var templates []string

	benchCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run a comparative benchmark across models and prompt templates",
		Long: `Evaluates every model/template combination over freshly sampled episodes,
writes one result record per combination, a comparative analysis JSON, and a
final markdown report.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for flag, key := range map[string]string{
				"data-path":    "dataset.path",
				"num-episodes": "eval.num_episodes",
				"concurrency":  "eval.concurrency",
				"output-dir":   "eval.output_dir",
			} {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			resolved, err := config.NewFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			cfg = resolved

			combos := make([]benchmark.Combination, 0, len(models)*len(templates))
			for _, m := range models {
				for _, t := range templates {
					combos = append(combos, benchmark.Combination{Model: m, PromptTemplate: t})
				}
			}

			runner, cleanup, err := newRunner(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := runner.RunComparative(ctx, combos)
			if err != nil {
				return err
			}

			fmt.Printf("\nBenchmark completed: %d/%d combinations succeeded.\n", len(summaries), len(combos))
			fmt.Printf("View final report: %s\n", filepath.Join(cfg.Eval.OutputDir, "final_report.md"))
			return nil
		},
	}

	benchCmd.Flags().StringSliceVar(&models, "models", []string{"gemini-flash"}, "model keys under llm.models to benchmark")
	benchCmd.Flags().StringSliceVar(&templates, "templates", []string{config.TemplateBase}, "prompt templates to benchmark")
	benchCmd.Flags().String("data-path", "", "path to the Android World episode dataset")
	benchCmd.Flags().Int("num-episodes", 0, "number of episodes to sample per combination")
	benchCmd.Flags().Int("concurrency", 0, "episodes evaluated in parallel")
	benchCmd.Flags().String("output-dir", "", "directory for result records and reports")

	return benchCmd
}
