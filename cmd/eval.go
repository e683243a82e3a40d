package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spencerj41/droidmark-cli/internal/archive"
	"github.com/spencerj41/droidmark-cli/internal/benchmark"
	"github.com/spencerj41/droidmark-cli/internal/config"
	"github.com/spencerj41/droidmark-cli/internal/dataset"
	"github.com/spencerj41/droidmark-cli/internal/observability"
)

// newEvalCmd creates and configures the `eval` command.
func newEvalCmd() *cobra.Command {
	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate one model/prompt-template combination over sampled episodes",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so CLI values override the
			// config file and environment with the right precedence.
			for flag, key := range map[string]string{
				"data-path":       "dataset.path",
				"model":           "eval.model",
				"prompt-template": "eval.prompt_template",
				"num-episodes":    "eval.num_episodes",
				"concurrency":     "eval.concurrency",
				"output-dir":      "eval.output_dir",
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

			// Flags were bound after the root PersistentPreRunE unmarshal;
			// re-resolve the config so the overrides take effect.
			resolved, err := config.NewFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			cfg = resolved

			runner, cleanup, err := newRunner(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := runner.RunSingle(ctx, benchmark.Combination{
				Model:          cfg.Eval.Model,
				PromptTemplate: cfg.Eval.PromptTemplate,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nEvaluation complete. Run ID: %s\n", summary.RunID)
			fmt.Printf("Episode success rate: %.2f\n", summary.Metrics.EpisodeSuccessRate)
			fmt.Printf("Average step accuracy: %.2f\n", summary.Metrics.AverageStepAccuracy)
			fmt.Printf("Results saved to: %s\n", summary.ResultsFile)
			return nil
		},
	}

	evalCmd.Flags().String("data-path", "", "path to the Android World episode dataset")
	evalCmd.Flags().String("model", "", "model key under llm.models to evaluate")
	evalCmd.Flags().String("prompt-template", "", "prompt template (base, few_shot, self_reflection)")
	evalCmd.Flags().Int("num-episodes", 0, "number of episodes to sample")
	evalCmd.Flags().Int("concurrency", 0, "episodes evaluated in parallel")
	evalCmd.Flags().String("output-dir", "", "directory for result records")

	return evalCmd
}

// newRunner wires the dataset, optional archive, and benchmark runner. The
// returned cleanup releases the database pool when the archive is enabled.
func newRunner(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*benchmark.Runner, func(), error) {
	env, err := dataset.Load(cfg.Dataset.Path, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	opts := []benchmark.Option{}

	if cfg.Archive.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Archive.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to archive database: %w", err)
		}
		arch, err := archive.New(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to initialize run archive: %w", err)
		}
		opts = append(opts, benchmark.WithArchiver(arch))
		cleanup = func() {
			pool.Close()
			logger.Debug("Archive connection pool closed")
		}
	}

	return benchmark.NewRunner(cfg, env, logger, opts...), cleanup, nil
}
