// Package benchmark orchestrates evaluation runs: sampling episodes,
// stepping agents through them, and persisting result records and reports.
package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spencerj41/droidmark-cli/api/schemas"
	"github.com/spencerj41/droidmark-cli/internal/agent"
	"github.com/spencerj41/droidmark-cli/internal/archive"
	"github.com/spencerj41/droidmark-cli/internal/config"
	"github.com/spencerj41/droidmark-cli/internal/eval"
	"github.com/spencerj41/droidmark-cli/internal/llmclient"
)

// Combination names one model/prompt-template pairing to benchmark.
type Combination struct {
	Model          string `json:"model"`
	PromptTemplate string `json:"prompt_template"`
}

// RunSummary describes one completed evaluation run.
type RunSummary struct {
	RunID          string                   `json:"run_id"`
	Model          string                   `json:"model"`
	PromptTemplate string                   `json:"prompt_template"`
	Metrics        schemas.AggregateMetrics `json:"metrics"`
	DurationSecs   float64                  `json:"duration_seconds"`
	ResultsFile    string                   `json:"results_file"`
}

// AgentBuilder constructs a fresh agent for one episode. Each episode gets
// its own agent so history never crosses episode or goroutine boundaries.
type AgentBuilder func(ctx context.Context) (schemas.Agent, error)

// Archiver persists a completed run to durable storage.
type Archiver interface {
	ArchiveRun(ctx context.Context, meta archive.RunMeta, record schemas.ResultRecord) error
}

// Runner executes evaluation runs over a fixed episode source.
type Runner struct {
	cfg      *config.Config
	source   schemas.EpisodeSource
	logger   *zap.Logger
	archiver Archiver

	// buildAgent is swappable for tests; the default wires the LLM client
	// factory, the shared rate limiter, and the episode agent.
	buildAgent func(ctx context.Context, model, template string) (AgentBuilder, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithAgentBuilder replaces the default agent construction, used by tests
// to inject scripted agents.
func WithAgentBuilder(f func(ctx context.Context, model, template string) (AgentBuilder, error)) Option {
	return func(r *Runner) { r.buildAgent = f }
}

// WithArchiver attaches an optional run archive.
func WithArchiver(a Archiver) Option {
	return func(r *Runner) { r.archiver = a }
}

// NewRunner creates a runner over the given episode source.
func NewRunner(cfg *config.Config, source schemas.EpisodeSource, logger *zap.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		source: source,
		logger: logger.Named("benchmark"),
	}
	r.buildAgent = r.defaultAgentBuilder
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) defaultAgentBuilder(ctx context.Context, model, template string) (AgentBuilder, error) {
	modelCfg, ok := r.cfg.LLM.Models[model]
	if !ok {
		return nil, fmt.Errorf("model %q is not defined under llm.models", model)
	}

	client, err := llmclient.NewClient(ctx, modelCfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM client for %q: %w", model, err)
	}
	// One limiter per run; all episode agents share it.
	throttled := llmclient.NewThrottled(client, r.cfg.LLM.RequestsPerMinute)

	return func(ctx context.Context) (schemas.Agent, error) {
		return agent.New(throttled, template, modelCfg, r.logger)
	}, nil
}

// RunSingle evaluates one model/template combination over a fresh episode
// sample and persists the result record. Per-episode failures are scored,
// not raised; only configuration problems return an error.
func (r *Runner) RunSingle(ctx context.Context, combo Combination) (RunSummary, error) {
	runID := uuid.NewString()
	log := r.logger.With(
		zap.String("run_id", runID),
		zap.String("model", combo.Model),
		zap.String("prompt_template", combo.PromptTemplate),
	)
	log.Info("Starting benchmark run", zap.Int("requested_episodes", r.cfg.Eval.NumEpisodes))

	builder, err := r.buildAgent(ctx, combo.Model, combo.PromptTemplate)
	if err != nil {
		return RunSummary{}, err
	}

	episodes := r.source.Sample(r.cfg.Eval.NumEpisodes)
	if len(episodes) == 0 {
		log.Warn("No episodes available to sample; producing an empty record")
	}

	store := eval.NewResultStore()
	evaluator := eval.New(store, r.logger)
	started := time.Now()

	// Steps within an episode are strictly sequential; episodes are
	// independent and may run concurrently. Store appends are serialized,
	// so results land in completion order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Eval.Concurrency)
	for _, ep := range episodes {
		g.Go(func() error {
			a, err := builder(gctx)
			if err != nil {
				// Agent construction failing is a configuration problem,
				// not a step failure; abort the run.
				return fmt.Errorf("failed to build agent for episode %s: %w", ep.EpisodeID, err)
			}
			evaluator.EvaluateEpisode(gctx, a, ep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return RunSummary{}, err
	}

	duration := time.Since(started)
	record := store.Record()

	if err := os.MkdirAll(r.cfg.Eval.OutputDir, 0o755); err != nil {
		return RunSummary{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	resultsFile := filepath.Join(r.cfg.Eval.OutputDir,
		fmt.Sprintf("results_%s_%s.json", combo.Model, combo.PromptTemplate))
	if err := store.SaveFile(resultsFile); err != nil {
		return RunSummary{}, err
	}

	if r.archiver != nil {
		meta := archive.RunMeta{
			RunID:          runID,
			Model:          combo.Model,
			PromptTemplate: combo.PromptTemplate,
			StartedAt:      started,
			Duration:       duration,
		}
		if err := r.archiver.ArchiveRun(ctx, meta, record); err != nil {
			// The JSON record on disk is the primary output; a failed
			// archive write is logged, not fatal.
			log.Error("Failed to archive run", zap.Error(err))
		}
	}

	summary := RunSummary{
		RunID:          runID,
		Model:          combo.Model,
		PromptTemplate: combo.PromptTemplate,
		Metrics:        record.AggregateMetrics,
		DurationSecs:   duration.Seconds(),
		ResultsFile:    resultsFile,
	}
	log.Info("Benchmark run completed",
		zap.Float64("episode_success_rate", summary.Metrics.EpisodeSuccessRate),
		zap.Float64("average_step_accuracy", summary.Metrics.AverageStepAccuracy),
		zap.Duration("duration", duration),
	)
	return summary, nil
}

// RunComparative evaluates every combination in order and writes the
// comparative analysis plus a final markdown report. A combination that
// fails to start is recorded and skipped; the remaining combinations still
// run.
func (r *Runner) RunComparative(ctx context.Context, combos []Combination) ([]RunSummary, error) {
	if len(combos) == 0 {
		return nil, fmt.Errorf("no model/template combinations configured")
	}

	summaries := make([]RunSummary, 0, len(combos))
	for _, combo := range combos {
		summary, err := r.RunSingle(ctx, combo)
		if err != nil {
			if ctx.Err() != nil {
				return summaries, ctx.Err()
			}
			r.logger.Error("Benchmark combination failed",
				zap.String("model", combo.Model),
				zap.String("prompt_template", combo.PromptTemplate),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, summary)
	}

	if err := writeComparative(r.cfg.Eval.OutputDir, summaries); err != nil {
		return summaries, err
	}
	if err := WriteFinalReport(filepath.Join(r.cfg.Eval.OutputDir, "final_report.md"), summaries); err != nil {
		return summaries, err
	}
	return summaries, nil
}
