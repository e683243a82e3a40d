// Package archive persists completed evaluation runs to Postgres. The
// archive is optional; the JSON result record remains the primary durable
// output and the two carry the same per-episode projection.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Archive writes evaluation runs to Postgres.
type Archive struct {
	pool DBPool
	log  *zap.Logger
}

// RunMeta identifies one archived evaluation run.
type RunMeta struct {
	RunID          string
	Model          string
	PromptTemplate string
	StartedAt      time.Time
	Duration       time.Duration
}

// New creates an archive instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Archive, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Archive{
		pool: pool,
		log:  logger.Named("archive"),
	}, nil
}

const sqlInsertRun = `
    INSERT INTO eval_runs (id, model, prompt_template, started_at, duration_ms,
        total_episodes, episode_success_rate, average_step_accuracy, total_steps, total_correct_steps)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// ArchiveRun stores the run metadata, aggregate metrics, and per-episode
// projections in a single transaction.
func (a *Archive) ArchiveRun(ctx context.Context, meta RunMeta, record schemas.ResultRecord) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			a.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	agg := record.AggregateMetrics
	if _, err := tx.Exec(ctx, sqlInsertRun,
		meta.RunID, meta.Model, meta.PromptTemplate, meta.StartedAt.UTC(), meta.Duration.Milliseconds(),
		agg.TotalEpisodes, agg.EpisodeSuccessRate, agg.AverageStepAccuracy, agg.TotalSteps, agg.TotalCorrectSteps,
	); err != nil {
		return fmt.Errorf("failed to insert run row: %w", err)
	}

	if len(record.EpisodeResults) > 0 {
		if err := a.archiveEpisodes(ctx, tx, meta.RunID, record.EpisodeResults); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.log.Info("Run archived",
		zap.String("run_id", meta.RunID),
		zap.Int("episodes", len(record.EpisodeResults)),
	)
	return nil
}

func (a *Archive) archiveEpisodes(ctx context.Context, tx pgx.Tx, runID string, records []schemas.EpisodeResultRecord) error {
	rows := make([][]any, len(records))
	for i, r := range records {
		failurePoints := r.FailurePoints
		if failurePoints == nil {
			failurePoints = []int{}
		}
		rows[i] = []any{
			runID, r.EpisodeID, r.Goal, r.StepAccuracy, r.EpisodeSuccess,
			r.TotalSteps, r.CorrectSteps, failurePoints,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"eval_episode_results"},
		[]string{"run_id", "episode_id", "goal", "step_accuracy", "episode_success", "total_steps", "correct_steps", "failure_points"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy episode results: %w", err)
	}
	if int(copyCount) != len(records) {
		return fmt.Errorf("mismatch in copied episode count: expected %d, got %d", len(records), copyCount)
	}
	return nil
}
