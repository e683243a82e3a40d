// Package eval implements the episode-stepping loop, the in-memory result
// store, and the aggregate-metrics computation.
package eval

import (
	"context"

	"go.uber.org/zap"

	"github.com/spencerj41/droidmark-cli/api/schemas"
	"github.com/spencerj41/droidmark-cli/internal/action"
)

// Evaluator steps an agent through episodes and scores each step against
// the recorded ground truth.
type Evaluator struct {
	store  *ResultStore
	logger *zap.Logger
}

// New creates an evaluator that appends results to the given store.
func New(store *ResultStore, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		store:  store,
		logger: logger.Named("evaluator"),
	}
}

// Store exposes the backing result store for aggregation and serialization.
func (e *Evaluator) Store() *ResultStore {
	return e.store
}

// EvaluateEpisode runs the agent over one episode and returns its scored
// result. The agent's history is reset before the first step. The terminal
// observation represents the state after the last ground-truth action and
// is never acted upon. A failing agent call records the "ERROR" sentinel
// and a failure point for that step, then evaluation continues; a single
// bad step is never fatal to the episode.
//
// Context cancellation stops stepping early but still yields a well-formed
// result covering the steps already evaluated.
func (e *Evaluator) EvaluateEpisode(ctx context.Context, agent schemas.Agent, episode schemas.Episode) schemas.EpisodeResult {
	agent.ResetHistory()

	log := e.logger.With(zap.String("episode_id", episode.EpisodeID))
	log.Info("Starting episode", zap.String("goal", episode.Goal))

	agentActions := []string{}
	failurePoints := []int{}
	correctSteps := 0

	steps := len(episode.Observations) - 1
	if steps < 0 {
		steps = 0
	}

	for i := 0; i < steps; i++ {
		if ctx.Err() != nil {
			log.Warn("Episode evaluation cancelled", zap.Int("steps_completed", i))
			break
		}

		obs := episode.Observations[i]
		actionText, err := agent.GenerateAction(ctx, episode.Goal, obs)
		if err != nil {
			log.Error("Agent failed to produce an action", zap.Int("step", i), zap.Error(err))
			agentActions = append(agentActions, schemas.ErrorAction)
			failurePoints = append(failurePoints, i)
			continue
		}
		agentActions = append(agentActions, actionText)

		if i >= len(episode.Actions) {
			// The agent produced more steps than the trace has ground
			// truth for; extra steps are not compared.
			continue
		}

		groundTruth := episode.Actions[i]
		matched := action.Matches(actionText, groundTruth)
		if matched {
			correctSteps++
		} else {
			failurePoints = append(failurePoints, i)
		}

		log.Debug("Step scored",
			zap.Int("step", i),
			zap.String("agent_action", actionText),
			zap.String("ground_truth", groundTruth),
			zap.Bool("matched", matched),
			zap.Bool("target_visible", action.ValidateTarget(action.Normalize(actionText), obs.UIElements)),
		)
	}

	totalSteps := len(episode.Actions)
	stepAccuracy := 0.0
	if totalSteps > 0 {
		stepAccuracy = float64(correctSteps) / float64(totalSteps)
	}

	result := schemas.EpisodeResult{
		EpisodeID:          episode.EpisodeID,
		Goal:               episode.Goal,
		TotalSteps:         totalSteps,
		CorrectSteps:       correctSteps,
		StepAccuracy:       stepAccuracy,
		EpisodeSuccess:     len(failurePoints) == 0,
		AgentActions:       agentActions,
		GroundTruthActions: episode.Actions,
		FailurePoints:      failurePoints,
	}

	e.store.Append(result)

	log.Info("Episode completed",
		zap.Bool("success", result.EpisodeSuccess),
		zap.Float64("step_accuracy", result.StepAccuracy),
		zap.Int("failure_points", len(result.FailurePoints)),
	)
	return result
}
