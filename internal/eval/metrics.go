package eval

import (
	"strings"

	"github.com/spencerj41/droidmark-cli/api/schemas"
)

// Failure analysis buckets. The taxonomy is deliberately coarse; new
// buckets can be added as new failure modes become worth tracking.
const (
	FailureLLMError   = "llm_error"
	FailureWrongClick = "wrong_click"
)

// Aggregator folds a fixed snapshot of episode results into cross-episode
// statistics and a failure taxonomy.
type Aggregator struct {
	results []schemas.EpisodeResult
}

// NewAggregator wraps a result snapshot for aggregation.
func NewAggregator(results []schemas.EpisodeResult) *Aggregator {
	return &Aggregator{results: results}
}

// Aggregate computes cross-episode statistics. With zero episodes it
// returns the zero value, there is no division by zero.
func (a *Aggregator) Aggregate() schemas.AggregateMetrics {
	if len(a.results) == 0 {
		return schemas.AggregateMetrics{}
	}

	var (
		successful    int
		accuracySum   float64
		totalSteps    int
		totalCorrects int
	)
	for _, r := range a.results {
		if r.EpisodeSuccess {
			successful++
		}
		accuracySum += r.StepAccuracy
		totalSteps += r.TotalSteps
		totalCorrects += r.CorrectSteps
	}

	n := len(a.results)
	return schemas.AggregateMetrics{
		TotalEpisodes:       n,
		EpisodeSuccessRate:  float64(successful) / float64(n),
		AverageStepAccuracy: accuracySum / float64(n),
		TotalSteps:          totalSteps,
		TotalCorrectSteps:   totalCorrects,
	}
}

// FailureAnalysis classifies the agent's action at every failure point of
// every unsuccessful episode. Counts increment per occurrence.
func (a *Aggregator) FailureAnalysis() map[string]int {
	failures := make(map[string]int)
	for _, r := range a.results {
		if r.EpisodeSuccess {
			continue
		}
		for _, fp := range r.FailurePoints {
			if fp >= len(r.AgentActions) {
				continue
			}
			agentAction := r.AgentActions[fp]
			switch {
			case strings.Contains(agentAction, schemas.ErrorAction):
				failures[FailureLLMError]++
			case strings.Contains(agentAction, string(schemas.ActionClick)):
				failures[FailureWrongClick]++
			}
		}
	}
	return failures
}
