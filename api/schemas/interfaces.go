package schemas

import "context"

// Agent is the collaborator stepped by the evaluator. Implementations are
// stateful within one episode: the evaluator calls ResetHistory before the
// first step so that prompt context never leaks across episodes.
type Agent interface {
	// GenerateAction produces the agent's next action string for the given
	// goal and observation. A returned error marks the step as failed but
	// never aborts the episode.
	GenerateAction(ctx context.Context, goal string, obs Observation) (string, error)
	// ResetHistory clears all accumulated step context.
	ResetHistory()
}

// LLMClient abstracts a single language model endpoint.
type LLMClient interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// EpisodeSource provides recorded episodes for evaluation.
type EpisodeSource interface {
	// Episode returns the episode with the given ID.
	Episode(id string) (Episode, error)
	// Sample returns up to n distinct episodes, capped at the available
	// count, chosen without replacement.
	Sample(n int) []Episode
	// Len reports how many episodes are available.
	Len() int
}
