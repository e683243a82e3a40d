package schemas

import "strings"

// ActionKind classifies a single UI action extracted from agent output.
type ActionKind string

const (
	ActionClick     ActionKind = "CLICK"
	ActionScroll    ActionKind = "SCROLL"
	ActionType      ActionKind = "TYPE"
	ActionSwipe     ActionKind = "SWIPE"
	ActionLongPress ActionKind = "LONG_PRESS"
	ActionUnknown   ActionKind = "UNKNOWN"
)

// ErrorAction is the sentinel action recorded for a step whose agent call
// failed. It is never produced by normalizing a successful reply.
const ErrorAction = "ERROR"

// Observation is a snapshot of interactive state presented to the agent
// before each step. Beyond App and UIElements the structure is opaque to
// the evaluation engine.
type Observation struct {
	App        string   `json:"app"`
	UIElements []string `json:"ui_elements"`
}

// Episode is one recorded task trace: a goal, the sequence of observations
// shown to the agent, and the ground-truth action strings that achieved the
// goal. Observations and actions are index aligned per step; an episode may
// carry one more observation than it has actions. The terminal observation
// is never acted upon.
type Episode struct {
	EpisodeID    string        `json:"episode_id"`
	Goal         string        `json:"goal"`
	Observations []Observation `json:"observations"`
	Actions      []string      `json:"actions"`
}

// NormalizedAction is the canonical, typed representation extracted from
// free-form agent output. Valid is false when no recognized pattern matched,
// in which case Raw carries the trimmed original text and Kind is UNKNOWN.
type NormalizedAction struct {
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target"`
	Raw    string     `json:"raw"`
	Valid  bool       `json:"valid"`
}

// Canonical returns the canonical string form of the action, KIND("target").
// For UNKNOWN actions the trimmed raw text is the canonical form.
func (a NormalizedAction) Canonical() string {
	if !a.Valid {
		return strings.TrimSpace(a.Raw)
	}
	return string(a.Kind) + `("` + a.Target + `")`
}

// StepOutcome records the result of a single acted-upon observation.
type StepOutcome struct {
	StepIndex   int    `json:"step_index"`
	AgentAction string `json:"agent_action"`
	Matched     bool   `json:"matched"`
}

// EpisodeResult holds the complete scoring of one evaluated episode. It is
// immutable after creation and owned by the result store.
type EpisodeResult struct {
	EpisodeID          string   `json:"episode_id"`
	Goal               string   `json:"goal"`
	TotalSteps         int      `json:"total_steps"`
	CorrectSteps       int      `json:"correct_steps"`
	StepAccuracy       float64  `json:"step_accuracy"`
	EpisodeSuccess     bool     `json:"episode_success"`
	AgentActions       []string `json:"agent_actions"`
	GroundTruthActions []string `json:"ground_truth_actions"`
	FailurePoints      []int    `json:"failure_points"`
}

// Record projects the result into its compact persisted form.
func (r EpisodeResult) Record() EpisodeResultRecord {
	return EpisodeResultRecord{
		EpisodeID:      r.EpisodeID,
		Goal:           r.Goal,
		StepAccuracy:   r.StepAccuracy,
		EpisodeSuccess: r.EpisodeSuccess,
		TotalSteps:     r.TotalSteps,
		CorrectSteps:   r.CorrectSteps,
		FailurePoints:  r.FailurePoints,
	}
}

// EpisodeResultRecord is the compact per-episode projection written to the
// persisted result record. The full agent and ground-truth action lists are
// intentionally omitted to keep records small; downstream reporting relies
// on exactly these field names.
type EpisodeResultRecord struct {
	EpisodeID      string  `json:"episode_id"`
	Goal           string  `json:"goal"`
	StepAccuracy   float64 `json:"step_accuracy"`
	EpisodeSuccess bool    `json:"episode_success"`
	TotalSteps     int     `json:"total_steps"`
	CorrectSteps   int     `json:"correct_steps"`
	FailurePoints  []int   `json:"failure_points"`
}

// AggregateMetrics is a derived view over all stored episode results,
// recomputed on demand.
type AggregateMetrics struct {
	TotalEpisodes       int     `json:"total_episodes"`
	EpisodeSuccessRate  float64 `json:"episode_success_rate"`
	AverageStepAccuracy float64 `json:"average_step_accuracy"`
	TotalSteps          int     `json:"total_steps"`
	TotalCorrectSteps   int     `json:"total_correct_steps"`
}

// ResultRecord is the durable document produced at the end of an evaluation
// run. The three top-level field names and their nesting are the
// compatibility contract for downstream reporting and plotting tools.
type ResultRecord struct {
	AggregateMetrics AggregateMetrics      `json:"aggregate_metrics"`
	FailureAnalysis  map[string]int        `json:"failure_analysis"`
	EpisodeResults   []EpisodeResultRecord `json:"episode_results"`
}

// GenerationOptions tunes a single LLM generation call.
type GenerationOptions struct {
	Temperature float32
	MaxTokens   int
}

// GenerationRequest carries the prompts and options for one LLM call.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Options      GenerationOptions
}
