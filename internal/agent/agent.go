// Package agent implements the LLM-backed episode agent: prompt
// construction, per-episode history, and reply normalization.
package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spencerj41/droidmark-cli/api/schemas"
	"github.com/spencerj41/droidmark-cli/internal/action"
	"github.com/spencerj41/droidmark-cli/internal/config"
)

// historyEntry records one completed step of the current episode. History
// is kept so that future prompt templates can feed prior steps back into
// the context; the evaluator guarantees a reset between episodes.
type historyEntry struct {
	Observation schemas.Observation
	Action      string
	RawResponse string
}

// EpisodeAgent implements schemas.Agent on top of an LLMClient.
type EpisodeAgent struct {
	client   schemas.LLMClient
	template string
	options  schemas.GenerationOptions
	history  []historyEntry
	logger   *zap.Logger
}

// New builds an agent for one model configuration and prompt template. An
// unknown template name is a configuration error.
func New(client schemas.LLMClient, template string, modelCfg config.LLMModelConfig, logger *zap.Logger) (*EpisodeAgent, error) {
	valid := false
	for _, t := range config.PromptTemplates {
		if t == template {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown prompt template: %q (supported: %v)", template, config.PromptTemplates)
	}

	return &EpisodeAgent{
		client:   client,
		template: template,
		options: schemas.GenerationOptions{
			Temperature: modelCfg.Temperature,
			MaxTokens:   modelCfg.MaxTokens,
		},
		logger: logger.Named("agent"),
	}, nil
}

// GenerateAction produces the next action for the given goal and
// observation. The raw LLM reply is normalized into canonical form;
// unparseable replies pass through trimmed, which the matcher then treats
// as a non-match against any well-formed ground truth.
func (a *EpisodeAgent) GenerateAction(ctx context.Context, goal string, obs schemas.Observation) (string, error) {
	req := schemas.GenerationRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPrompt(a.template, goal, obs),
		Options:      a.options,
	}

	response, err := a.client.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}

	normalized := action.Normalize(response)
	canonical := normalized.Canonical()
	if !normalized.Valid {
		a.logger.Debug("Agent reply did not contain a recognizable action", zap.String("raw", normalized.Raw))
	}

	a.history = append(a.history, historyEntry{
		Observation: obs,
		Action:      canonical,
		RawResponse: response,
	})

	return canonical, nil
}

// ResetHistory clears all accumulated step context.
func (a *EpisodeAgent) ResetHistory() {
	a.history = nil
}

// HistoryLen reports how many steps the agent has taken since the last
// reset.
func (a *EpisodeAgent) HistoryLen() int {
	return len(a.history)
}
