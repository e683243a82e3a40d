package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spencerj41/droidmark-cli/api/schemas"
	"github.com/spencerj41/droidmark-cli/internal/config"
)

// fakeLLMClient returns a canned reply and captures the last request.
type fakeLLMClient struct {
	reply   string
	err     error
	lastReq schemas.GenerationRequest
	calls   int
}

func (c *fakeLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	c.calls++
	c.lastReq = req
	return c.reply, c.err
}

func testModelConfig() config.LLMModelConfig {
	return config.LLMModelConfig{
		Provider:    config.ProviderGemini,
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		MaxTokens:   100,
	}
}

func TestNewRejectsUnknownTemplate(t *testing.T) {
	_, err := New(&fakeLLMClient{}, "chain_of_thought", testModelConfig(), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown prompt template")
}

func TestGenerateActionNormalizesReply(t *testing.T) {
	client := &fakeLLMClient{reply: "The best next step is click('Settings') I believe."}
	a, err := New(client, config.TemplateBase, testModelConfig(), zap.NewNop())
	require.NoError(t, err)

	got, err := a.GenerateAction(context.Background(), "Open settings", schemas.Observation{
		App:        "home",
		UIElements: []string{"Settings", "Chrome"},
	})
	require.NoError(t, err)
	assert.Equal(t, `CLICK("Settings")`, got)

	assert.Equal(t, systemPrompt, client.lastReq.SystemPrompt)
	assert.InDelta(t, 0.2, client.lastReq.Options.Temperature, 1e-6)
	assert.Equal(t, 100, client.lastReq.Options.MaxTokens)
}

func TestGenerateActionUnparseableReplyPassesThrough(t *testing.T) {
	client := &fakeLLMClient{reply: "  I am not sure what to do.  "}
	a, err := New(client, config.TemplateBase, testModelConfig(), zap.NewNop())
	require.NoError(t, err)

	got, err := a.GenerateAction(context.Background(), "Open settings", schemas.Observation{})
	require.NoError(t, err)
	assert.Equal(t, "I am not sure what to do.", got)
}

func TestGenerateActionPropagatesClientError(t *testing.T) {
	client := &fakeLLMClient{err: errors.New("rate limited")}
	a, err := New(client, config.TemplateBase, testModelConfig(), zap.NewNop())
	require.NoError(t, err)

	_, err = a.GenerateAction(context.Background(), "Open settings", schemas.Observation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Zero(t, a.HistoryLen())
}

func TestResetHistory(t *testing.T) {
	client := &fakeLLMClient{reply: `CLICK("A")`}
	a, err := New(client, config.TemplateBase, testModelConfig(), zap.NewNop())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := a.GenerateAction(context.Background(), "goal", schemas.Observation{})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, a.HistoryLen())

	a.ResetHistory()
	assert.Zero(t, a.HistoryLen())
}
