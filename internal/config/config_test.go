package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10, cfg.Eval.NumEpisodes)
	assert.Equal(t, 1, cfg.Eval.Concurrency)
	assert.Equal(t, TemplateBase, cfg.Eval.PromptTemplate)
	assert.Equal(t, "gemini-flash", cfg.Eval.Model)
	assert.False(t, cfg.Archive.Enabled)

	model, ok := cfg.LLM.Models["gemini-flash"]
	require.True(t, ok)
	assert.Equal(t, ProviderGemini, model.Provider)
	assert.Equal(t, "gemini-2.5-flash", model.Model)
	assert.Equal(t, 150, model.MaxTokens)

	assert.NoError(t, cfg.Validate())
}

func TestNewFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("eval.num_episodes", 25)
	v.Set("eval.prompt_template", TemplateFewShot)

	cfg, err := NewFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Eval.NumEpisodes)
	assert.Equal(t, TemplateFewShot, cfg.Eval.PromptTemplate)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero episodes",
			mutate:  func(c *Config) { c.Eval.NumEpisodes = 0 },
			wantErr: "num_episodes",
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Eval.Concurrency = -2 },
			wantErr: "concurrency",
		},
		{
			name:    "unknown template",
			mutate:  func(c *Config) { c.Eval.PromptTemplate = "chain_of_thought" },
			wantErr: "prompt_template",
		},
		{
			name:    "model missing from catalog",
			mutate:  func(c *Config) { c.Eval.Model = "gpt-5" },
			wantErr: "not defined under llm.models",
		},
		{
			name: "archive enabled without URL",
			mutate: func(c *Config) {
				c.Archive.Enabled = true
				c.Archive.DatabaseURL = ""
			},
			wantErr: "DROIDMARK_DATABASE_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateEmptyModelAllowed(t *testing.T) {
	// An empty eval.model passes validation; the runner resolves models per
	// combination and reports its own error for an unknown key.
	cfg := NewDefaultConfig()
	cfg.Eval.Model = ""
	assert.NoError(t, cfg.Validate())
}
