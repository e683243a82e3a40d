// Package config centralizes all runtime configuration: defaults, file and
// environment loading via viper, and validation.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LLMProvider identifies a supported model provider.
type LLMProvider string

const (
	ProviderGemini    LLMProvider = "gemini"
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
)

// Prompt template names accepted by the agent.
const (
	TemplateBase           = "base"
	TemplateFewShot        = "few_shot"
	TemplateSelfReflection = "self_reflection"
)

// PromptTemplates lists every accepted template name.
var PromptTemplates = []string{TemplateBase, TemplateFewShot, TemplateSelfReflection}

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Dataset DatasetConfig `mapstructure:"dataset" yaml:"dataset"`
	Eval    EvalConfig    `mapstructure:"eval" yaml:"eval"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DatasetConfig locates the recorded episode traces.
type DatasetConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// EvalConfig tunes a single evaluation run.
type EvalConfig struct {
	NumEpisodes    int    `mapstructure:"num_episodes" yaml:"num_episodes"`
	Concurrency    int    `mapstructure:"concurrency" yaml:"concurrency"`
	Model          string `mapstructure:"model" yaml:"model"`
	PromptTemplate string `mapstructure:"prompt_template" yaml:"prompt_template"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
}

// LLMConfig configures the model catalog and shared request throttling.
type LLMConfig struct {
	RequestsPerMinute float64                   `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Models            map[string]LLMModelConfig `mapstructure:"models" yaml:"models"`
}

// LLMModelConfig defines the configuration for a single LLM.
type LLMModelConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout  time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ArchiveConfig gates the optional Postgres run archive.
type ArchiveConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	DatabaseURL string `mapstructure:"database_url" yaml:"-"`
}

// SetDefaults initializes default values on the given viper instance.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "droidmark")
	v.SetDefault("logger.log_file", "droidmark.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Dataset --
	v.SetDefault("dataset.path", "android_world_data")

	// -- Eval --
	v.SetDefault("eval.num_episodes", 10)
	v.SetDefault("eval.concurrency", 1)
	v.SetDefault("eval.model", "gemini-flash")
	v.SetDefault("eval.prompt_template", TemplateBase)
	v.SetDefault("eval.output_dir", "results")

	// -- LLM --
	v.SetDefault("llm.requests_per_minute", 60.0)
	v.SetDefault("llm.models.gemini-flash.provider", string(ProviderGemini))
	v.SetDefault("llm.models.gemini-flash.model", "gemini-2.5-flash")
	v.SetDefault("llm.models.gemini-flash.api_timeout", "60s")
	v.SetDefault("llm.models.gemini-flash.temperature", 0.1)
	v.SetDefault("llm.models.gemini-flash.max_tokens", 150)

	// -- Archive --
	v.SetDefault("archive.enabled", false)
}

// NewDefaultConfig returns a configuration populated with defaults only.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static, a failure here is a programmer error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewFromViper unmarshals and validates a configuration from a viper object.
func NewFromViper(v *viper.Viper) (*Config, error) {
	// Sensitive values come from the environment, never the config file.
	v.BindEnv("archive.database_url", "DROIDMARK_DATABASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
// Configuration errors are the only errors the evaluation engine is allowed
// to raise to the caller.
func (c *Config) Validate() error {
	if c.Eval.NumEpisodes <= 0 {
		return fmt.Errorf("eval.num_episodes must be a positive integer")
	}
	if c.Eval.Concurrency <= 0 {
		return fmt.Errorf("eval.concurrency must be a positive integer")
	}
	if !validTemplate(c.Eval.PromptTemplate) {
		return fmt.Errorf("eval.prompt_template must be one of %v, got %q", PromptTemplates, c.Eval.PromptTemplate)
	}
	if c.Eval.Model != "" {
		if _, ok := c.LLM.Models[c.Eval.Model]; !ok {
			return fmt.Errorf("eval.model %q is not defined under llm.models", c.Eval.Model)
		}
	}
	if c.Archive.Enabled && c.Archive.DatabaseURL == "" {
		return fmt.Errorf("archive enabled but DROIDMARK_DATABASE_URL is not set")
	}
	return nil
}

func validTemplate(name string) bool {
	for _, t := range PromptTemplates {
		if t == name {
			return true
		}
	}
	return false
}
