// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Upstage  UpstageConfig  `mapstructure:"upstage"`
	Document DocumentConfig `mapstructure:"document"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// UpstageConfig holds credentials and tuning for the hosted parse/reasoning API.
type UpstageConfig struct {
	APIKey             string  `mapstructure:"api_key"`
	BaseURL            string  `mapstructure:"base_url"`
	Model              string  `mapstructure:"model"`
	Temperature        float64 `mapstructure:"temperature"`
	MaxTokens          int     `mapstructure:"max_tokens"`
	ReasoningEffort    string  `mapstructure:"reasoning_effort"`
	DocumentParseModel string  `mapstructure:"document_parse_model"`
	ExtractModel       string  `mapstructure:"extract_model"`
	Timeout            int     `mapstructure:"timeout"`       // milliseconds
	ParseTimeout       int     `mapstructure:"parse_timeout"` // milliseconds
	MaxRetries         int     `mapstructure:"max_retries"`
}

type DocumentConfig struct {
	DefaultPath       string `mapstructure:"default_path"`
	ExtractSlots      bool   `mapstructure:"extract_slots"`
	PlanTextLimit     int    `mapstructure:"plan_text_limit"`
	FallbackTextLimit int    `mapstructure:"fallback_text_limit"`
}

// AgentConfig toggles the optional advisory calls around the clarification round.
type AgentConfig struct {
	FilterQuestions     bool `mapstructure:"filter_questions"`
	ExtractAnswerFields bool `mapstructure:"extract_answer_fields"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RequestTimeout returns the per-call timeout for reasoning requests.
func (c UpstageConfig) RequestTimeout() time.Duration {
	return GetDuration(c.Timeout)
}

// DocumentParseTimeout returns the per-call timeout for document parse uploads.
func (c UpstageConfig) DocumentParseTimeout() time.Duration {
	return GetDuration(c.ParseTimeout)
}
