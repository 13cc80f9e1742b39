// internal/capabilities/solar-reasoning/config.go
package solarreasoning

import (
	"time"

	"policy-navigator/internal/common/config"
)

type Config struct {
	BaseURL         string
	APIKey          string
	Model           string
	Temperature     float64
	MaxTokens       int
	ReasoningEffort string
	Timeout         time.Duration
	MaxRetries      int
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		BaseURL:         cfg.Upstage.BaseURL,
		APIKey:          cfg.Upstage.APIKey,
		Model:           cfg.Upstage.Model,
		Temperature:     cfg.Upstage.Temperature,
		MaxTokens:       cfg.Upstage.MaxTokens,
		ReasoningEffort: cfg.Upstage.ReasoningEffort,
		Timeout:         cfg.Upstage.RequestTimeout(),
		MaxRetries:      cfg.Upstage.MaxRetries,
	}
}
