// internal/capabilities/document-parse/config.go
package documentparse

import (
	"time"

	"policy-navigator/internal/common/config"
)

type Config struct {
	BaseURL           string
	APIKey            string
	Model             string
	Timeout           time.Duration
	MaxRetries        int
	FallbackTextLimit int
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		BaseURL:           cfg.Upstage.BaseURL,
		APIKey:            cfg.Upstage.APIKey,
		Model:             cfg.Upstage.DocumentParseModel,
		Timeout:           cfg.Upstage.DocumentParseTimeout(),
		MaxRetries:        cfg.Upstage.MaxRetries,
		FallbackTextLimit: cfg.Document.FallbackTextLimit,
	}
}
