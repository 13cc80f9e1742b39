// internal/capabilities/information-extract/config.go
package informationextract

import (
	"time"

	"policy-navigator/internal/common/config"
)

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Schema is the JSON schema sent as response_format. It is also used to
	// check the returned mapping.
	Schema map[string]interface{}
}

func LoadConfig(cfg *config.Config, schema map[string]interface{}) *Config {
	return &Config{
		BaseURL:    cfg.Upstage.BaseURL,
		APIKey:     cfg.Upstage.APIKey,
		Model:      cfg.Upstage.ExtractModel,
		Timeout:    cfg.Upstage.DocumentParseTimeout(),
		MaxRetries: cfg.Upstage.MaxRetries,
		Schema:     schema,
	}
}
