// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "policy-navigator/internal/common/errors"
)

const (
	EnvAPIKey  = "UPSTAGE_API_KEY"
	EnvBaseURL = "UPSTAGE_BASE_URL"
	EnvModel   = "SOLAR_MODEL"

	DefaultBaseURL = "https://api.upstage.ai/v1"
	DefaultModel   = "solar-pro2"
)

// Load reads config.yaml (optional) from the usual locations, the .env file
// and the process environment.
func Load() (*Config, error) {
	return load("")
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.NewInvalidConfigError(fmt.Sprintf("failed to read config file %s", path), err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, apperrors.NewInvalidConfigError("error reading base config", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("upstage.api_key", EnvAPIKey)
	_ = v.BindEnv("upstage.base_url", EnvBaseURL)
	_ = v.BindEnv("upstage.model", EnvModel)

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewInvalidConfigError("failed to unmarshal config", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)
	cfg.Upstage.BaseURL = NormalizeBaseURL(cfg.Upstage.BaseURL)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "policy-navigator")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("upstage.api_key", "")
	v.SetDefault("upstage.base_url", DefaultBaseURL)
	v.SetDefault("upstage.model", DefaultModel)
	v.SetDefault("upstage.temperature", 0.2)
	v.SetDefault("upstage.max_tokens", 16384)
	v.SetDefault("upstage.reasoning_effort", "")
	v.SetDefault("upstage.document_parse_model", "document-parse-nightly")
	v.SetDefault("upstage.extract_model", "information-extract")
	v.SetDefault("upstage.timeout", 120000)
	v.SetDefault("upstage.parse_timeout", 120000)
	v.SetDefault("upstage.max_retries", 0)

	v.SetDefault("document.default_path", "")
	v.SetDefault("document.extract_slots", false)
	v.SetDefault("document.plan_text_limit", 8000)
	v.SetDefault("document.fallback_text_limit", 20000)

	v.SetDefault("agent.filter_questions", true)
	v.SetDefault("agent.extract_answer_fields", false)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
}

// loadEnvFile loads .env from the working directory or the project root.
// Variables already present in the environment are never overridden.
func loadEnvFile() string {
	possiblePaths := []string{".env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Upstage.APIKey == "" {
		if val := os.Getenv(EnvAPIKey); val != "" {
			cfg.Upstage.APIKey = val
		}
	}
	if cfg.Upstage.BaseURL == "" {
		if val := os.Getenv(EnvBaseURL); val != "" {
			cfg.Upstage.BaseURL = val
		}
	}
	if cfg.Upstage.Model == "" {
		if val := os.Getenv(EnvModel); val != "" {
			cfg.Upstage.Model = val
		}
	}
}

// applyDefaults fills values a config file may have blanked out.
func applyDefaults(cfg *Config) {
	cfg.Upstage.APIKey = strings.TrimSpace(cfg.Upstage.APIKey)
	if strings.TrimSpace(cfg.Upstage.BaseURL) == "" {
		cfg.Upstage.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(cfg.Upstage.Model) == "" {
		cfg.Upstage.Model = DefaultModel
	}
	if cfg.Upstage.MaxTokens == 0 {
		cfg.Upstage.MaxTokens = 16384
	}
	if cfg.Upstage.Timeout == 0 {
		cfg.Upstage.Timeout = 120000
	}
	if cfg.Upstage.ParseTimeout == 0 {
		cfg.Upstage.ParseTimeout = 120000
	}
	if cfg.Document.PlanTextLimit == 0 {
		cfg.Document.PlanTextLimit = 8000
	}
	if cfg.Document.FallbackTextLimit == 0 {
		cfg.Document.FallbackTextLimit = 20000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Upstage.APIKey == "" {
		return apperrors.NewMissingCredentialError(EnvAPIKey)
	}
	if u, err := url.Parse(cfg.Upstage.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("upstage.base_url is not a valid URL: %q", cfg.Upstage.BaseURL), err)
	}
	if cfg.Upstage.Temperature < 0 || cfg.Upstage.Temperature > 2 {
		return apperrors.NewInvalidConfigError(fmt.Sprintf("upstage.temperature out of range: %v", cfg.Upstage.Temperature), nil)
	}
	if cfg.Upstage.MaxTokens < 0 {
		return apperrors.NewInvalidConfigError("upstage.max_tokens must be positive", nil)
	}
	if cfg.Upstage.MaxRetries < 0 {
		return apperrors.NewInvalidConfigError("upstage.max_retries must not be negative", nil)
	}
	switch cfg.Upstage.ReasoningEffort {
	case "", "low", "medium", "high":
	default:
		return apperrors.NewInvalidConfigError(fmt.Sprintf("upstage.reasoning_effort must be low, medium or high: %q", cfg.Upstage.ReasoningEffort), nil)
	}
	return nil
}

// NormalizeBaseURL trims trailing slashes and makes sure the path ends in /v1.
func NormalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return DefaultBaseURL
	}
	if strings.HasSuffix(trimmed, "/v1") {
		return trimmed
	}
	return trimmed + "/v1"
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
