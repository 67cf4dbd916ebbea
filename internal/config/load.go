package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is prepended to every environment variable, e.g. SCRY_SERVER_PORT.
const envPrefix = "SCRY"

// defaults lists every known key with its default. Keys without a sensible
// default map to nil and are only bound to the environment.
var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.shutdown_timeout_seconds": 30,

	"database.url":            nil,
	"database.max_open_conns": 10,
	"database.run_migrations": true,
	"database.in_memory":      false,

	"auth.jwt_secret":             nil,
	"auth.token_lifetime_minutes": 60,

	"llm.api_key":                 nil,
	"llm.base_url":                "https://openrouter.ai/api/v1",
	"llm.model_name":              "openai/gpt-4o-mini",
	"llm.temperature":             0.7,
	"llm.max_tokens":              2000,
	"llm.top_p":                   1.0,
	"llm.max_attempts":            3,
	"llm.retry_base_delay_millis": 1000,
	"llm.request_timeout_seconds": 60,
	"llm.strict_schema":           true,

	"generation.min_input_chars":      1000,
	"generation.max_input_chars":      10000,
	"generation.max_error_info_chars": 1000,
	"generation.prompt_template_path": "",

	"task.worker_count": 4,
	"task.queue_size":   100,
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from the config file.
// Returns a populated Config or an error if loading or validation fails.
func Load() (*Config, error) {
	return LoadWithViper(viper.New())
}

// LoadWithViper loads configuration using the given viper instance. Tests use
// it to inject values without touching the process environment.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		if value != nil {
			v.SetDefault(key, value)
		}
		// Unmarshal only sees keys viper knows about.
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
