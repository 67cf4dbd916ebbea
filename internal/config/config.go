package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL           string `mapstructure:"url"               validate:"required_unless=InMemory true,omitempty,url"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"    validate:"gte=1"`
	RunMigrations bool   `mapstructure:"run_migrations"`
	// InMemory replaces Postgres with the in-memory store. Data is lost on exit.
	InMemory bool `mapstructure:"in_memory"`
}

// AuthConfig contains the token verification settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains the chat completion provider settings.
type LLMConfig struct {
	APIKey                string  `mapstructure:"api_key"                 validate:"required"`
	BaseURL               string  `mapstructure:"base_url"                validate:"required,url"`
	ModelName             string  `mapstructure:"model_name"              validate:"required"`
	Temperature           float64 `mapstructure:"temperature"             validate:"gte=0,lte=2"`
	MaxTokens             int     `mapstructure:"max_tokens"              validate:"gte=0"`
	TopP                  float64 `mapstructure:"top_p"                   validate:"gte=0,lte=1"`
	MaxAttempts           int     `mapstructure:"max_attempts"            validate:"gte=1,lte=10"`
	RetryBaseDelayMillis  int     `mapstructure:"retry_base_delay_millis" validate:"gte=0"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"gte=1"`
	// StrictSchema embeds the JSON-schema response_format directive in requests.
	StrictSchema bool `mapstructure:"strict_schema"`
}

// GenerationConfig contains the generation pipeline's input bounds and prompts.
type GenerationConfig struct {
	MinInputChars      int    `mapstructure:"min_input_chars"       validate:"gte=1"`
	MaxInputChars      int    `mapstructure:"max_input_chars"       validate:"gtfield=MinInputChars"`
	MaxErrorInfoChars  int    `mapstructure:"max_error_info_chars"  validate:"gte=1"`
	PromptTemplatePath string `mapstructure:"prompt_template_path"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gte=1"`
}
