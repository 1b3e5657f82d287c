package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultMinChars is the default lower bound for topical answer length.
	DefaultMinChars = 800

	// DefaultMaxChars is the default upper bound for topical answer length.
	DefaultMaxChars = 1000

	// DefaultMaxLengthAttempts bounds the corrective rewrite loop.
	DefaultMaxLengthAttempts = 5

	// DefaultMinFragmentLen is the minimum character count for an indexed
	// document fragment.
	DefaultMinFragmentLen = 50
)

// Config holds all configuration for snowtutor.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Embedder  EmbedderConfig  `mapstructure:"embedder"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Index     IndexConfig     `mapstructure:"index"`
	Tutor     TutorConfig     `mapstructure:"tutor"`
	Chatlog   ChatlogConfig   `mapstructure:"chatlog"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
}

// AnthropicConfig holds Anthropic API settings. SpellModel may name a
// cheaper model for spelling normalization; empty means use Model.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	SpellModel string `mapstructure:"spell_model"`
}

// String returns a safe representation of AnthropicConfig with the API key masked.
func (c AnthropicConfig) String() string {
	return fmt.Sprintf("AnthropicConfig{APIKey:%s, Model:%s, SpellModel:%s}", maskAPIKey(c.APIKey), c.Model, c.SpellModel)
}

// maskAPIKey shows first 4 + last 4 chars, replacing the middle with asterisks.
func maskAPIKey(key string) string {
	const visible = 4
	if len(key) <= visible*2 {
		return "***"
	}
	return key[:visible] + "****" + key[len(key)-visible:]
}

// EmbedderConfig holds embedding provider settings.
type EmbedderConfig struct {
	Provider  string `mapstructure:"provider"` // "ollama" or "openai"
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	Dimension uint64 `mapstructure:"dimension"`
}

// QdrantConfig holds Qdrant vector database connection settings.
type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	GRPCPort   int    `mapstructure:"grpc_port"`
	Collection string `mapstructure:"collection"`
	UseTLS     bool   `mapstructure:"use_tls"`
}

// IndexConfig holds document ingestion settings.
type IndexConfig struct {
	SourcePath     string `mapstructure:"source_path"`
	MinFragmentLen int    `mapstructure:"min_fragment_len"`
}

// TutorConfig holds answer policy settings.
type TutorConfig struct {
	MinChars          int `mapstructure:"min_chars"`
	MaxChars          int `mapstructure:"max_chars"`
	MaxLengthAttempts int `mapstructure:"max_length_attempts"`
	DefaultLevel      int `mapstructure:"default_level"`
}

// ChatlogConfig holds conversation logging settings.
type ChatlogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.spell_model", "")

	v.SetDefault("embedder.provider", "ollama")
	v.SetDefault("embedder.base_url", "http://localhost:11434")
	v.SetDefault("embedder.model", "nomic-embed-text")
	v.SetDefault("embedder.dimension", 768)

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.grpc_port", 6334)
	v.SetDefault("qdrant.collection", "marine_snow_docs")
	v.SetDefault("qdrant.use_tls", false)

	v.SetDefault("index.source_path", "")
	v.SetDefault("index.min_fragment_len", DefaultMinFragmentLen)

	v.SetDefault("tutor.min_chars", DefaultMinChars)
	v.SetDefault("tutor.max_chars", DefaultMaxChars)
	v.SetDefault("tutor.max_length_attempts", DefaultMaxLengthAttempts)
	v.SetDefault("tutor.default_level", 0)

	v.SetDefault("chatlog.enabled", false)
	v.SetDefault("chatlog.path", filepath.Join(homeDir(), ".snowtutor", "chatlog.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".snowtutor"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("SNOWTUTOR")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("embedder.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("qdrant.host", "SNOWTUTOR_QDRANT_HOST")
	_ = v.BindEnv("qdrant.grpc_port", "SNOWTUTOR_QDRANT_GRPC_PORT")
	_ = v.BindEnv("embedder.base_url", "SNOWTUTOR_EMBEDDER_BASE_URL")
	_ = v.BindEnv("api.listen_addr", "SNOWTUTOR_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "SNOWTUTOR_API_AUTH_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Anthropic.Model == "" {
		return fmt.Errorf("anthropic.model must not be empty")
	}
	if c.Embedder.Provider != "ollama" && c.Embedder.Provider != "openai" {
		return fmt.Errorf("embedder.provider must be \"ollama\" or \"openai\", got %q", c.Embedder.Provider)
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder.dimension must be greater than 0")
	}
	if c.Qdrant.Host == "" {
		return fmt.Errorf("qdrant.host must not be empty")
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant.collection must not be empty")
	}
	if c.Index.MinFragmentLen <= 0 {
		return fmt.Errorf("index.min_fragment_len must be greater than 0")
	}
	if c.Tutor.MinChars <= 0 {
		return fmt.Errorf("tutor.min_chars must be greater than 0")
	}
	if c.Tutor.MaxChars <= c.Tutor.MinChars {
		return fmt.Errorf("tutor.max_chars (%d) must be greater than tutor.min_chars (%d)", c.Tutor.MaxChars, c.Tutor.MinChars)
	}
	if c.Tutor.MaxLengthAttempts <= 0 {
		return fmt.Errorf("tutor.max_length_attempts must be greater than 0")
	}
	if c.Tutor.DefaultLevel < 0 || c.Tutor.DefaultLevel > 2 {
		return fmt.Errorf("tutor.default_level must be 0, 1 or 2, got %d", c.Tutor.DefaultLevel)
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
