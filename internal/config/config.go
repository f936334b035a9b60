package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the lucid server.
// Environment variables are parsed from the LUCID_ prefix.
type Config struct {
	// HTTP Configuration
	Port int `envconfig:"PORT" default:"5000"`

	// Memory store driver: chromem (embedded), weaviate, postgres
	StoreDriver string `envconfig:"STORE_DRIVER" default:"chromem"`

	// Driver-specific settings
	ChromemPath string `envconfig:"CHROMEM_PATH" default:""`
	WeaviateURL string `envconfig:"WEAVIATE_URL" default:"localhost:8080"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Preference store (sqlite file; empty keeps preferences in a temp file)
	SQLitePath string `envconfig:"SQLITE_PATH" default:"lucid-prefs.db"`

	// Completion service
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" default:""`
	ChatModel       string `envconfig:"CHAT_MODEL" default:"gpt-3.5-turbo-16k"`
	CompletionModel string `envconfig:"COMPLETION_MODEL" default:"gpt-3.5-turbo"`
	EmbedModel      string `envconfig:"EMBED_MODEL" default:"text-embedding-3-small"`

	// Enrichment
	IntelligenceLevel string `envconfig:"INTELLIGENCE_LEVEL" default:"general"`
	ForceRegenerate   bool   `envconfig:"FORCE_REGENERATE" default:"true"`
	MaxRetries        int    `envconfig:"MAX_RETRIES" default:"5"`
	RetryDelaySeconds int    `envconfig:"RETRY_DELAY_SECONDS" default:"5"`

	// Identity verification: mock (dev) or jwks
	AuthMode     string `envconfig:"AUTH_MODE" default:"mock"`
	JWKSURL      string `envconfig:"JWKS_URL" default:"https://appleid.apple.com/auth/keys"`
	AuthAudience string `envconfig:"AUTH_AUDIENCE" default:""`
	MockEmail    string `envconfig:"MOCK_EMAIL" default:"dev@localhost"`

	// Chat session store
	SessionTTLMinutes int `envconfig:"SESSION_TTL_MINUTES" default:"60"`
}

// ResolveDefaults validates driver and mode selections.
func (c *Config) ResolveDefaults() error {
	allowedStore := map[string]bool{"chromem": true, "weaviate": true, "postgres": true}
	if !allowedStore[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}
	allowedAuth := map[string]bool{"mock": true, "jwks": true}
	if !allowedAuth[c.AuthMode] {
		return fmt.Errorf("unsupported AUTH_MODE: %s", c.AuthMode)
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with LUCID_, e.g. LUCID_PORT, LUCID_STORE_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("LUCID", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Int("port", cfg.Port).
		Str("store_driver", cfg.StoreDriver).
		Str("auth_mode", cfg.AuthMode).
		Str("chat_model", cfg.ChatModel).
		Str("completion_model", cfg.CompletionModel).
		Bool("force_regenerate", cfg.ForceRegenerate).
		Int("max_retries", cfg.MaxRetries).
		Str("openai_key_present", func() string {
			if cfg.OpenAIAPIKey != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests: embedded store,
// mock auth, no retry sleeping to speak of.
func NewForTesting() *Config {
	return &Config{
		Port:              5000,
		StoreDriver:       "chromem",
		SQLitePath:        ":memory:",
		ChatModel:         "gpt-3.5-turbo-16k",
		CompletionModel:   "gpt-3.5-turbo",
		EmbedModel:        "text-embedding-3-small",
		IntelligenceLevel: "general",
		ForceRegenerate:   true,
		MaxRetries:        1,
		RetryDelaySeconds: 0,
		AuthMode:          "mock",
		MockEmail:         "test@example.com",
		SessionTTLMinutes: 60,
	}
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
