package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds engine settings. Zero values are filled from Default.
type Config struct {
	// Endpoint is the completion API URL.
	Endpoint string `toml:"endpoint"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `toml:"api_key_env"`

	// Model is the model identifier sent with each request.
	Model string `toml:"model"`

	// MaxTokens is the response token budget.
	MaxTokens int `toml:"max_tokens"`

	// SystemPrompt overrides the built-in system prompt when non-empty.
	SystemPrompt string `toml:"system_prompt"`

	// CacheSize is the suggestion cache capacity in entries.
	CacheSize int `toml:"cache_size"`

	// CacheTTLSeconds expires cache entries; 0 means never.
	CacheTTLSeconds int `toml:"cache_ttl_seconds"`

	// LocateRadius is the line radius searched when resolving edit
	// delete spans.
	LocateRadius int `toml:"locate_radius"`

	// MaxResponseBytes caps total streamed bytes per request.
	MaxResponseBytes int `toml:"max_response_bytes"`

	// LogLevel is debug, info, warn, or error.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Endpoint:         "https://api.anthropic.com/v1/messages",
		APIKeyEnv:        "ANTHROPIC_API_KEY",
		Model:            "claude-sonnet-4-20250514",
		MaxTokens:        1024,
		CacheSize:        64,
		CacheTTLSeconds:  300,
		LocateRadius:     50,
		MaxResponseBytes: 1 << 20,
		LogLevel:         "info",
	}
}

// Load reads TOML config from path, layered over Default. A missing file
// is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.fillZero()
	return cfg, nil
}

// DefaultPath returns the conventional config location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ghostwriter", "config.toml")
}

// APIKey resolves the API key from the configured environment variable.
func (c Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// fillZero restores defaults for fields the file left unset or invalid.
func (c *Config) fillZero() {
	def := Default()
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = def.APIKeyEnv
	}
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}
	if c.CacheTTLSeconds < 0 {
		c.CacheTTLSeconds = def.CacheTTLSeconds
	}
	if c.LocateRadius <= 0 {
		c.LocateRadius = def.LocateRadius
	}
	if c.MaxResponseBytes <= 0 {
		c.MaxResponseBytes = def.MaxResponseBytes
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}
