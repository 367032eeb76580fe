// Package config holds all musebot configuration: booking business rules,
// extractor provider selection, conversation store tuning, and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all musebot configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Booking business rules
	Booking BookingConfig `yaml:"booking"`

	// Entity extractor selection
	Extractor ExtractorConfig `yaml:"extractor"`

	// Conversation store tuning
	Store StoreConfig `yaml:"store"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ExtractorConfig selects and configures the entity extractor.
type ExtractorConfig struct {
	Provider string `yaml:"provider"` // rules, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// StoreConfig configures the conversation store.
type StoreConfig struct {
	// How long an idle conversation survives before eviction.
	SessionTTL string `yaml:"session_ttl"`

	// How often the eviction janitor sweeps.
	SweepInterval string `yaml:"sweep_interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`  // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
	Dir        string          `yaml:"dir"` // State directory for log files
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "musebot",
		Version: "1.0.0",

		Booking: BookingConfig{
			OpenTime:         "09:00",
			CloseTime:        "17:00",
			ClosedWeekday:    "Sunday",
			AllowCorrections: false,
		},

		Extractor: ExtractorConfig{
			Provider: "rules",
			Model:    "gemini-2.0-flash",
			Timeout:  "30s",
		},

		Store: StoreConfig{
			SessionTTL:    "30m",
			SweepInterval: "5m",
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			Dir:       ".musebot",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Extractor.APIKey = key
	}
	if dir := os.Getenv("MUSEBOT_STATE_DIR"); dir != "" {
		c.Logging.Dir = dir
	}
}

// GetExtractorTimeout returns the extractor call timeout as a duration.
func (c *Config) GetExtractorTimeout() time.Duration {
	d, err := time.ParseDuration(c.Extractor.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetSessionTTL returns the conversation TTL as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Store.SessionTTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// GetSweepInterval returns the eviction sweep interval as a duration.
func (c *Config) GetSweepInterval() time.Duration {
	d, err := time.ParseDuration(c.Store.SweepInterval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// ValidProviders lists all supported extractor providers.
var ValidProviders = []string{"rules", "gemini"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validProvider := false
	for _, p := range ValidProviders {
		if c.Extractor.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid extractor provider: %s (valid: %v)", c.Extractor.Provider, ValidProviders)
	}

	if c.Extractor.Provider == "gemini" && c.Extractor.APIKey == "" {
		return fmt.Errorf("gemini extractor requires an API key (set GEMINI_API_KEY)")
	}

	return c.Booking.Validate()
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(".musebot", "config.yaml")
}
