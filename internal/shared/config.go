package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Source     SourceConfig     `toml:"source"`
	Database   DatabaseConfig   `toml:"database"`
	Validation ValidationConfig `toml:"validation"`
	Preview    PreviewConfig    `toml:"preview"`
}

// SourceConfig contains settings for the remote project source.
type SourceConfig struct {
	BaseURL      string            `toml:"base_url"`
	BypassHeader string            `toml:"bypass_header"`
	BypassValue  string            `toml:"bypass_value"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
	RateLimit    float64           `toml:"rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ValidationConfig controls which archive structure checks run after decoding.
//
// RequireManifest demands a package.json alongside the index.html entry point.
type ValidationConfig struct {
	RequireManifest bool `toml:"require_manifest"`
}

// PreviewConfig contains local preview server settings.
type PreviewConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
