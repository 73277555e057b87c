package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	env "github.com/caarlos0/env/v6"
	"github.com/sirupsen/logrus"

	"github.com/ochronus/gogett/gett"
)

const (
	MinDownloadWorkers = 1
	MaxDownloadWorkers = 32
	MinTimeout         = 1
	MaxTimeout         = 3600
)

// Config represents the main application configuration
type Config struct {
	Loglevel          string     `toml:"loglevel" env:"GETT_LOGLEVEL"`
	Timeout           int        `toml:"timeout" env:"GETT_TIMEOUT"`
	DownloadDirectory string     `toml:"download_directory" env:"GETT_DOWNLOAD_DIRECTORY"`
	DownloadWorkers   int        `toml:"download_workers" env:"GETT_DOWNLOAD_WORKERS"`
	Gett              GettConfig `toml:"gett"`
}

// GettConfig holds the Ge.tt API credentials
type GettConfig struct {
	APIKey   string `toml:"api_key" env:"GETT_API_KEY"`
	Email    string `toml:"email" env:"GETT_EMAIL"`
	Password string `toml:"password" env:"GETT_PASSWORD"`
	BaseURL  string `toml:"base_url" env:"GETT_BASE_URL"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Loglevel:          "info",
		Timeout:           int(gett.DefaultTimeout / time.Second),
		DownloadDirectory: ".",
		DownloadWorkers:   4,
		Gett: GettConfig{
			BaseURL: gett.DefaultBaseURL,
		},
	}
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", "gogett")

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads configuration from a TOML file, then applies environment overrides
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnv builds a configuration from defaults and environment variables only
func LoadEnv() (*Config, error) {
	cfg := DefaultConfig()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrEnv loads configPath when it exists and falls back to LoadEnv otherwise
func LoadOrEnv(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return LoadEnv()
	}
	return Load(configPath)
}

// applyEnv overrides fields whose GETT_* variable is set
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// TimeoutDuration returns the HTTP timeout as a time.Duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Validate checks if the configuration is valid. The password may stay empty
// here, the CLI asks for it interactively.
func (c *Config) Validate() error {
	if c.Gett.APIKey == "" {
		return fmt.Errorf("gett.api_key is required")
	}
	if c.Gett.Email == "" {
		return fmt.Errorf("gett.email is required")
	}
	if c.Gett.BaseURL == "" {
		return fmt.Errorf("gett.base_url is required")
	}
	if u, err := url.ParseRequestURI(c.Gett.BaseURL); err != nil || u.Host == "" {
		return fmt.Errorf("gett.base_url is invalid: %s", c.Gett.BaseURL)
	}

	if _, err := logrus.ParseLevel(c.Loglevel); err != nil {
		return fmt.Errorf("loglevel must be one of: panic, fatal, error, warn, info, debug, trace")
	}

	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("timeout must be between %d and %d seconds", MinTimeout, MaxTimeout)
	}
	if c.DownloadWorkers < MinDownloadWorkers || c.DownloadWorkers > MaxDownloadWorkers {
		return fmt.Errorf("download_workers must be between %d and %d", MinDownloadWorkers, MaxDownloadWorkers)
	}
	if c.DownloadDirectory == "" {
		return fmt.Errorf("download_directory is required")
	}

	return nil
}
