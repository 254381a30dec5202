package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://puush.me/api/"
	MinTimeout     = 1
	MaxTimeout     = 600
)

// Config represents the main application configuration
type Config struct {
	Loglevel   string           `toml:"loglevel"`
	Puush      PuushConfig      `toml:"puush"`
	FakeServer FakeServerConfig `toml:"fake_server"`
}

// PuushConfig holds puush API configuration. Either APIKey or Email and
// Password must be set.
type PuushConfig struct {
	APIKey    string `toml:"api_key"`
	Email     string `toml:"email"`
	Password  string `toml:"password"`
	BaseURL   string `toml:"base_url"`
	Timeout   int    `toml:"timeout"`
	SendHash  bool   `toml:"send_hash"`
	VerifyKey bool   `toml:"verify_key"`
}

// FakeServerConfig holds settings for the local fake puush API
type FakeServerConfig struct {
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Loglevel: "info",
		Puush: PuushConfig{
			BaseURL:   DefaultBaseURL,
			Timeout:   30,
			SendHash:  true,
			VerifyKey: true,
		},
		FakeServer: FakeServerConfig{
			BindAddress: "127.0.0.1",
			Port:        8085,
		},
	}
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	path, err := homedir.Expand("~/.config/gopuush/config.toml")
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return path, nil
}

// Load loads configuration from a TOML file
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	path, err := homedir.Expand(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Loglevel); err != nil {
		return fmt.Errorf("loglevel must be one of: panic, fatal, error, warn, info, debug, trace")
	}

	if c.Puush.APIKey == "" {
		if c.Puush.Email == "" || c.Puush.Password == "" {
			return fmt.Errorf("puush.api_key or both puush.email and puush.password are required")
		}
	}

	u, err := url.ParseRequestURI(c.Puush.BaseURL)
	if err != nil {
		return fmt.Errorf("puush.base_url is invalid: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("puush.base_url must be an http or https URL")
	}

	if c.Puush.Timeout < MinTimeout || c.Puush.Timeout > MaxTimeout {
		return fmt.Errorf("puush.timeout must be between %d and %d seconds", MinTimeout, MaxTimeout)
	}

	return c.FakeServer.Validate()
}

// Validate checks the fake server settings on their own, since the fake
// server runs without puush credentials.
func (f *FakeServerConfig) Validate() error {
	if f.Port < 0 || f.Port > 65535 {
		return fmt.Errorf("fake_server.port must be between 0 and 65535")
	}
	return nil
}

// UsesCredentials reports whether the account should be built by logging in
// rather than from an API key.
func (c *Config) UsesCredentials() bool {
	return c.Puush.APIKey == "" && c.Puush.Email != "" && c.Puush.Password != ""
}

// RequestTimeout returns the configured timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Puush.Timeout) * time.Second
}
