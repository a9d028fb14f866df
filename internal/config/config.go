// Package config handles tempmail configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseDir is the dotfile directory holding config, cache and session files.
const DefaultBaseDir = ".pryvon"

// Config is the application configuration. Keys are flat and map 1:1 onto
// the config file and PRYVON_* environment variables.
type Config struct {
	// API settings
	APIBaseURL string `mapstructure:"api_base_url"`
	APITimeout int    `mapstructure:"api_timeout"` // seconds
	MaxRetries int    `mapstructure:"max_retries"`

	// RequestIntervalMs is the minimum spacing between outbound requests.
	RequestIntervalMs int `mapstructure:"request_interval_ms"`

	// UI settings
	RefreshInterval    int  `mapstructure:"refresh_interval"` // seconds
	MaxMessagesDisplay int  `mapstructure:"max_messages_display"`
	AutoRefresh        bool `mapstructure:"auto_refresh"`

	// Security settings
	SaveCredentials bool   `mapstructure:"save_credentials"`
	CredentialsFile string `mapstructure:"credentials_file"`

	// Logging settings
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // json, console
	LogFile   string `mapstructure:"log_file"`

	// Cache settings
	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // seconds
	CacheFile    string `mapstructure:"cache_file"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		APIBaseURL:         "https://api.mail.tm",
		APITimeout:         30,
		MaxRetries:         3,
		RequestIntervalMs:  100,
		RefreshInterval:    30,
		MaxMessagesDisplay: 100,
		AutoRefresh:        true,
		SaveCredentials:    false,
		CredentialsFile:    "~/" + DefaultBaseDir + "/credentials.json",
		LogLevel:           "info",
		LogFormat:          "console",
		LogFile:            "",
		CacheEnabled:       true,
		CacheTTL:           300,
		CacheFile:          "~/" + DefaultBaseDir + "/cache.json",
	}
}

// APITimeoutDuration returns the API timeout as a duration.
func (c *Config) APITimeoutDuration() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

// CacheTTLDuration returns the default cache TTL as a duration.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// RequestInterval returns the minimum inter-request spacing as a duration.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMs) * time.Millisecond
}

// BaseDir returns the dotfile directory path under the user's home.
func (c *Config) BaseDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, DefaultBaseDir)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api_base_url must not be empty")
	}
	if c.APITimeout < 1 {
		return fmt.Errorf("api_timeout must be at least 1 second")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.RequestIntervalMs < 0 {
		return fmt.Errorf("request_interval_ms must not be negative")
	}
	if c.MaxMessagesDisplay < 1 {
		return fmt.Errorf("max_messages_display must be at least 1")
	}
	if c.CacheTTL < 1 {
		return fmt.Errorf("cache_ttl must be at least 1 second")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log_format must be json or console")
	}
	return nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// expandPaths expands ~ in all path-related config fields.
func expandPaths(cfg *Config) {
	cfg.CacheFile = ExpandTilde(cfg.CacheFile)
	cfg.CredentialsFile = ExpandTilde(cfg.CredentialsFile)
	cfg.LogFile = ExpandTilde(cfg.LogFile)
}
