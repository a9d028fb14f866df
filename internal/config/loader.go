package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Load loads configuration with proper precedence:
// defaults < config file < env vars
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	l.setupViper(cfg)

	if err := l.loadConfigFile(); err != nil {
		// Config file is optional, only error if explicitly specified
		if l.configFile != "" {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// setupViper configures Viper with defaults and environment bindings.
func (l *Loader) setupViper(cfg *Config) {
	v := l.v

	v.SetConfigName("config")

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		v.AddConfigPath(filepath.Join(xdgConfig, "pryvon"))
	}

	homeDir, _ := os.UserHomeDir()
	if homeDir != "" {
		v.AddConfigPath(filepath.Join(homeDir, DefaultBaseDir))
	}

	v.AddConfigPath(".")

	v.SetEnvPrefix("PRYVON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	l.setDefaults(cfg)
	bindEnvVars(v)
	v.AutomaticEnv()
}

// setDefaults sets all default values in Viper.
func (l *Loader) setDefaults(cfg *Config) {
	v := l.v

	v.SetDefault("api_base_url", cfg.APIBaseURL)
	v.SetDefault("api_timeout", cfg.APITimeout)
	v.SetDefault("max_retries", cfg.MaxRetries)
	v.SetDefault("request_interval_ms", cfg.RequestIntervalMs)
	v.SetDefault("refresh_interval", cfg.RefreshInterval)
	v.SetDefault("max_messages_display", cfg.MaxMessagesDisplay)
	v.SetDefault("auto_refresh", cfg.AutoRefresh)
	v.SetDefault("save_credentials", cfg.SaveCredentials)
	v.SetDefault("credentials_file", cfg.CredentialsFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("cache_enabled", cfg.CacheEnabled)
	v.SetDefault("cache_ttl", cfg.CacheTTL)
	v.SetDefault("cache_file", cfg.CacheFile)
}

// loadConfigFile attempts to load the configuration file.
func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return err
	}

	return nil
}

// ConfigFileUsed returns the config file that was loaded.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// LoadFromFile loads configuration from a specific file.
func LoadFromFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}

// LoadDefault loads configuration with default search paths.
func LoadDefault() (*Config, error) {
	loader := NewLoader()
	return loader.Load()
}

// bindEnvVars binds environment variables for config keys.
// Viper's Unmarshal has issues with env vars unless explicitly bound.
func bindEnvVars(v *viper.Viper) {
	keys := []string{
		"api_base_url",
		"api_timeout",
		"max_retries",
		"request_interval_ms",
		"refresh_interval",
		"max_messages_display",
		"auto_refresh",
		"save_credentials",
		"credentials_file",
		"log_level",
		"log_format",
		"log_file",
		"cache_enabled",
		"cache_ttl",
		"cache_file",
	}

	for _, key := range keys {
		envVar := "PRYVON_" + strings.ToUpper(key)
		_ = v.BindEnv(key, envVar)
	}
}
