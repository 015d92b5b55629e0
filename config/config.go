// Package config loads application configuration from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Gateway GatewayConfig `mapstructure:"gateway"`
	Search  SearchConfig  `mapstructure:"search"`
	Kids    KidsConfig    `mapstructure:"kids"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// GatewayConfig holds the content gateway connection settings
type GatewayConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	RetryAttempts     uint    `mapstructure:"retry_attempts"`
}

// Timeout returns the gateway request timeout as a duration.
func (g GatewayConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// SearchConfig holds search behavior settings
type SearchConfig struct {
	DebounceMS int `mapstructure:"debounce_ms"`
}

// Debounce returns the search debounce window as a duration.
func (s SearchConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// KidsConfig holds maturity rating ceilings for kids profiles
type KidsConfig struct {
	MaxMovieRating string `mapstructure:"max_movie_rating"`
	MaxTVRating    string `mapstructure:"max_tv_rating"`
}

// StorageConfig holds the local credential store location
type StorageConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL:           "http://localhost:8085",
			TimeoutSeconds:    15,
			RequestsPerSecond: 10,
			Burst:             20,
			RetryAttempts:     3,
		},
		Search: SearchConfig{
			DebounceMS: 300,
		},
		Kids: KidsConfig{
			MaxMovieRating: "PG",
			MaxTVRating:    "TV-PG",
		},
		Storage: StorageConfig{
			Dir: defaultStoragePath(),
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultStoragePath returns the default data directory for the current OS
func defaultStoragePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "streamvault")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "streamvault")
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	return filepath.Join(defaultStoragePath(), "streamvault.log")
}

func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "streamvault")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "streamvault")
	}
}

// Load reads configuration from the given file, falling back to the default
// search paths and environment overrides when path is empty.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STREAMVAULT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file on the default search path is fine; an explicit
		// path must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}
