package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// DefaultOnboardingThreshold is the number of ratings required before a
// new user leaves onboarding. Observed deployments use 3 or 5; the value
// is configurable, not hard-coded.
const DefaultOnboardingThreshold = 3

// Config holds all application configuration
type Config struct {
	Backend    BackendConfig    `mapstructure:"backend"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Poster     PosterConfig     `mapstructure:"poster"`
	Onboarding OnboardingConfig `mapstructure:"onboarding"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// BackendConfig holds recommendation backend configuration
type BackendConfig struct {
	URL string `mapstructure:"url"` // Base URL of the recommendation API
}

// AuthConfig holds identity provider configuration
type AuthConfig struct {
	URL    string `mapstructure:"url"`     // Identity provider base URL
	APIKey string `mapstructure:"api_key"` // Anon/public API key
}

// PosterConfig holds poster search service configuration
type PosterConfig struct {
	URL      string `mapstructure:"url"`       // Search API base URL
	APIKey   string `mapstructure:"api_key"`   // API key; empty disables poster lookups
	ImageURL string `mapstructure:"image_url"` // Image CDN base for poster paths
}

// OnboardingConfig holds the rating-collection gate configuration
type OnboardingConfig struct {
	Threshold int `mapstructure:"threshold"` // Ratings required to reach the home feed
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Directory for the poster URL store
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL: "",
		},
		Auth: AuthConfig{
			URL:    "",
			APIKey: "",
		},
		Poster: PosterConfig{
			URL:      "https://api.themoviedb.org/3",
			APIKey:   "",
			ImageURL: "https://image.tmdb.org/t/p/w500",
		},
		Onboarding: OnboardingConfig{
			Threshold: DefaultOnboardingThreshold,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "imrs", "imrs.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "imrs", "imrs.log")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "imrs", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "imrs", "cache")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "imrs")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "imrs")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("IMRS")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.Onboarding.Threshold <= 0 {
		cfg.Onboarding.Threshold = DefaultOnboardingThreshold
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("backend.url", cfg.Backend.URL)
	viper.Set("auth.url", cfg.Auth.URL)
	viper.Set("auth.api_key", cfg.Auth.APIKey)
	viper.Set("poster.url", cfg.Poster.URL)
	viper.Set("poster.api_key", cfg.Poster.APIKey)
	viper.Set("poster.image_url", cfg.Poster.ImageURL)
	viper.Set("onboarding.threshold", cfg.Onboarding.Threshold)
	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)
	viper.Set("cache.dir", cfg.Cache.Dir)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if the backend and identity provider are set
func (c *Config) IsConfigured() bool {
	return c.Backend.URL != "" && c.Auth.URL != ""
}

// ClearCache removes all locally cached data (poster URL store)
func ClearCache(cfg *Config) error {
	if cfg.Cache.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(cfg.Cache.Dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
