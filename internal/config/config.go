// Package config loads the handla configuration file and applies
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thenoetrevino/handla/internal/board"
	"gopkg.in/yaml.v3"
)

// Change feed transports.
const (
	FeedDaemon = "daemon"
	FeedRedis  = "redis"
	FeedNone   = "none"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	DefaultStore string       `yaml:"default_store"`
	DatabasePath string       `yaml:"database_path"`
	Feed         string       `yaml:"feed"`
	RedisAddr    string       `yaml:"redis_addr"`
	SocketPath   string       `yaml:"socket_path"`
	Recipe       RecipeConfig `yaml:"recipe"`
	Log          LogConfig    `yaml:"log"`
	ColorScheme  ColorScheme  `yaml:"theme"`
}

// RecipeConfig points at the recipe scraper service.
type RecipeConfig struct {
	ServiceURL string        `yaml:"service_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// LogConfig controls where logs go. File "stderr" logs to the terminal.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// loadThemeFile loads and merges theme from HANDLA_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("HANDLA_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}
	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme = themeConfig.Theme
	}
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		// Return default config if we can't determine config path
		config := &Config{}
		config.finish()
		return config, config.Validate()
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the config file at path. A missing file yields defaults.
// Environment overrides are applied after the file.
func LoadFrom(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
		}
	}

	config.finish()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) finish() {
	// Load theme from HANDLA_THEME_FILE if set
	loadThemeFile(c)
	c.applyEnv()
	// Fill in any missing values with defaults
	c.applyDefaults()
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks values that have a fixed set of choices.
func (c *Config) Validate() error {
	if !board.IsValidStoreKey(c.DefaultStore) {
		return fmt.Errorf("%w: unknown default_store %q", ErrInvalidConfig, c.DefaultStore)
	}
	switch c.Feed {
	case FeedDaemon, FeedRedis, FeedNone:
	default:
		return fmt.Errorf("%w: feed must be daemon, redis or none, got %q", ErrInvalidConfig, c.Feed)
	}
	if c.Recipe.Timeout < 0 {
		return fmt.Errorf("%w: negative recipe timeout", ErrInvalidConfig)
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "handla", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "handla", "config.yaml"), nil
}

// DataDir returns ~/.handla, where the database, socket and logs live.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".handla"), nil
}

// applyEnv lets HANDLA_* variables override the file.
func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"HANDLA_DB_PATH", &c.DatabasePath},
		{"HANDLA_RECIPE_SERVICE_URL", &c.Recipe.ServiceURL},
		{"HANDLA_FEED", &c.Feed},
		{"HANDLA_REDIS_ADDR", &c.RedisAddr},
		{"HANDLA_SOCKET_PATH", &c.SocketPath},
		{"HANDLA_LOG_LEVEL", &c.Log.Level},
		{"HANDLA_STORE", &c.DefaultStore},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.key)); v != "" {
			*o.dst = v
		}
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DefaultStore == "" {
		c.DefaultStore = string(board.DefaultStore)
	}
	c.DefaultStore = strings.ToLower(c.DefaultStore)
	if c.Feed == "" {
		c.Feed = FeedDaemon
	}
	c.Feed = strings.ToLower(c.Feed)
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.Recipe.Timeout == 0 {
		c.Recipe.Timeout = 15 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if dir, err := DataDir(); err == nil {
		if c.DatabasePath == "" {
			c.DatabasePath = filepath.Join(dir, "handla.db")
		}
		if c.SocketPath == "" {
			c.SocketPath = filepath.Join(dir, "handla.sock")
		}
		if c.Log.File == "" {
			c.Log.File = filepath.Join(dir, "logs", "handla.log")
		}
	}
	c.ColorScheme.ApplyDefaults()
}
