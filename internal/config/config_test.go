package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME and XDG_CONFIG_HOME at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{
		"HANDLA_DB_PATH", "HANDLA_RECIPE_SERVICE_URL", "HANDLA_FEED", "HANDLA_REDIS_ADDR",
		"HANDLA_SOCKET_PATH", "HANDLA_LOG_LEVEL", "HANDLA_STORE", "HANDLA_THEME_FILE",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "handla")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() without config file failed: %v", err)
	}

	if cfg.DefaultStore != "willys" {
		t.Errorf("DefaultStore = %s, want willys", cfg.DefaultStore)
	}
	if cfg.Feed != FeedDaemon {
		t.Errorf("Feed = %s, want daemon", cfg.Feed)
	}
	if want := filepath.Join(dir, ".handla", "handla.db"); cfg.DatabasePath != want {
		t.Errorf("DatabasePath = %s, want %s", cfg.DatabasePath, want)
	}
	if want := filepath.Join(dir, ".handla", "handla.sock"); cfg.SocketPath != want {
		t.Errorf("SocketPath = %s, want %s", cfg.SocketPath, want)
	}
	if cfg.Recipe.Timeout != 15*time.Second {
		t.Errorf("Recipe.Timeout = %s, want 15s", cfg.Recipe.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %s, want info", cfg.Log.Level)
	}
	if cfg.ColorScheme.Preset != "default" || cfg.ColorScheme.Accent == "" {
		t.Errorf("ColorScheme not defaulted: %+v", cfg.ColorScheme)
	}
}

func TestLoadConfigWithFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `default_store: Hemkop
feed: redis
redis_addr: "cache:6379"
recipe:
  service_url: "http://scraper:8000"
  timeout: 5s
log:
  level: debug
theme:
  preset: monochrome
  accent: "#123456"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with config file failed: %v", err)
	}

	if cfg.DefaultStore != "hemkop" {
		t.Errorf("DefaultStore = %s, want hemkop", cfg.DefaultStore)
	}
	if cfg.Feed != FeedRedis || cfg.RedisAddr != "cache:6379" {
		t.Errorf("Feed = %s/%s, want redis/cache:6379", cfg.Feed, cfg.RedisAddr)
	}
	if cfg.Recipe.ServiceURL != "http://scraper:8000" || cfg.Recipe.Timeout != 5*time.Second {
		t.Errorf("Recipe = %+v", cfg.Recipe)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}

	// custom value wins, the rest comes from the preset
	if cfg.ColorScheme.Accent != "#123456" {
		t.Errorf("Accent = %s, want #123456", cfg.ColorScheme.Accent)
	}
	if cfg.ColorScheme.Title != MonochromeColorScheme().Title {
		t.Errorf("Title = %s, want monochrome title", cfg.ColorScheme.Title)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "feed: redis\ndatabase_path: /from/file.db\n")

	t.Setenv("HANDLA_FEED", "none")
	t.Setenv("HANDLA_DB_PATH", "/from/env.db")
	t.Setenv("HANDLA_RECIPE_SERVICE_URL", "http://env:1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Feed != FeedNone {
		t.Errorf("Feed = %s, want none", cfg.Feed)
	}
	if cfg.DatabasePath != "/from/env.db" {
		t.Errorf("DatabasePath = %s, want /from/env.db", cfg.DatabasePath)
	}
	if cfg.Recipe.ServiceURL != "http://env:1" {
		t.Errorf("ServiceURL = %s, want http://env:1", cfg.Recipe.ServiceURL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "feed: [redis"},
		{"unknown store", "default_store: ica\n"},
		{"unknown feed", "feed: kafka\n"},
		{"negative timeout", "recipe:\n  timeout: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeConfig(t, dir, tt.content)

			_, err := Load()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadConfig_ThemeFile(t *testing.T) {
	dir := isolate(t)
	themePath := filepath.Join(dir, "theme.yaml")
	if err := os.WriteFile(themePath, []byte("theme:\n  preset: monochrome\n"), 0o644); err != nil {
		t.Fatalf("Failed to write theme: %v", err)
	}
	t.Setenv("HANDLA_THEME_FILE", themePath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ColorScheme != MonochromeColorScheme() {
		t.Errorf("ColorScheme = %+v, want monochrome", cfg.ColorScheme)
	}
}

func TestSaveConfig(t *testing.T) {
	dir := isolate(t)

	cfg := Default()
	cfg.DefaultStore = "hemkop"
	cfg.Recipe.Timeout = 20 * time.Second

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	configPath := filepath.Join(dir, "handla", "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file not created at %s", configPath)
	}

	cfg2, err := Load()
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if cfg2.DefaultStore != "hemkop" {
		t.Errorf("Reloaded DefaultStore = %s, want hemkop", cfg2.DefaultStore)
	}
	if cfg2.Recipe.Timeout != 20*time.Second {
		t.Errorf("Reloaded Recipe.Timeout = %s, want 20s", cfg2.Recipe.Timeout)
	}
}
