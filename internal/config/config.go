// Package config loads and persists the tool's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Log file configuration
	Log LogConfig `toml:"log"`

	// Card catalog configuration
	Cards CardsConfig `toml:"cards"`

	// Match archive configuration
	Archive ArchiveConfig `toml:"archive"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// LogConfig contains Player.log settings.
type LogConfig struct {
	FilePath     string `toml:"file_path"`     // Path to MTGA Player.log (auto-detected if empty)
	PollInterval string `toml:"poll_interval"` // Monitor polling interval (e.g., "2s")
	UseFsnotify  bool   `toml:"use_fsnotify"`  // Use file system events while monitoring
}

// CardsConfig contains card catalog settings.
type CardsConfig struct {
	DatabaseDir string `toml:"database_dir"` // Arena data dir holding Raw_CardDatabase_*.mtga
	CachePath   string `toml:"cache_path"`   // Extracted catalog JSON (defaults under config dir)
}

// ArchiveConfig contains match archive settings.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"` // Persist parse results
	Path    string `toml:"path"`    // SQLite archive file (defaults under config dir)
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			FilePath:     "",
			PollInterval: "2s",
			UseFsnotify:  true,
		},
		Cards: CardsConfig{
			DatabaseDir: "",
			CachePath:   "",
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the tool's configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".mtga-match-parser")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return configDir, nil
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Log.PollInterval); err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", c.Log.PollInterval, err)
	}
	return nil
}

// GetLogPollInterval returns the log poll interval as a duration.
func (c *Config) GetLogPollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Log.PollInterval)
}

// CatalogCachePath resolves the catalog cache location, defaulting to a
// file under the config directory.
func (c *Config) CatalogCachePath() (string, error) {
	if c.Cards.CachePath != "" {
		return c.Cards.CachePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "card_database.json"), nil
}

// ArchivePath resolves the match archive location, defaulting to a file
// under the config directory.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "matches.db"), nil
}
