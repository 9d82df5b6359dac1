package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/cadena/internal/models"
)

// Config represents the application configuration
type Config struct {
	// MaxDepth bounds subtask nesting: depth(task) < MaxDepth.
	MaxDepth int `yaml:"max_depth"`

	// InitialColumn is the list_position assigned to new tasks when the
	// caller does not supply one.
	InitialColumn string `yaml:"initial_column"`

	// LockTimeoutMS bounds how long a mutating call waits for its scope
	// lock before failing with a busy error.
	LockTimeoutMS int `yaml:"lock_timeout_ms"`

	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds storage settings
type DatabaseConfig struct {
	// Path to the sqlite file. Empty means ~/.cadena/tasks.db.
	Path string `yaml:"path"`
}

// LockTimeout returns the lock acquisition budget as a duration.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxDepth:      models.DefaultMaxDepth,
		InitialColumn: models.DefaultListPosition,
		LockTimeoutMS: 3000,
	}
}

// Load loads config from the user's config directory.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		// Return default config if we can't determine config path
		return Default(), nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse unmarshals YAML config data, filling unset fields with defaults.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	if config.MaxDepth <= 0 {
		config.MaxDepth = models.DefaultMaxDepth
	}
	if config.InitialColumn == "" {
		config.InitialColumn = models.DefaultListPosition
	}
	if config.LockTimeoutMS <= 0 {
		config.LockTimeoutMS = 3000
	}

	return config, nil
}

// getConfigPath returns the path to the config file.
// CADENA_CONFIG overrides the default ~/.config/cadena/config.yaml.
func getConfigPath() (string, error) {
	if override := os.Getenv("CADENA_CONFIG"); override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "cadena", "config.yaml"), nil
}

// DatabasePath resolves the sqlite file location, creating the parent
// directory if needed.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(home, ".cadena")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return filepath.Join(dir, "tasks.db"), nil
}
