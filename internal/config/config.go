// Package config handles configuration file parsing and hot-reloading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Name string `yaml:"name"`

	// Directory for the workspace database and logs
	DataDir string `yaml:"data_dir"`

	// Data sources - file paths, directories, or globs
	Sources []Source `yaml:"sources"`

	Grid    GridConfig    `yaml:"grid"`
	Analyst AnalystConfig `yaml:"analyst"`

	// Write a debug log file under the data dir
	Debug bool `yaml:"debug"`

	// Internal: path to the config file
	path string

	// Internal: last modified time
	modTime time.Time

	mu sync.RWMutex
}

// Source defines a source of data files.
type Source struct {
	Path        string `yaml:"path"`
	Alias       string `yaml:"alias"`
	Description string `yaml:"description"`
}

// GridConfig tunes the data explorer grid.
type GridConfig struct {
	RowHeight          int `yaml:"row_height"`
	BufferRows         int `yaml:"buffer_rows"`
	DefaultColumnWidth int `yaml:"default_column_width"`
	MinColumnWidth     int `yaml:"min_column_width"`
}

// AnalystConfig configures the external analysis service.
type AnalystConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Model      string `yaml:"model"`
	Timeout    string `yaml:"timeout"`
	SampleRows int    `yaml:"sample_rows"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "datadeck",
		DataDir: ".datadeck",
		Sources: []Source{},
		Grid: GridConfig{
			RowHeight:          1,
			BufferRows:         5,
			DefaultColumnWidth: 16,
			MinColumnWidth:     6,
		},
		Analyst: AnalystConfig{
			APIKeyEnv:  "DATADECK_API_KEY",
			Timeout:    "2m",
			SampleRows: 20,
		},
	}
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.path = absPath

	if info, err := os.Stat(absPath); err == nil {
		cfg.modTime = info.ModTime()
	}

	return cfg, nil
}

// Path returns the path to the config file.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Reload reloads the configuration from disk.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	newCfg := DefaultConfig()
	if err := yaml.Unmarshal(data, newCfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	c.Name = newCfg.Name
	c.DataDir = newCfg.DataDir
	c.Sources = newCfg.Sources
	c.Grid = newCfg.Grid
	c.Analyst = newCfg.Analyst
	c.Debug = newCfg.Debug

	if info, err := os.Stat(c.path); err == nil {
		c.modTime = info.ModTime()
	}

	return nil
}

// HasChanged checks if the config file has been modified.
func (c *Config) HasChanged() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(c.modTime)
}

// GetDataDir returns the data directory path (for the workspace store and
// logs).
func (c *Config) GetDataDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.DataDir == "" {
		return ".datadeck"
	}
	return c.DataDir
}

// GetAnalystTimeout parses and returns the analyst request timeout.
func (c *Config) GetAnalystTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, err := time.ParseDuration(c.Analyst.Timeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// AnalystAPIKey resolves the analyst API key from the configured
// environment variable.
func (c *Config) AnalystAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Analyst.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Analyst.APIKeyEnv)
}
