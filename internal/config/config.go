package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrison/scout/internal/display"
	"github.com/harrison/scout/internal/fileutil"
	"github.com/harrison/scout/internal/logger"
	"github.com/harrison/scout/internal/models"
	"github.com/harrison/scout/internal/search"
	"gopkg.in/yaml.v3"
)

// HistoryConfig represents search history configuration
type HistoryConfig struct {
	// Enabled records every run without needing --record
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database. Empty means
	// $SCOUT_HOME/history.db.
	DBPath string `yaml:"db_path"`

	// KeepDays is the number of days of history to keep (0 = forever)
	KeepDays int `yaml:"keep_days"`
}

// Config represents scout configuration options
type Config struct {
	// Threads is the maximum number of files searched concurrently
	Threads int `yaml:"threads"`

	// Directory is the root directory to search
	Directory string `yaml:"directory"`

	// Filter is the substring a candidate path must contain ("*" = any)
	Filter string `yaml:"filter"`

	// Glob is an optional shell pattern the file name must match
	Glob string `yaml:"glob"`

	// Order selects result presentation order (candidate, completion)
	Order string `yaml:"order"`

	// Format selects the report format (text, markdown, html)
	Format string `yaml:"format"`

	// Timing prints concurrent and sequential elapsed times after the report
	Timing bool `yaml:"timing"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables per-run log files in this directory when set
	LogDir string `yaml:"log_dir"`

	// History contains search history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Threads:   4,
		Directory: ".",
		Filter:    fileutil.WildcardFilter,
		Glob:      "",
		Order:     string(search.OrderCandidate),
		Format:    string(display.FormatText),
		Timing:    true,
		LogLevel:  "warn",
		LogDir:    "",
		History: HistoryConfig{
			Enabled:  false,
			DBPath:   "",
			KeepDays: 30,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.Threads != 0 {
		cfg.Threads = fileCfg.Threads
	}
	if fileCfg.Directory != "" {
		cfg.Directory = fileCfg.Directory
	}
	if fileCfg.Filter != "" {
		cfg.Filter = fileCfg.Filter
	}
	if fileCfg.Glob != "" {
		cfg.Glob = fileCfg.Glob
	}
	if fileCfg.Order != "" {
		cfg.Order = fileCfg.Order
	}
	if fileCfg.Format != "" {
		cfg.Format = fileCfg.Format
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}

	// Booleans default to true or live in nested sections, so presence
	// has to be detected on the raw document.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["timing"]; exists {
			cfg.Timing = fileCfg.Timing
		}

		if historySection, exists := rawMap["history"]; exists && historySection != nil {
			historyMap, _ := historySection.(map[string]interface{})

			if _, exists := historyMap["enabled"]; exists {
				cfg.History.Enabled = fileCfg.History.Enabled
			}
			if _, exists := historyMap["db_path"]; exists {
				cfg.History.DBPath = fileCfg.History.DBPath
			}
			if _, exists := historyMap["keep_days"]; exists {
				cfg.History.KeepDays = fileCfg.History.KeepDays
			}
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .scout/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".scout", "config.yaml"))
}

// FlagOverrides carries CLI flag values. A nil field means the flag was
// not set on the command line and the configured value is kept.
type FlagOverrides struct {
	Threads   *int
	Directory *string
	Filter    *string
	Glob      *string
	Order     *string
	Format    *string
	Timing    *bool
	LogLevel  *string
	LogDir    *string
	Record    *bool
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(flags FlagOverrides) {
	if flags.Threads != nil {
		c.Threads = *flags.Threads
	}
	if flags.Directory != nil {
		c.Directory = *flags.Directory
	}
	if flags.Filter != nil {
		c.Filter = *flags.Filter
	}
	if flags.Glob != nil {
		c.Glob = *flags.Glob
	}
	if flags.Order != nil {
		c.Order = *flags.Order
	}
	if flags.Format != nil {
		c.Format = *flags.Format
	}
	if flags.Timing != nil {
		c.Timing = *flags.Timing
	}
	if flags.LogLevel != nil {
		c.LogLevel = *flags.LogLevel
	}
	if flags.LogDir != nil {
		c.LogDir = *flags.LogDir
	}
	if flags.Record != nil && *flags.Record {
		c.History.Enabled = true
	}
}

// Validate validates the configuration values
// Returns a *models.ConfigurationError naming the first invalid field
func (c *Config) Validate() error {
	if c.Threads <= 0 {
		return models.NewConfigurationError("threads", "must be greater than 0, got %d", c.Threads)
	}

	if c.Directory == "" {
		return models.NewConfigurationError("directory", "cannot be empty")
	}

	if _, err := search.ParseOrder(c.Order); err != nil {
		return err
	}

	if _, err := display.ParseFormat(c.Format); err != nil {
		return err
	}

	if !logger.IsValidLevel(c.LogLevel) {
		return models.NewConfigurationError("log_level", "invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.History.KeepDays < 0 {
		return models.NewConfigurationError("history.keep_days", "must be >= 0, got %d", c.History.KeepDays)
	}

	return nil
}

// SelectOptions returns the file selection settings for the search engine.
func (c *Config) SelectOptions() fileutil.SelectOptions {
	return fileutil.SelectOptions{Filter: c.Filter, Glob: c.Glob}
}
