package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/searchlog/config.yaml"

// Config holds all searchlog configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	History HistoryConfig `yaml:"history"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	Backend           string `yaml:"backend"` // sqlite or csv
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	CSVFile           string `yaml:"csv_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type HistoryConfig struct {
	ReadMode            string `yaml:"read_mode"`
	TrendingWindowHours int    `yaml:"trending_window_hours"`
	TrendingLimit       int    `yaml:"trending_limit"`
}

type SearchConfig struct {
	DateFilterMode string   `yaml:"date_filter_mode"`
	NumResults     int      `yaml:"num_results"`
	IncludeDomains []string `yaml:"include_domains"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from SEARCHLOG_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SEARCHLOG_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("SEARCHLOG_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SEARCHLOG_CSV_PATH"); v != "" {
		c.Storage.Backend = "csv"
		c.Storage.Path = filepath.Dir(v)
		c.Storage.CSVFile = filepath.Base(v)
	}
	if v := os.Getenv("SEARCHLOG_READ_MODE"); v != "" {
		c.History.ReadMode = v
	}
	if v := os.Getenv("SEARCHLOG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv("SEARCHLOG_SEARCH_DOMAINS"); ok {
		domains := []string{}
		for _, d := range strings.Split(v, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
		c.Search.IncludeDomains = domains
	}
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "csv":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (use sqlite or csv)", c.Storage.Backend)
	}
	switch strings.ToLower(c.History.ReadMode) {
	case "", "lenient", "strict":
	default:
		return fmt.Errorf("history.read_mode: unknown mode %q (use lenient or strict)", c.History.ReadMode)
	}
	if c.History.TrendingWindowHours <= 0 {
		return fmt.Errorf("history.trending_window_hours must be positive, got %d", c.History.TrendingWindowHours)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q (use text or json)", c.Logging.Format)
	}
	if c.Search.NumResults <= 0 {
		return fmt.Errorf("search.num_results must be positive, got %d", c.Search.NumResults)
	}
	switch strings.ToLower(c.Search.DateFilterMode) {
	case "24h", "7d", "30d", "custom", "last24h", "last7d", "last30d":
	default:
		return fmt.Errorf("search.date_filter_mode: unknown mode %q", c.Search.DateFilterMode)
	}
	return nil
}

// StorageDir returns the storage directory with ~ expanded.
func (c *Config) StorageDir() (string, error) {
	return expandPath(c.Storage.Path)
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
