// Package config handles loading the pv config.toml file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amonks/pv/internal/paths"
)

const (
	// DefaultBackend is the storage backend used when none is configured.
	DefaultBackend = "file"

	// DefaultFeedURL is the remote endpoint the task view mirrors.
	DefaultFeedURL = "https://dummyjson.com/c/28e8-a101-22-11"

	// DefaultFeedTimeout bounds the one feed request per task view.
	DefaultFeedTimeout = 10 * time.Second

	// DefaultLogLevel is the slog level used when none is configured.
	DefaultLogLevel = "warn"
)

// Environment variables that override the config file.
const (
	EnvStateDir    = "PV_STATE_DIR"
	EnvBackend     = "PV_STORAGE_BACKEND"
	EnvFeedURL     = "PV_FEED_URL"
	EnvFeedTimeout = "PV_FEED_TIMEOUT"
	EnvLogLevel    = "PV_LOG_LEVEL"
)

// Config represents the config.toml file after defaults and overrides.
type Config struct {
	Storage Storage `toml:"storage"`
	Feed    Feed    `toml:"feed"`
	Log     Log     `toml:"log"`
}

// Storage selects where key-value entries live.
type Storage struct {
	// Dir is the state directory. Defaults to ~/.local/state/pv.
	Dir string `toml:"dir"`

	// Backend is "file" or "sqlite".
	Backend string `toml:"backend"`
}

// Feed configures the external task endpoint.
type Feed struct {
	// URL is fetched once per task view. An explicitly empty URL disables the feed.
	URL string `toml:"url"`

	// Timeout is a Go duration string; "0" disables the timeout.
	Timeout string `toml:"timeout"`
}

// Log configures diagnostic logging.
type Log struct {
	Level string `toml:"level"`
}

// TimeoutDuration parses Timeout.
func (f Feed) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(f.Timeout) == "" {
		return DefaultFeedTimeout, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(f.Timeout))
	if err != nil {
		return 0, fmt.Errorf("parse feed timeout %q: %w", f.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("feed timeout must not be negative: %s", f.Timeout)
	}
	return d, nil
}

// Load reads the config file at path (the default path when empty), applies
// defaults for unset keys, then environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		defaultPath, err := paths.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, meta, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg, meta)
	applyEnv(cfg)

	dir, err := paths.ResolveWithDefault(strings.TrimSpace(cfg.Storage.Dir), paths.DefaultStateDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.Dir = dir

	if _, err := cfg.Feed.TimeoutDuration(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func applyDefaults(cfg *Config, meta toml.MetaData) {
	cfg.Storage.Backend = withDefault(cfg.Storage.Backend, DefaultBackend)
	cfg.Log.Level = withDefault(cfg.Log.Level, DefaultLogLevel)
	cfg.Feed.Timeout = strings.TrimSpace(cfg.Feed.Timeout)

	// An empty url is meaningful, so only fill it in when the key is absent.
	if meta.IsDefined("feed", "url") {
		cfg.Feed.URL = strings.TrimSpace(cfg.Feed.URL)
	} else {
		cfg.Feed.URL = DefaultFeedURL
	}
}

func applyEnv(cfg *Config) {
	if value, ok := os.LookupEnv(EnvStateDir); ok && strings.TrimSpace(value) != "" {
		cfg.Storage.Dir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvBackend); ok && strings.TrimSpace(value) != "" {
		cfg.Storage.Backend = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvFeedURL); ok {
		cfg.Feed.URL = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvFeedTimeout); ok && strings.TrimSpace(value) != "" {
		cfg.Feed.Timeout = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(value) != "" {
		cfg.Log.Level = strings.TrimSpace(value)
	}
}

func withDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
