// Package config loads repocat settings: built-in defaults, then an optional
// TOML file, then environment overrides. The environment is read here and
// nowhere else.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	GitHub    GitHubConfig    `toml:"github"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
	Tree      TreeConfig      `toml:"tree"`
	Aggregate AggregateConfig `toml:"aggregate"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

type GitHubConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	// SessionTTL drops browser sessions idle for longer, e.g. "30m".
	SessionTTL  time.Duration `toml:"session_ttl"`
	MaxSessions int           `toml:"max_sessions"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text, json or console
	File   string `toml:"file"`   // empty writes to stderr, except under the TUI
}

type TreeConfig struct {
	Concurrency int      `toml:"concurrency"`
	Exclude     []string `toml:"exclude"`
}

// AggregateConfig bounds file fetches during processing. Zero is unbounded.
type AggregateConfig struct {
	Concurrency int `toml:"concurrency"`
}

type MetricsConfig struct {
	// Estimator is "simple" or a tiktoken model name.
	Estimator string `toml:"estimator"`
}

func Default() Config {
	return Config{
		GitHub: GitHubConfig{BaseURL: "https://api.github.com"},
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			SessionTTL:  30 * time.Minute,
			MaxSessions: 256,
		},
		Log:     LogConfig{Level: "info", Format: "text"},
		Tree:    TreeConfig{Concurrency: 8},
		Metrics: MetricsConfig{Estimator: "simple"},
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json", "console":
	default:
		return fmt.Errorf("log.format: want text, json or console, got %q", c.Log.Format)
	}
	if c.Tree.Concurrency < 0 {
		return fmt.Errorf("tree.concurrency: must not be negative, got %d", c.Tree.Concurrency)
	}
	if c.Aggregate.Concurrency < 0 {
		return fmt.Errorf("aggregate.concurrency: must not be negative, got %d", c.Aggregate.Concurrency)
	}
	if c.Server.SessionTTL < 0 {
		return fmt.Errorf("server.session_ttl: must not be negative, got %s", c.Server.SessionTTL)
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions: must not be negative, got %d", c.Server.MaxSessions)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr: must not be empty")
	}
	return nil
}

// Loader reads configuration. Its hooks default to the os package.
type Loader struct {
	ReadFile func(name string) ([]byte, error)
	Getenv   func(key string) string
	HomeDir  func() (string, error)
}

func NewLoader() *Loader {
	return &Loader{ReadFile: os.ReadFile, Getenv: os.Getenv, HomeDir: os.UserHomeDir}
}

// DefaultPath is ~/.config/repocat/config.toml, or "" if the home directory
// is unknown.
func (l *Loader) DefaultPath() string {
	home, err := l.HomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "repocat", "config.toml")
}

// Load builds the configuration. An explicit path must exist; the default
// path is skipped when missing.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = l.DefaultPath()
	}
	if path != "" {
		data, err := l.ReadFile(path)
		switch {
		case err == nil:
			md, err := toml.Decode(string(data), &cfg)
			if err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
			if keys := md.Undecoded(); len(keys) > 0 {
				return Config{}, fmt.Errorf("parse %s: unknown keys %v", path, keys)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	set := func(key string, dst *string) {
		if v := l.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("GITHUB_TOKEN", &cfg.GitHub.Token)
	set("GITHUB_API_URL", &cfg.GitHub.BaseURL)
	set("REPOCAT_ADDR", &cfg.Server.Addr)
	set("LOG_LEVEL", &cfg.Log.Level)
	set("LOG_FORMAT", &cfg.Log.Format)
	set("REPOCAT_LOG_FILE", &cfg.Log.File)
	set("REPOCAT_TOKEN_ESTIMATOR", &cfg.Metrics.Estimator)

	if v := l.Getenv("REPOCAT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPOCAT_CONCURRENCY: %w", err)
		}
		cfg.Tree.Concurrency = n
	}
	if v := l.Getenv("REPOCAT_FETCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPOCAT_FETCH_CONCURRENCY: %w", err)
		}
		cfg.Aggregate.Concurrency = n
	}
	return nil
}
