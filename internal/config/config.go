package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "wavestore"

// Environment variables overriding the config files.
const (
	EnvDatabase = "WAVESTORE_DB"
	EnvLogLevel = "WAVESTORE_LOG_LEVEL"
	EnvLogFile  = "WAVESTORE_LOG_FILE"
)

type Config struct {
	Database      string `koanf:"database"`        // path of the SQLite file, ":memory:" for none
	BusyTimeoutMS int    `koanf:"busy_timeout_ms"` // wait on a locked database (default: 5000)

	Log    LogConfig    `koanf:"log"`
	Import ImportConfig `koanf:"import"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `koanf:"level"`        // logrus level name (default: "info")
	Format     string `koanf:"format"`       // "text" or "json" (default: "text")
	File       string `koanf:"file"`         // log to this file instead of stderr
	MaxSizeMB  int    `koanf:"max_size_mb"`  // rotate after this size (default: 10)
	MaxBackups int    `koanf:"max_backups"`  // rotated files kept (default: 3)
	MaxAgeDays int    `koanf:"max_age_days"` // days rotated files are kept (default: 28)
}

// ImportConfig holds defaults for the import command.
type ImportConfig struct {
	Extensions []string `koanf:"extensions"` // audio file extensions to pick up
	Tags       []string `koanf:"tags"`       // tags applied to every imported playable
}

func Load() (*Config, error) {
	// .env never overrides variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return loadFrom(getConfigPaths())
}

func loadFrom(configPaths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = DefaultDatabasePath()
	}
	c.Database = expandPath(c.Database)
	if c.BusyTimeoutMS <= 0 {
		c.BusyTimeoutMS = 5000
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format != "json" {
		c.Log.Format = "text"
	}
	if c.Log.File != "" {
		c.Log.File = expandPath(c.Log.File)
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 28
	}

	if len(c.Import.Extensions) == 0 {
		c.Import.Extensions = []string{".mp3", ".flac", ".m4a", ".ogg", ".opus", ".wav"}
	}
}

// BusyTimeout returns the configured busy timeout.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// DefaultDatabasePath is the database used when none is configured.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, appName, "library.db")
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/wavestore/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
