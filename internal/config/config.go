package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "artistmusic"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	DataDir  string `koanf:"data_dir"`  // default: $XDG_DATA_HOME/artistmusic
	AudioDir string `koanf:"audio_dir"` // default: <data_dir>/Audio

	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
	Artwork  ArtworkConfig  `koanf:"artwork"`
	Playback PlaybackConfig `koanf:"playback"`
}

// StorageConfig selects where the catalog snapshot lives.
type StorageConfig struct {
	Backend string `koanf:"backend"` // "file" or "sqlite" (default: "file")
	Path    string `koanf:"path"`    // default: artists.json or artistmusic.db in data_dir
}

// LogConfig controls the application log.
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error (default: info)
	File       string `koanf:"file"`        // rotated log file; empty logs to stderr
	MaxSizeMB  int    `koanf:"max_size_mb"` // default: 10
	MaxBackups int    `koanf:"max_backups"` // default: 3
}

// ArtworkConfig bounds stored images.
type ArtworkConfig struct {
	MaxSize int `koanf:"max_size"` // longest edge in pixels (default: 1024)
}

// PlaybackConfig tunes the playback tickers.
type PlaybackConfig struct {
	ProgressIntervalMS int `koanf:"progress_interval_ms"` // default: 250
	SpinIntervalMS     int `koanf:"spin_interval_ms"`     // default: 20
}

// Load reads the standard config files, then explicit if it is set. An
// explicit path must exist.
func Load(explicit string) (*Config, error) {
	paths := getConfigPaths()
	if explicit != "" {
		explicit = expandPath(explicit)
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		paths = append(paths, explicit)
	}
	return LoadFrom(paths)
}

// LoadFrom merges the TOML files in paths that exist, last wins, and fills
// in defaults.
func LoadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{
		Storage: StorageConfig{Backend: BackendFile},
		Log:     LogConfig{Level: "info"},
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(xdg.DataHome, appName)
	}
	c.DataDir = expandPath(c.DataDir)

	if c.AudioDir == "" {
		c.AudioDir = filepath.Join(c.DataDir, "Audio")
	}
	c.AudioDir = expandPath(c.AudioDir)

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendFile
	}
	if c.Storage.Path == "" {
		name := "artists.json"
		if c.Storage.Backend == BackendSQLite {
			name = appName + ".db"
		}
		c.Storage.Path = filepath.Join(c.DataDir, name)
	}
	c.Storage.Path = expandPath(c.Storage.Path)

	if c.Log.File != "" {
		c.Log.File = expandPath(c.Log.File)
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups < 0 {
		c.Log.MaxBackups = 0
	} else if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}

	if c.Artwork.MaxSize <= 0 {
		c.Artwork.MaxSize = 1024
	}
	if c.Playback.ProgressIntervalMS <= 0 {
		c.Playback.ProgressIntervalMS = 250
	}
	if c.Playback.SpinIntervalMS <= 0 {
		c.Playback.SpinIntervalMS = 20
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q (want %q or %q)", c.Storage.Backend, BackendFile, BackendSQLite)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}
	return nil
}

// ProgressInterval returns the progress polling period.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Playback.ProgressIntervalMS) * time.Millisecond
}

// SpinInterval returns the rotation tick period.
func (c *Config) SpinInterval() time.Duration {
	return time.Duration(c.Playback.SpinIntervalMS) * time.Millisecond
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/artistmusic/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
