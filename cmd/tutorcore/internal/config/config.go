// Package config provides the configuration system for the tutorcore CLI.
//
// Configuration lives in a single YAML file:
//
//	~/.tutorcore/config.yaml
//
// Absent file or absent keys fall back to defaults, so a fresh install runs
// a text-only session archived under ~/.tutorcore without any setup.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/tutorstack/tutorcore/pkg/cli"
)

// Config holds the CLI configuration.
type Config struct {
	// Endpoint is the realtime voice backend WebSocket URL. Empty means no
	// voice channel: sessions run text-only.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Token is the bearer token for the realtime backend.
	Token string `yaml:"token,omitempty"`

	// Profile is the education level for spoken-math conversion
	// (elementary, middle_school, high_school, college).
	Profile string `yaml:"profile,omitempty"`

	// Capacity is the transcript board capacity. Zero uses the default.
	Capacity int `yaml:"capacity,omitempty"`

	// ArchiveDir is the directory for the on-disk session archive. Empty
	// uses ~/.tutorcore/archive.
	ArchiveDir string `yaml:"archive_dir,omitempty"`

	// Flags holds feature toggles (voice_enabled, transcript_ingest).
	Flags map[string]bool `yaml:"flags,omitempty"`

	// path is where the config was loaded from.
	path string
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Profile: "middle_school",
		Flags: map[string]bool{
			"voice_enabled":     true,
			"transcript_ingest": true,
		},
	}
}

// Load loads the configuration from the default location
// (~/.tutorcore/config.yaml).
func Load() (*Config, error) {
	paths, err := cli.NewPaths()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom loads the configuration from a specific file. A missing file is
// not an error: defaults are returned.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Flags == nil {
		cfg.Flags = Default().Flags
	}
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// FlagEnabled reports whether a named feature toggle is on.
func (c *Config) FlagEnabled(name string) bool {
	return c.Flags[name]
}
