// Package config loads the application configuration: embedded defaults
// with an optional user YAML file merged on top.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// Config is the full application configuration.
type Config struct {
	Theme   string        `yaml:"theme"`
	History HistoryConfig `yaml:"history"`
	Grid    GridConfig    `yaml:"grid"`
	Search  SearchConfig  `yaml:"search"`
	Log     LogConfig     `yaml:"log"`
}

type HistoryConfig struct {
	Size int `yaml:"size"`
}

// GridConfig caps column width measurement in the grid renderer.
type GridConfig struct {
	MinColWidth int `yaml:"min_col_width"`
	MaxColWidth int `yaml:"max_col_width"`
	SampleRows  int `yaml:"sample_rows"`
}

type SearchConfig struct {
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

var (
	defaultsOnce sync.Once
	defaults     Config
	defaultsErr  error
)

// Defaults parses and returns the embedded default configuration.
func Defaults() (Config, error) {
	defaultsOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			defaultsErr = fmt.Errorf("embedded default config is empty")
			return
		}
		defaultsErr = yaml.Unmarshal(embeddedDefaultConfig, &defaults)
		if defaultsErr != nil {
			defaultsErr = fmt.Errorf("decode embedded default config: %w", defaultsErr)
		}
	})
	return defaults, defaultsErr
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "tbx", "config.yaml")
}

// Load returns the defaults with the user file at path merged over them.
// An empty path falls back to DefaultPath; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return cfg, err
	}
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	// Unmarshal over the defaults so absent keys keep their default values.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// LogLevel maps the config's textual level to the zapcore numeric scale.
func (c Config) LogLevel() int8 {
	switch c.Log.Level {
	case "debug":
		return -1
	case "warn":
		return 1
	case "error":
		return 2
	default:
		return 0
	}
}
