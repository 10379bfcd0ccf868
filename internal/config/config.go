// Package config loads the tool's own configuration file, env-composer.yml,
// which controls cache location, sync parallelism, and logging. Manifest
// parsing lives in envspec; this package is only about the tool itself.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/notebook-tools/env-composer/internal/utils/general/slice"
)

// validLogLevels are the levels accepted in the logging section.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = "env-composer.yml"

// GlobalConfig is the tool configuration.
type GlobalConfig struct {
	// Workers is the number of concurrent index downloads.
	Workers int `yaml:"workers"`

	// CacheDir is where synced channel indexes are stored.
	CacheDir string `yaml:"cacheDir"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *GlobalConfig {
	return &GlobalConfig{
		Workers:  4,
		CacheDir: "cache",
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads the configuration file at path, filling unset fields from the
// defaults. A missing file at the default location is not an error.
func Load(path string) (*GlobalConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultFileName {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = Default().Workers
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = Default().CacheDir
	}
	if !slice.Contains(validLogLevels, cfg.Logging.Level) {
		cfg.Logging.Level = Default().Logging.Level
	}
	return cfg, nil
}
