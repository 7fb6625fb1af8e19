package config

import (
	"path/filepath"
	"time"

	"github.com/AndreyAkinshin/testtask/internal/gotest"
)

// Default configuration values.
const (
	DefaultTimeout  = 20 * time.Second
	DefaultSummary  = "none"
	DefaultLogLevel = "info"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Default returns the configuration used when no project file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(cfg *Config) {
	if len(cfg.Packages) == 0 {
		cfg.Packages = append([]string(nil), gotest.DefaultPackages...)
	}
	if cfg.Summary == "" {
		cfg.Summary = DefaultSummary
	}
	if cfg.Timeout == "" {
		cfg.Timeout = DefaultTimeout.String()
	}
	applyLogDefaults(cfg)
	applyDirDefault(cfg)
}

func applyLogDefaults(cfg *Config) {
	if cfg.Log == nil {
		cfg.Log = &LogConfig{}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = LogFormatText
	}
}

// applyDirDefault resolves dir relative to the config file's directory.
func applyDirDefault(cfg *Config) {
	if cfg.Path == "" || filepath.IsAbs(cfg.Dir) {
		return
	}
	cfg.Dir = filepath.Join(filepath.Dir(cfg.Path), cfg.Dir)
}
