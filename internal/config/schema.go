// Package config provides loading and validation for the testtask project file.
package config

import "time"

// Config represents testtask.json (or testtask.yaml).
type Config struct {
	Packages []string   `json:"packages,omitempty"`
	Summary  string     `json:"summary,omitempty"`
	Timeout  string     `json:"timeout,omitempty"`
	GoFlags  []string   `json:"go_flags,omitempty"`
	Dir      string     `json:"dir,omitempty"`
	Log      *LogConfig `json:"log,omitempty"`
	Report   string     `json:"report,omitempty"`

	// Path is the file the configuration was loaded from; empty for defaults.
	Path string `json:"-"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// TimeoutDuration returns the parsed timeout. Call only after Validate.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// JSONLogs reports whether diagnostics should be written as structured JSON.
func (c *Config) JSONLogs() bool {
	return c.Log != nil && c.Log.Format == LogFormatJSON
}
