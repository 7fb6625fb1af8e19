package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/AndreyAkinshin/testtask/internal/diag"
	"github.com/AndreyAkinshin/testtask/internal/summary"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration with defaults applied and returns warnings for
// non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	if _, err := summary.ParseMode(cfg.Summary); err != nil {
		return nil, &ValidationError{Field: "summary", Message: err.Error()}
	}

	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, &ValidationError{Field: "timeout", Message: fmt.Sprintf("invalid duration %q", cfg.Timeout)}
	}
	if d <= 0 {
		return nil, &ValidationError{Field: "timeout", Message: "must be positive"}
	}

	if err := validateLog(cfg.Log); err != nil {
		return nil, err
	}

	for i, pkg := range cfg.Packages {
		if strings.TrimSpace(pkg) == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("packages[%d]", i), Message: "must not be empty"}
		}
	}

	for _, flag := range cfg.GoFlags {
		if isReservedGoFlag(flag) {
			warnings = append(warnings, fmt.Sprintf("go_flags: %q conflicts with the flags testtask passes to go test", flag))
		}
	}

	return warnings, nil
}

func validateLog(log *LogConfig) error {
	if _, err := diag.ParseLevel(log.Level); err != nil {
		return &ValidationError{Field: "log.level", Message: err.Error()}
	}
	if log.Format != LogFormatText && log.Format != LogFormatJSON {
		return &ValidationError{Field: "log.format", Message: fmt.Sprintf("must be %q or %q", LogFormatText, LogFormatJSON)}
	}
	return nil
}

// isReservedGoFlag reports whether flag conflicts with the flags testtask passes to go test.
func isReservedGoFlag(flag string) bool {
	name, _, _ := strings.Cut(strings.TrimLeft(flag, "-"), "=")
	switch name {
	case "json", "run", "list":
		return true
	}
	return false
}
