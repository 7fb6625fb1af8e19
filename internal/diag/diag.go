// Package diag provides the diagnostic sink used by the test lifecycle observer.
//
// A Sink logs at five severities and can be scoped into named sub-channels, which the
// summary uses to group itemized results (for example a "FAIL" channel).
package diag

import (
	"fmt"
	"strings"
)

// Level is a diagnostic severity. Lower values are more verbose.
type Level int

const (
	LevelTrace Level = iota
	LevelConfig
	LevelInfo
	LevelWarning
	LevelSevere
)

var levelNames = map[Level]string{
	LevelTrace:   "trace",
	LevelConfig:  "config",
	LevelInfo:    "info",
	LevelWarning: "warning",
	LevelSevere:  "severe",
}

// String returns the lowercase level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel parses a level name. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown log level %q (valid: %s)", s, strings.Join(LevelNames(), ", "))
}

// LevelNames returns level names from most to least verbose.
func LevelNames() []string {
	return []string{"trace", "config", "info", "warning", "severe"}
}

// Sink receives diagnostics.
type Sink interface {
	Trace(format string, args ...any)
	Config(format string, args ...any)
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Severe(format string, args ...any)
	// Sub returns a sink scoped under name.
	Sub(name string) Sink
}

// channelName joins a parent channel and a child name.
func channelName(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Trace(string, ...any) {}
func (discard) Config(string, ...any) {}
func (discard) Info(string, ...any) {}
func (discard) Warning(string, ...any) {}
func (discard) Severe(string, ...any) {}
func (discard) Sub(string) Sink { return discard{} }
