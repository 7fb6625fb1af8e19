package diag

import (
	"fmt"

	"github.com/AndreyAkinshin/testtask/internal/output"
)

// textSink renders diagnostics through the CLI output writer.
type textSink struct {
	w       *output.Writer
	level   Level
	channel string
}

// NewText returns a Sink writing human-readable lines to w.
// Messages below level are dropped. Trace, config and info go to stdout;
// warning and severe go to stderr.
func NewText(w *output.Writer, level Level) Sink {
	return &textSink{w: w, level: level}
}

func (s *textSink) Trace(format string, args ...any) { s.log(LevelTrace, format, args...) }
func (s *textSink) Config(format string, args ...any) { s.log(LevelConfig, format, args...) }
func (s *textSink) Info(format string, args ...any) { s.log(LevelInfo, format, args...) }
func (s *textSink) Warning(format string, args ...any) { s.log(LevelWarning, format, args...) }
func (s *textSink) Severe(format string, args ...any) { s.log(LevelSevere, format, args...) }

func (s *textSink) Sub(name string) Sink {
	return &textSink{w: s.w, level: s.level, channel: channelName(s.channel, name)}
}

func (s *textSink) log(l Level, format string, args ...any) {
	if l < s.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if s.channel != "" {
		msg = "[" + s.channel + "] " + msg
	}

	switch l {
	case LevelTrace:
		s.w.Hint("%s", msg)
	case LevelConfig:
		s.w.Hint("config: %s", msg)
	case LevelInfo:
		s.w.Info("%s", msg)
	case LevelWarning:
		s.w.WarningSimple("%s", msg)
	default:
		s.w.Severe("%s", msg)
	}
}
