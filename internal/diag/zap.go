package diag

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapSink forwards diagnostics to a structured zap logger.
// zap has no trace or config level; both are written at debug with a severity field.
type zapSink struct {
	logger *zap.Logger
	level  Level
}

// NewZap returns a Sink backed by logger. Messages below level are dropped
// before they reach zap.
func NewZap(logger *zap.Logger, level Level) Sink {
	return &zapSink{logger: logger, level: level}
}

// NewZapLogger builds a JSON logger writing to w at the zap level matching level.
func NewZapLogger(w io.Writer, level Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), zapLevel(level))
	return zap.New(core)
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelTrace, LevelConfig:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (s *zapSink) Trace(format string, args ...any) {
	if s.level <= LevelTrace {
		s.logger.Debug(fmt.Sprintf(format, args...), zap.String("severity", LevelTrace.String()))
	}
}

func (s *zapSink) Config(format string, args ...any) {
	if s.level <= LevelConfig {
		s.logger.Debug(fmt.Sprintf(format, args...), zap.String("severity", LevelConfig.String()))
	}
}

func (s *zapSink) Info(format string, args ...any) {
	if s.level <= LevelInfo {
		s.logger.Info(fmt.Sprintf(format, args...))
	}
}

func (s *zapSink) Warning(format string, args ...any) {
	if s.level <= LevelWarning {
		s.logger.Warn(fmt.Sprintf(format, args...))
	}
}

func (s *zapSink) Severe(format string, args ...any) {
	s.logger.Error(fmt.Sprintf(format, args...))
}

func (s *zapSink) Sub(name string) Sink {
	return &zapSink{logger: s.logger.Named(name), level: s.level}
}
