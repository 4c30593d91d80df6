package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured key/value logger backed by zap
type Logger struct {
	sugar *zap.SugaredLogger
}

// Config controls logger construction
type Config struct {
	Level       string
	Development bool
	// File enables an additional daily-rotated log file, e.g. /var/log/seeran/api.log
	File string
}

// NewLogger builds a logger with default level for the environment
func NewLogger(isDevelopment bool) *Logger {
	l, err := New(Config{Development: isDevelopment})
	if err != nil {
		return &Logger{sugar: zap.NewExample().Sugar()}
	}
	return l
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// New builds a logger from the given config
func New(cfg Config) (*Logger, error) {
	level := levelFromString(cfg.Level, cfg.Development)

	var encoder zapcore.Encoder
	if cfg.Development {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level),
	}

	if cfg.File != "" {
		writer, err := newRotatingWriter(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		fileEncoderCfg := zap.NewProductionEncoderConfig()
		fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderCfg), zapcore.AddSync(writer), level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	return &Logger{sugar: zap.New(zapcore.NewTee(cores...), opts...).Sugar()}, nil
}

func newRotatingWriter(path string) (*rotatelogs.RotateLogs, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(14*24*time.Hour),
	)
}

func levelFromString(l string, development bool) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	if development {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// WithFields returns a child logger carrying the given fields on every entry
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{sugar: l.sugar.With(args...)}
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Log writes an entry at an explicit level
func (l *Logger) Log(_ context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	switch level {
	case zapcore.DebugLevel:
		l.sugar.Debugw(msg, keysAndValues...)
	case zapcore.WarnLevel:
		l.sugar.Warnw(msg, keysAndValues...)
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		l.sugar.Errorw(msg, keysAndValues...)
	default:
		l.sugar.Infow(msg, keysAndValues...)
	}
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// Zap exposes the underlying logger, e.g. for zap.ReplaceGlobals
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}
