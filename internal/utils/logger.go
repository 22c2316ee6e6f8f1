// internal/utils/logger.go

package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging throughout the application.
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	Sync() error
}

// LogConfig selects the level and encoding of the zap backend.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // console, json
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`

	// Stderr sends output to stderr, for CLIs whose stdout carries results.
	Stderr bool `yaml:"-" json:"-"`
}

// ZapLogger adapts a zap.SugaredLogger to the Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates an info-level console logger on stdout.
func NewLogger() Logger {
	logger, err := NewZapLogger(LogConfig{Level: "info", Format: "console"})
	if err != nil {
		return NewNopLogger()
	}
	return logger
}

// NewZapLogger builds a logger from cfg. Unknown levels fall back to info.
func NewZapLogger(cfg LogConfig) (Logger, error) {
	out := os.Stdout
	if cfg.Stderr {
		out = os.Stderr
	}
	return newZapLogger(cfg, zapcore.Lock(out))
}

func newZapLogger(cfg LogConfig, out zapcore.WriteSyncer) (Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	core := zapcore.NewCore(encoder, out, level)
	logger := zap.New(core, zap.AddStacktrace(zap.ErrorLevel))
	if cfg.Name != "" {
		logger = logger.Named(cfg.Name)
	}
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *ZapLogger) Debug(msg string) { l.sugar.Debug(msg) }

func (l *ZapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func (l *ZapLogger) Info(msg string) { l.sugar.Info(msg) }

func (l *ZapLogger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

func (l *ZapLogger) Warn(msg string) { l.sugar.Warn(msg) }

func (l *ZapLogger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

func (l *ZapLogger) Error(msg string) { l.sugar.Error(msg) }

func (l *ZapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

func (l *ZapLogger) WithField(key string, value interface{}) Logger {
	return &ZapLogger{sugar: l.sugar.With(key, value)}
}

func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &ZapLogger{sugar: l.sugar.With(args...)}
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *ZapLogger) Sync() error {
	if err := l.sugar.Sync(); err != nil && !isIgnorableSyncError(err) {
		return err
	}
	return nil
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "inappropriate ioctl") || strings.Contains(msg, "invalid argument")
}
