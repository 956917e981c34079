// Package logging builds the process logger: zap's SugaredLogger, writing
// JSON to a size-rotated file and human-readable lines to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface the rest of the module depends on.
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
}

// Config controls level and rotation.
type Config struct {
	Level     string
	File      string // empty disables the file sink
	MaxSizeMB int
	MaxFiles  int
	Console   bool
}

// ZapLogger adapts a SugaredLogger to Logger.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps s.
func NewZapLogger(s *zap.SugaredLogger) *ZapLogger {
	return &ZapLogger{s: s}
}

func (l *ZapLogger) Info(args ...interface{})                  { l.s.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...interface{})  { l.s.Infof(format, args...) }
func (l *ZapLogger) Warn(args ...interface{})                  { l.s.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...interface{})  { l.s.Warnf(format, args...) }
func (l *ZapLogger) Error(args ...interface{})                 { l.s.Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }
func (l *ZapLogger) Debug(args ...interface{})                 { l.s.Debug(args...) }
func (l *ZapLogger) Debugf(format string, args ...interface{}) { l.s.Debugf(format, args...) }

// Named returns a child logger tagged with a component name.
func (l *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{s: l.s.Named(name)}
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.s.Sync()
}

// New builds a logger from cfg.
func New(cfg Config) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(defaultString(cfg.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cores []zapcore.Core

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    defaultInt(cfg.MaxSizeMB, 50),
			MaxBackups: defaultInt(cfg.MaxFiles, 5),
			Compress:   true,
		}
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rotator), level))
	}

	if cfg.Console || cfg.File == "" {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level))
	}

	z := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return NewZapLogger(z.Sugar()), nil
}

// Nop returns a logger that discards everything.
func Nop() *ZapLogger {
	return NewZapLogger(zap.NewNop().Sugar())
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func defaultInt(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
