// Package logger implements ports.Logger on top of zap.
package logger

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/doeshing/bugsqa/internal/domain"
)

// Options controls where log lines go.
type Options struct {
	// Verbose enables the console sink on stderr.
	Verbose bool
	// Level is a zap level name; unknown values mean info.
	Level string
	// File, when set, receives JSON lines rotated by lumberjack.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	// Console overrides stderr for the console sink.
	Console zapcore.WriteSyncer
}

// OptionsFromConfig maps the logging section of the config file.
func OptionsFromConfig(cfg domain.LoggingSettings, verbose bool) Options {
	return Options{
		Verbose:    verbose,
		Level:      cfg.Level,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// ZapLogger adapts a *zap.Logger to the fields-map interface used by the application.
type ZapLogger struct {
	z *zap.Logger
}

// New wraps an existing zap logger.
func New(z *zap.Logger) *ZapLogger {
	if z == nil {
		z = zap.NewNop()
	}
	return &ZapLogger{z: z}
}

// NewNop discards everything.
func NewNop() *ZapLogger {
	return New(zap.NewNop())
}

// Build assembles a logger from opts. With neither Verbose nor File set the result is a no-op.
func Build(opts Options) *ZapLogger {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil || opts.Level == "" {
		level.SetLevel(zap.InfoLevel)
	}
	if opts.Verbose && opts.Level == "" {
		level.SetLevel(zap.DebugLevel)
	}

	var cores []zapcore.Core
	if opts.Verbose {
		console := opts.Console
		if console == nil {
			console = zapcore.Lock(os.Stderr)
		}
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), console, level))
	}
	if opts.File != "" {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		writer := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), writer, level))
	}
	if len(cores) == 0 {
		return NewNop()
	}
	return New(zap.New(zapcore.NewTee(cores...)).Named("bugsqa"))
}

// Zap exposes the underlying logger.
func (l *ZapLogger) Zap() *zap.Logger {
	return l.z
}

// Sync flushes buffered entries.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.z.Debug(msg, toFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.z.Info(msg, toFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.z.Warn(msg, toFields(fields)...)
}

func (l *ZapLogger) Error(msg string, err error, fields map[string]interface{}) {
	zf := toFields(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	l.z.Error(msg, zf...)
}

// toFields converts a fields map in key order so output is stable.
func toFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
