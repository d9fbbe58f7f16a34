// Package logging constructs the zap loggers used at the orchestrator
// and CLI boundary. Core codec packages never import this package --
// they stay pure and silent, per SPEC_FULL.md §10.2.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the rotating file sink. A zero Options still
// produces a usable logger, writing only to stderr.
type Options struct {
	// FilePath, when non-empty, adds a lumberjack-rotated file sink
	// alongside stderr. Suited to unattended batch runs (SPEC_FULL.md
	// §10.2).
	FilePath   string
	MaxSizeMB  int // defaults to 50
	MaxBackups int // defaults to 3
	MaxAgeDays int // defaults to 28
	Debug      bool
}

// New builds a zap.Logger writing structured, leveled output to stderr
// and, if configured, to a rotating log file.
func New(opts Options) *zap.Logger {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if opts.FilePath != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(lj), level))
	}

	return zap.New(zapcore.NewTee(cores...))
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}
