// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     logging
// Description: Factory functions for creating zap loggers
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Service name, added to every entry as "service"
	ServiceName string

	// Log level (trace, debug, info, warn, error, fatal)
	Level string

	// Output format
	Format string // "json" or "text" (default: json)

	// Output writer (default: os.Stderr)
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "json",
	}
}

// NewLogger creates a zap logger from the configuration. An unknown level
// falls back to info.
func NewLogger(cfg LoggerConfig) *zap.Logger {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "text", "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(output)}
	for _, w := range cfg.AdditionalOutputs {
		syncers = append(syncers, zapcore.AddSync(w))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)

	logger := zap.New(core, zap.AddCaller())
	if cfg.ServiceName != "" {
		logger = logger.With(zap.String("service", cfg.ServiceName))
	}
	return logger
}

// NewServiceLogger creates a logger for a service at the given level
func NewServiceLogger(serviceName, level string) *zap.Logger {
	cfg := DefaultLoggerConfig(serviceName)
	cfg.Level = level
	return NewLogger(cfg)
}

// NewNop returns a logger that discards everything. Library packages use it
// when no logger is configured.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

// Component returns a child logger tagged with the component name
func Component(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(zap.String("component", name))
}

// parseLevel converts a string level to a zap level
func parseLevel(level string) zapcore.Level {
	l, err := ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l.zapLevel()
}
