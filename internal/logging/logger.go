// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a json logger writing to stdout, unknown levels fall back to error
func NewLogger(l string) *Logger {
	level, err := zapcore.ParseLevel(strings.ToLower(l))
	if err != nil {
		level = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "@timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Development = level == zapcore.DebugLevel

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return newFromZap(logger)
}

// NewNoopLogger discards every entry, security events included.
func NewNoopLogger() *Logger {
	return newFromZap(zap.NewNop())
}

func newFromZap(z *zap.Logger) *Logger {
	return &Logger{
		SugaredLogger: z.Sugar(),
		security:      newSecurityLogger(z),
	}
}
