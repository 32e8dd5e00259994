// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package logging builds the zap loggers shared by all commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console-encoded sugared logger at the given level ("debug",
// "info", "warn", "error"). Output goes to stderr, or appends to file when
// one is given; the terminal renderer owns the screen, so runs using it
// should log to a file.
func New(level, file string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	output := "stderr"
	if file != "" {
		output = file
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Development:       false,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{output},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Must is New for command main functions; it falls back to a production
// logger when the level or file is unusable.
func Must(level, file string) *zap.SugaredLogger {
	logger, err := New(level, file)
	if err != nil {
		fallback := zap.Must(zap.NewProduction()).Sugar()
		fallback.Warnf("logging: %v, using info on stderr", err)
		return fallback
	}
	return logger
}
