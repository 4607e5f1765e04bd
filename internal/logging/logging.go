// Package logging builds the zap logger used by the CLI and hands it to
// library code as a logr.Logger.
package logging

import (
	"strconv"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger.
//
// level accepts zap level names (debug, info, warn, error) or an integer; a
// negative integer -n enables logr V(n) messages from the engine.
// format is "json" or "console".
func New(level, format string) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return log, nil
}

// Logr adapts a zap logger to logr.
func Logr(log *zap.Logger) logr.Logger {
	return zapr.NewLogger(log)
}

func parseLevel(s string) (zapcore.Level, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return zapcore.Level(n), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", s)
	}
	return lvl, nil
}
