// Package observability builds the process logger and meter from configuration.
package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/gauntlet/internal/config"
)

// Setup builds the logger and meter one binary runs with. The logger is named after service and every entry
// carries a service field.
//
// Precondition: cfg must be valid; service must be non-empty.
// Postcondition: Returns a logger and a non-nil meter, or an error.
func Setup(cfg config.Config, service string) (*zap.Logger, metric.Meter, error) {
	logger, err := NewLogger(cfg.Logging, service)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("observability ready",
		zap.String("level", cfg.Logging.Level),
		zap.String("format", cfg.Logging.Format),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)
	return logger, NewMeter(cfg.Metrics), nil
}

// NewLogger creates a structured logger for service from the logging configuration, writing to stderr.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" (production, sampled) or "console" (development: DPanic panics).
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	return buildLogger(cfg, service, []string{"stderr"})
}

func buildLogger(cfg config.LoggingConfig, service string, outputs []string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	zapCfg.OutputPaths = outputs
	zapCfg.InitialFields = map[string]any{"service": service}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named(service), nil
}
