package logger

import (
	"fmt"

	"go-hrdata/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger from config. Format "console" gives the
// development encoder, anything else JSON.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg, err := zapConfig(cfg)
	if err != nil {
		return nil, err
	}
	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// WithFile returns a logger that also writes JSON lines to path. The
// returned func flushes and closes the file.
func WithFile(base *zap.Logger, cfg config.LogConfig, path string) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	sink, closeSink, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		sink,
		level,
	)
	l := base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	}))
	return l, func() error {
		_ = l.Sync()
		closeSink()
		return nil
	}, nil
}

func zapConfig(cfg config.LogConfig) (zap.Config, error) {
	var zapCfg zap.Config
	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zapCfg, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg, nil
}
