package logger

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// loggerOptions holds internal configuration for the logging module.
type loggerOptions struct {
	config *Config
}

// LoggerOption is a functional option for configuring the logging module.
type LoggerOption func(*loggerOptions)

// WithLoggerConfig provides a static logger Config instead of loading it
// from viper. Useful for tests.
func WithLoggerConfig(cfg Config) LoggerOption {
	return func(o *loggerOptions) {
		o.config = &cfg
	}
}

// NewZapLoggingModule creates a new fx module for zap logger initialization.
// It provides a configured *zap.Logger and its zap.AtomicLevel, and routes
// fx's own lifecycle events through the logger.
func NewZapLoggingModule(opts ...LoggerOption) fx.Option {
	o := &loggerOptions{}
	for _, opt := range opts {
		opt(o)
	}

	configProvider := any(newConfig)
	if o.config != nil {
		cfg := *o.config
		configProvider = func() Config { return cfg }
	}

	return fx.Options(
		fx.Provide(
			configProvider,
			provideLogger,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, conf Config) (*zap.Logger, zap.AtomicLevel, error) {
	logger, level, err := newLogger(conf)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to create logger: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			err := logger.Sync()
			if err != nil {
				// Sync on stderr fails with EINVAL on some platforms
				if pathErr, ok := err.(*os.PathError); ok && pathErr.Err.Error() == "invalid argument" {
					return nil
				}
				return err
			}
			return nil
		},
	})

	return logger, level, nil
}
