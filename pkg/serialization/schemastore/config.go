package schemastore

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// ModeMemory keeps schemas in process memory only.
	ModeMemory = "memory"
	// ModeConfluent backs the store with a Confluent Schema Registry.
	ModeConfluent = "confluent"
)

type Config struct {
	Mode      string          `mapstructure:"mode"`
	Confluent ConfluentConfig `mapstructure:"confluent"`
}

type ConfluentConfig struct {
	URL                  string         `mapstructure:"url"`
	RequestTimeout       *time.Duration `mapstructure:"request-timeout"`
	RetryInitialInterval *time.Duration `mapstructure:"retry-initial-interval"`
	RetryMaxElapsed      *time.Duration `mapstructure:"retry-max-elapsed"`
	LookupRatePerSec     *float64       `mapstructure:"lookup-rate-per-sec"`
	LookupBurst          *int           `mapstructure:"lookup-burst"`
	RefreshInterval      *time.Duration `mapstructure:"refresh-interval"`
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	var cfg Config

	sub := v.Sub("schema-store")
	if sub == nil {
		sub = viper.New()
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal schema-store config: %w", err)
	}

	applyDefaults(&cfg)
	logger.Info("loaded schema-store config", zap.Any("config", cfg))
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = ModeMemory
	}
	applyConfluentDefaults(&cfg.Confluent)
}

func applyConfluentDefaults(cfg *ConfluentConfig) {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8081"
	}
	if cfg.RequestTimeout == nil {
		cfg.RequestTimeout = lo.ToPtr(5 * time.Second)
	}
	if cfg.RetryInitialInterval == nil {
		cfg.RetryInitialInterval = lo.ToPtr(100 * time.Millisecond)
	}
	if cfg.RetryMaxElapsed == nil {
		cfg.RetryMaxElapsed = lo.ToPtr(10 * time.Second)
	}
	if cfg.LookupRatePerSec == nil {
		cfg.LookupRatePerSec = lo.ToPtr(1.0)
	}
	if cfg.LookupBurst == nil {
		cfg.LookupBurst = lo.ToPtr(3)
	}
	if cfg.RefreshInterval == nil {
		cfg.RefreshInterval = lo.ToPtr(time.Minute)
	}
}
