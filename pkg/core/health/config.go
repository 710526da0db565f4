package health

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	// RunningInKubernetes gates traffic readiness on an explicit
	// MarkTrafficReady call instead of component readiness alone.
	RunningInKubernetes bool `mapstructure:"running-in-kubernetes"`
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	var cfg Config

	sub := v.Sub("readiness")
	if sub == nil {
		sub = viper.New()
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load readiness config: %w", err)
	}

	logger.Info("loaded readiness config", zap.Any("config", cfg))
	return cfg, nil
}
