package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// viperOptions holds internal configuration options for the Viper module.
type viperOptions struct {
	configPath   *string
	noConfigFile bool
}

// ViperOption is a functional option for configuring the Viper module.
type ViperOption func(*viperOptions)

// WithConfigPath sets a direct path to the configuration file.
// Overrides the path resolved from AppConfig.
func WithConfigPath(path string) ViperOption {
	return func(o *viperOptions) {
		o.configPath = &path
	}
}

// WithoutConfigFile disables loading of any config file.
// Viper will still be available for DI with environment variable
// support but with no file-based configuration.
func WithoutConfigFile() ViperOption {
	return func(o *viperOptions) {
		o.noConfigFile = true
	}
}

// NewViperModule creates an fx module for Viper configuration.
// By default, the config file path comes from AppConfig.
// Use WithConfigPath to override with a direct path.
// Use WithoutConfigFile to disable config file loading.
func NewViperModule(opts ...ViperOption) fx.Option {
	o := &viperOptions{}
	for _, opt := range opts {
		opt(o)
	}

	provider := any(newViper)
	switch {
	case o.noConfigFile:
		provider = func() *viper.Viper { return newViperFromFile("") }
	case o.configPath != nil:
		path := *o.configPath
		provider = func() (*viper.Viper, error) { return readViperFromFile(path) }
	}

	return fx.Module("viper",
		fx.Provide(provider),
		fx.Invoke(logViperConfig),
	)
}

func logViperConfig(logger *zap.Logger, v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		logger.Info("no config file loaded, using environment variables only")
		return
	}
	logger.Info("configuration loaded",
		zap.String("configFile", v.ConfigFileUsed()),
		zap.Int("settingsCount", len(v.AllSettings())),
	)
}

func newViper(conf AppConfig) (*viper.Viper, error) {
	return readViperFromFile(conf.ConfigFile)
}

// newViperFromFile builds a Viper instance with environment variable
// support. Keys read from nested sections resolve env overrides with
// dots and dashes replaced by underscores (e.g. schema-store.confluent.url
// maps to SCHEMA_STORE_CONFLUENT_URL).
func newViperFromFile(path string) *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

func readViperFromFile(path string) (*viper.Viper, error) {
	v := newViperFromFile(path)
	if path == "" {
		return v, nil
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file [%s]: %w", path, err)
	}
	return v, nil
}
