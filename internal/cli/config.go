package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the bindcheck settings.
type Config struct {
	Bindings string `mapstructure:"bindings"`
	Dir      string `mapstructure:"dir"`
	Output   string `mapstructure:"output"`
	Package  string `mapstructure:"package"`
	Param    string `mapstructure:"param"`
	Depth    int    `mapstructure:"depth"`
	Verbose  bool   `mapstructure:"verbose"`
}

// newViper returns a viper instance reading bindcheck.yaml from configDir
// with defaults and BINDCHECK_ environment overrides.
func newViper(configDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("bindings", "bindings.yaml")
	v.SetDefault("dir", "")
	v.SetDefault("output", "./generated")
	v.SetDefault("package", "accessors")
	v.SetDefault("param", "x")
	v.SetDefault("depth", 3)
	v.SetDefault("verbose", false)

	v.SetConfigName("bindcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("BINDCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// loadConfig reads the configuration held by v. A missing config file is
// not an error.
func loadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Bindings == "" {
		return errors.New("bindings file is required")
	}

	if config.Depth < 1 {
		return fmt.Errorf("depth must be positive, got %d", config.Depth)
	}

	return nil
}
