// Package config loads the runtime configuration of a mock engine from a file, the environment, or
// both.
package config

import (
	"errors"
	"io/fs"
	"os"
	"slices"

	"github.com/spf13/viper"
)

// LogConfig is the configuration of the engine logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"` // The zap level, e.g. "debug". Defaults to info.
}

// Config is the configuration of a mock engine.
type Config struct {
	Name     string    `mapstructure:"name" yaml:"name"`         // Prefix of error messages, "Web3Mock" when empty.
	Log      LogConfig `mapstructure:"log" yaml:"log"`           // Logger settings.
	Fixtures []string  `mapstructure:"fixtures" yaml:"fixtures"` // Fixture files mocked when the engine is created.
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := viper.New()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// envBindings maps config keys to the environment variables that can provide their value, in
// order of preference.
var envBindings = map[string][]string{
	"name":      {"WEB3MOCK_NAME"},
	"log.level": {"WEB3MOCK_LOG_LEVEL"},
	"fixtures":  {"WEB3MOCK_FIXTURES"},
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}
