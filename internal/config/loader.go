package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".sortstep"
	configType      = "yaml"
	envPrefix       = "SORTSTEP"
	envKeySeparator = "_"
)

// Load reads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// A missing config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("engine.size", DefaultEngineSize)
	v.SetDefault("engine.algorithm", DefaultEngineAlgorithm)
	v.SetDefault("engine.shuffle_skip", DefaultEngineShuffleSkip)
	v.SetDefault("engine.traverse_skip", DefaultEngineTraverseSkip)
	v.SetDefault("engine.filter", []string{})
	v.SetDefault("engine.seed", DefaultEngineSeed)
	v.SetDefault("engine.key_offset", DefaultEngineKeyOffset)

	v.SetDefault("playback.rate", DefaultPlaybackRate)
	v.SetDefault("store.path", DefaultStorePath)
	v.SetDefault("metrics.addr", DefaultMetricsAddr)
}
