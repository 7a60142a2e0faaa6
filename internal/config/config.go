// Package config loads sortstep settings from defaults, an optional YAML
// file and SORTSTEP_* environment variables.
package config

import (
	"errors"
	"fmt"

	"github.com/roach88/sortstep/internal/ir"
)

// Default configuration values.
const (
	DefaultEngineSize         = 32
	DefaultEngineAlgorithm    = "bubble"
	DefaultEngineShuffleSkip  = 1
	DefaultEngineTraverseSkip = 1
	DefaultEngineSeed         = 0
	DefaultEngineKeyOffset    = 0
	DefaultPlaybackRate       = 0.0
	DefaultStorePath          = ""
	DefaultMetricsAddr        = ""

	maxEngineSize = 1000
)

// Sentinel validation errors.
var (
	ErrInvalidSize         = errors.New("engine.size must be between 0 and 1000")
	ErrInvalidSkip         = errors.New("engine skips must be at least 1")
	ErrInvalidPlaybackRate = errors.New("playback.rate must not be negative")
)

// Config is the top-level configuration struct for sortstep.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Store    StoreConfig    `mapstructure:"store"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// EngineConfig holds the initial engine settings.
type EngineConfig struct {
	Size         int      `mapstructure:"size"`
	Algorithm    string   `mapstructure:"algorithm"`
	ShuffleSkip  int      `mapstructure:"shuffle_skip"`
	TraverseSkip int      `mapstructure:"traverse_skip"`
	Filter       []string `mapstructure:"filter"`
	Seed         uint64   `mapstructure:"seed"`
	KeyOffset    int      `mapstructure:"key_offset"`
}

// PlaybackConfig holds CLI playback pacing.
type PlaybackConfig struct {
	// Rate is in steps per second; 0 means unpaced.
	Rate float64 `mapstructure:"rate"`
}

// StoreConfig holds the run store location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig holds the Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Validate checks ranges and that every name resolves.
func (c *Config) Validate() error {
	if c.Engine.Size < 0 || c.Engine.Size > maxEngineSize {
		return ErrInvalidSize
	}
	if c.Engine.ShuffleSkip < 1 || c.Engine.TraverseSkip < 1 {
		return ErrInvalidSkip
	}
	if c.Playback.Rate < 0 {
		return ErrInvalidPlaybackRate
	}
	if _, err := c.AlgorithmType(); err != nil {
		return err
	}
	if _, err := c.FilterTypes(); err != nil {
		return err
	}
	return nil
}

// AlgorithmType resolves engine.algorithm.
func (c *Config) AlgorithmType() (ir.AlgorithmType, error) {
	t, err := ir.ParseAlgorithmType(c.Engine.Algorithm)
	if err != nil {
		return 0, fmt.Errorf("engine.algorithm: %w", err)
	}
	return t, nil
}

// FilterTypes resolves engine.filter.
func (c *Config) FilterTypes() ([]ir.EventType, error) {
	types := make([]ir.EventType, 0, len(c.Engine.Filter))
	for _, name := range c.Engine.Filter {
		t, err := ir.ParseEventType(name)
		if err != nil {
			return nil, fmt.Errorf("engine.filter: %w", err)
		}
		types = append(types, t)
	}
	return types, nil
}
