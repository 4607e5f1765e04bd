// Package config loads runtime settings from the environment.
package config

import (
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/born-ml/blockcat/internal/parallel"
)

// Prefix is the environment variable prefix, e.g. BLOCKCAT_WORKERS.
const Prefix = "BLOCKCAT"

// Config holds engine and logging settings.
type Config struct {
	// Parallel enables multi-goroutine copy loops.
	Parallel bool `envconfig:"PARALLEL" default:"true"`
	// Workers caps concurrent goroutines; 0 means runtime.NumCPU().
	Workers int `envconfig:"WORKERS" default:"0"`
	// MinChunk is the smallest number of rows handed to one goroutine.
	MinChunk int `envconfig:"MIN_CHUNK" default:"64"`
	// LogLevel is one of debug, info, warn, error; or a negative zap level
	// such as -2 for verbose engine traces.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogFormat is console or json.
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
}

// Load reads the configuration from BLOCKCAT_* environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return errors.Errorf("%s_WORKERS must be >= 0, got %d", Prefix, c.Workers)
	}
	if c.MinChunk < 1 {
		return errors.Errorf("%s_MIN_CHUNK must be >= 1, got %d", Prefix, c.MinChunk)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.Errorf("%s_LOG_FORMAT must be console or json, got %q", Prefix, c.LogFormat)
	}
	return nil
}

// ParallelConfig converts the settings into a worker configuration.
func (c Config) ParallelConfig() parallel.Config {
	workers := c.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	return parallel.Config{
		Enabled:      c.Parallel && workers > 1,
		NumWorkers:   workers,
		MinChunkSize: c.MinChunk,
	}
}
