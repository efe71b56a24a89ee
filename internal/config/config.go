package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/dshills/nsevent/internal/event"
)

// Config holds all nsevent settings.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Registry RegistryConfig `toml:"registry"`
}

// LogConfig controls logging output.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `toml:"level" env:"NSEVENT_LOG_LEVEL"`

	// File, when set, receives a copy of the log output.
	File string `toml:"file" env:"NSEVENT_LOG_FILE"`
}

// RegistryConfig maps onto event.Option values.
type RegistryConfig struct {
	// Prune makes handler-specific removal drop emptied namespaces.
	Prune bool `toml:"prune" env:"NSEVENT_PRUNE"`

	// RecoverPanics turns handler panics into errors returned from Emit.
	RecoverPanics bool `toml:"recover_panics" env:"NSEVENT_RECOVER_PANICS"`

	// ContinueOnError keeps emitting after a handler fails.
	ContinueOnError bool `toml:"continue_on_error" env:"NSEVENT_CONTINUE_ON_ERROR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the TOML file at path over the defaults and then applies
// environment overrides. An empty path or a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// File doesn't exist, not an error
		case err != nil:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := Parse(path, data, &cfg); err != nil {
				return Config{}, err
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg. Keys absent from data keep their current
// values. source names the data in errors.
func Parse(source string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	_, err := c.LogLevel()
	return err
}

// LogLevel returns the configured zerolog level.
func (c Config) LogLevel() (zerolog.Level, error) {
	if c.Log.Level == "" {
		return zerolog.NoLevel, fmt.Errorf("%w: empty", ErrInvalidLevel)
	}
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	return lvl, nil
}

// RegistryOptions returns the event.Option values for the registry settings.
func (c Config) RegistryOptions() []event.Option {
	return []event.Option{
		event.WithPruning(c.Registry.Prune),
		event.WithPanicRecovery(c.Registry.RecoverPanics),
		event.WithContinueOnError(c.Registry.ContinueOnError),
	}
}
