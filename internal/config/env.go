package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the variables that may override the YAML file.
// Unset variables leave the pointer nil.
type envOverrides struct {
	LogLevel *string `env:"ARENA_LOG_LEVEL"`
	Seed     *uint64 `env:"ARENA_SEED"`
	Chaos    *string `env:"ARENA_CHAOS"`
	DSN      *string `env:"ARENA_DB_DSN"`
	Persist  *bool   `env:"ARENA_PERSIST"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func applyEnv(cfg *Arena) error {
	var o envOverrides
	if err := ParseEnv(&o); err != nil {
		return err
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.Chaos != nil {
		cfg.Chaos = *o.Chaos
	}
	if o.DSN != nil {
		cfg.Database.URL = *o.DSN
	}
	if o.Persist != nil {
		cfg.Database.Enabled = *o.Persist
	}
	return nil
}
