package config

import (
	"fmt"

	"github.com/skillsenselab/wirekit/logger"
)

// Settings contains the configuration fields every wirekit application
// needs. Projects extend it by embedding it in their own config structs.
//
// Example:
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	    Store StoreConfig `yaml:"store" mapstructure:"store"`
//	}
type Settings struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"omitempty,oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetSettings returns the base Settings. When embedded in a larger config
// struct the method is promoted, so the embedding struct automatically
// satisfies interfaces that ask for it.
func (c *Settings) GetSettings() *Settings {
	return c
}

// ApplyDefaults fills zero fields with defaults. Embedding structs that
// override it should call c.Settings.ApplyDefaults() first.
func (c *Settings) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the base fields. Embedding structs that override it
// should call c.Settings.Validate() first.
func (c *Settings) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("settings.logging: %w", err)
	}
	return nil
}
