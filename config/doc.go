// Package config provides configuration loading and validation for
// wirekit applications.
//
// Configuration is layered: a YAML file found in the standard locations
// (./configs, then the working directory) is the base, a .env file fills
// the process environment through godotenv, and environment variables
// override everything. Nested keys map automatically from UPPER_SNAKE
// variables, raw or prefixed with the uppercased app name, so both
// LOGGING_LEVEL and DEMO_APP_LOGGING_LEVEL reach logging.level.
//
// # Usage
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	}
//
//	var cfg AppConfig
//	if err := config.Load("demo-app", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Struct validation runs through `validate` tags via ValidateStruct;
// failures come back as *ValidationError with one entry per field.
package config
