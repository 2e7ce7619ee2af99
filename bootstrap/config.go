package bootstrap

import (
	"github.com/skillsenselab/wirekit/config"
)

// Config is the interface constraint for application configuration types.
// Any struct that embeds config.Settings (value embedding) automatically
// satisfies this interface via promoted methods.
//
// Example:
//
//	type MyConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	    Server serverConfig `yaml:"server" mapstructure:"server"`
//	}
//
//	// MyConfig automatically satisfies Config via promoted methods.
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetSettings() *config.Settings
	ApplyDefaults()
	Validate() error
}
