package bootstrap

import (
	"time"

	"github.com/skillsenselab/wirekit/di"
	"github.com/skillsenselab/wirekit/logger"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	container       *di.Container
	modules         []Module
	profile         string
	profileLoader   ProfileLoader
	gracefulTimeout *time.Duration
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging settings.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithContainer sets a custom container for the application.
func WithContainer(c *di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithModules adds wiring modules. Modules apply in the given order unless
// a profile reorders or filters them.
func WithModules(mods ...Module) Option {
	return func(o *appOptions) {
		o.modules = append(o.modules, mods...)
	}
}

// WithProfile selects the named wiring profile. The profile is loaded
// during NewApp and decides which modules apply.
func WithProfile(name string) Option {
	return func(o *appOptions) {
		o.profile = name
	}
}

// WithProfileLoader sets a custom profile loader. If not set, profiles are
// loaded from ./configs/profiles, ./configs and the working directory.
func WithProfileLoader(l ProfileLoader) Option {
	return func(o *appOptions) {
		o.profileLoader = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}
