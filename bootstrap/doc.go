// Package bootstrap orchestrates application lifecycle around a container.
//
// It provides typed configuration, module-based container wiring, profile
// selection, component lifecycle management and startup/shutdown hooks.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg,
//	    bootstrap.WithModules(storageModule, httpModule),
//	    bootstrap.WithProfile("dev"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// NewApp applies defaults and profile overrides, validates the config,
// builds the logger, seeds the container with the config and logger, and
// applies the wiring modules. Run starts components in registration order,
// fires the hooks, blocks until SIGINT/SIGTERM and shuts everything down
// in reverse order within the graceful timeout.
package bootstrap
