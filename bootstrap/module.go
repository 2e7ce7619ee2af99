package bootstrap

import (
	"github.com/skillsenselab/wirekit/di"
)

// Module is a named group of container registrations. Applications are
// assembled from modules so that wiring variants (profiles) can select
// which groups apply without touching the registration code itself.
//
// Example:
//
//	var storageModule = bootstrap.Module{
//	    Name: "storage",
//	    Register: func(c *di.Container) error {
//	        return di.Register[notes.Repository](c, notes.NewRepository, di.WithCached())
//	    },
//	}
type Module struct {
	// Name identifies the module for profile selection and the startup summary.
	Name string

	// Register adds the module's providers to the container.
	Register func(c *di.Container) error
}
