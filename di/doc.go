// Package di provides a dependency injection container for wirekit
// applications.
//
// The container maps requested types to ordered lists of provider records.
// A provider's target is a constructor function, a plain value, or a
// conditional provider evaluated against the consuming type. Resolution picks
// the most recently registered provider (LIFO), caches per record when asked
// to, and recursively autowires constructor parameters through the same
// container.
//
// # Registration
//
//	c := di.New()
//	di.Register[Repository](c, NewPostgresRepository, di.WithCached())
//	di.RegisterValue[Clock](c, clock.System)
//
// # Resolution
//
//	repo, err := di.Resolve[Repository](c)
//	svc := di.MustResolve[*Service](c)
//
// # Struct injection
//
//	type Service struct {
//	    Repo  Repository
//	    Cache di.Lazy[*Cache]
//	    Tmp   string `inject:"-"`
//	}
//	di.Provide[Service](c, di.WithCached())
//
// Fields are injected in declaration order. di.Lazy and di.OptionalLazy
// fields defer resolution to first access and memoize per instance.
//
// # Scoping
//
//	c.Scoped(func() error {
//	    di.Register[Repository](c, NewFakeRepository)
//	    // registrations, removals and cache fills in here
//	    // are discarded when the scope exits
//	    return nil
//	})
//
// A Container is not safe for concurrent mutation. The design assumes a
// single flow of control per container, or external synchronization; use
// Clone to hand an independent copy to another goroutine. Resolution is
// synchronous and performs no cycle detection: a self-referential
// registration fails at construction, not with a dedicated diagnostic.
package di
