package di

import "reflect"

// Request carries one resolution through the middleware chain.
type Request struct {
	// Key is the requested type.
	Key reflect.Type
	// Consumer is the type the value is being injected into, or nil for a
	// direct resolution.
	Consumer reflect.Type
	// Args are caller-supplied values matched to constructor parameters by
	// assignability before the container is consulted.
	Args []any
}

// ResolveFunc produces a value for a resolution request.
type ResolveFunc func(Request) (any, error)

// Middleware wraps a ResolveFunc with additional behavior such as logging,
// tracing, or metrics. Recursive parameter resolutions pass through the
// chain again, so middleware observes the whole resolution tree.
type Middleware func(ResolveFunc) ResolveFunc

// Chain composes middlewares into one. The first middleware is outermost:
// it sees the request first and the result last.
func Chain(middlewares ...Middleware) Middleware {
	return func(next ResolveFunc) ResolveFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
