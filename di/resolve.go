package di

import (
	"fmt"
	"iter"
	"reflect"
)

// Key returns the type T registers and resolves under. Interface types key
// as themselves, never as a concrete implementation.
func Key[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register stores target as a provider for T.
//
// Example:
//
//	di.Register[Repository](c, NewPostgresRepository, di.WithCached())
func Register[T any](c *Container, target any, opts ...Option) error {
	return c.Register(Key[T](), target, opts...)
}

// RegisterValue stores a ready value for T. A func value is treated as a
// constructor and must return the dependency; wrap funcs you want returned
// verbatim.
func RegisterValue[T any](c *Container, value T, opts ...Option) error {
	return c.Register(Key[T](), value, opts...)
}

// Remove drops every provider of T.
func Remove[T any](c *Container) error {
	return c.Remove(Key[T]())
}

// RemoveTarget drops the provider of T whose target equals target.
func RemoveTarget[T any](c *Container, target any) error {
	return c.RemoveTarget(Key[T](), target)
}

// Has reports whether T has at least one provider.
func Has[T any](c *Container) bool {
	return c.Contains(Key[T]())
}

// Resolve produces the newest T, returning an error on failure.
//
// Example:
//
//	repo, err := di.Resolve[Repository](c)
//	if err != nil {
//	    return fmt.Errorf("wiring repository: %w", err)
//	}
func Resolve[T any](c *Container) (T, error) {
	var zero T
	v, err := c.Resolve(Key[T]())
	if err != nil {
		return zero, err
	}
	return assertAs[T](v)
}

// MustResolve produces the newest T, panicking on failure. Use it in wiring
// code where a missing dependency is a programming error.
//
// Example:
//
//	svc := di.MustResolve[*UserService](c)
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", Key[T](), err))
	}
	return v
}

// TryResolve produces the newest T, or reports false on any failure. Use it
// when the dependency is optional.
//
// Example:
//
//	if metrics, ok := di.TryResolve[*Metrics](c); ok {
//	    metrics.Record(ev)
//	}
func TryResolve[T any](c *Container) (T, bool) {
	v, err := Resolve[T](c)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ResolveFor produces T on behalf of consumer C. Conditional providers see
// C as the asking type.
func ResolveFor[T, C any](c *Container) (T, error) {
	var zero T
	v, err := c.ResolveFor(Key[T](), Key[C]())
	if err != nil {
		return zero, err
	}
	return assertAs[T](v)
}

// ResolveOptional produces the newest T, or fallback when T has no
// provider. Failures other than a missing provider are still reported.
func ResolveOptional[T any](c *Container, fallback T) (T, error) {
	var zero T
	v, err := c.ResolveOptional(Key[T](), fallback)
	if err != nil {
		return zero, err
	}
	return assertAs[T](v)
}

// ResolveAll ranges over every provider of T, newest first, producing each
// value on demand.
//
// Example:
//
//	for hook, err := range di.ResolveAll[StartupHook](c) {
//	    if err != nil {
//	        return err
//	    }
//	    hook.Run(ctx)
//	}
func ResolveAll[T any](c *Container, args ...any) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range c.ResolveAll(Key[T](), args...) {
			var t T
			if err == nil {
				t, err = assertAs[T](v)
			}
			if !yield(t, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// DecorateFor wraps every resolved T with d. Values of another dynamic type
// registered under T pass through untouched.
func DecorateFor[T any](c *Container, d func(T) T) {
	c.Decorate(Key[T](), func(v any) any {
		t, ok := v.(T)
		if !ok {
			return v
		}
		return any(d(t))
	})
}
