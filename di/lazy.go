package di

import (
	"errors"
	"fmt"
	"reflect"
)

// errAbsent marks an optional access whose type had no provider at access
// time. It never escapes the package.
var errAbsent = errors.New("di: optional dependency absent")

var errUnbound = errors.New("di: lazy value is not bound to a container")

// slot is the per-instance cell behind Lazy and OptionalLazy fields. The
// first successful access memoizes; failures are retried on the next
// access. Access follows the owning container's single-flow model.
type slot struct {
	resolve func() (any, error)
	done    bool
	value   any
}

func (s *slot) get() (any, error) {
	if s.done {
		return s.value, nil
	}
	if s.resolve == nil {
		return nil, errUnbound
	}
	v, err := s.resolve()
	if err != nil {
		return nil, err
	}
	s.value = v
	s.done = true
	return v, nil
}

func (s *slot) set(v any) {
	s.value = v
	s.done = true
}

func (s *slot) reset() {
	s.value = nil
	s.done = false
}

func (c *Container) newSlot(key, owner reflect.Type, optional bool) *slot {
	return &slot{resolve: func() (any, error) {
		if optional && !c.Contains(key) {
			return nil, errAbsent
		}
		return c.chain(Request{Key: key, Consumer: owner})
	}}
}

// deferred is implemented by Lazy and OptionalLazy; the zero value carries
// the dependency type.
type deferred interface {
	deferredKey() reflect.Type
	deferredOptional() bool
}

type slotBinder interface {
	bindSlot(*slot)
}

var deferredType = reflect.TypeOf((*deferred)(nil)).Elem()

// deferredInfo reports the wrapped dependency type of a Lazy or
// OptionalLazy field type, or nil for plain types.
func deferredInfo(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || !t.Implements(deferredType) {
		return nil, false
	}
	d := reflect.Zero(t).Interface().(deferred)
	return d.deferredKey(), d.deferredOptional()
}

func bindLazy(fv reflect.Value, s *slot) bool {
	b, ok := fv.Addr().Interface().(slotBinder)
	if !ok {
		return false
	}
	b.bindSlot(s)
	return true
}

// Lazy defers resolution of T to the first access. The zero value is
// unbound; Build, Populate, and provided constructors bind it to their
// container. A successful access is memoized on the instance, a failed one
// is retried next time.
type Lazy[T any] struct {
	s *slot
}

func (Lazy[T]) deferredKey() reflect.Type { return Key[T]() }
func (Lazy[T]) deferredOptional() bool    { return false }
func (l *Lazy[T]) bindSlot(s *slot)       { l.s = s }

// Get returns the value, resolving it on first access. Get panics when the
// field is unbound or resolution fails; use GetE to handle errors.
func (l *Lazy[T]) Get() T {
	v, err := l.GetE()
	if err != nil {
		panic(err)
	}
	return v
}

// GetE returns the value, resolving it on first access.
func (l *Lazy[T]) GetE() (T, error) {
	var zero T
	if l.s == nil {
		return zero, errUnbound
	}
	v, err := l.s.get()
	if err != nil {
		return zero, err
	}
	return assertAs[T](v)
}

// Set stores v, skipping resolution. Later accesses return v until Reset.
func (l *Lazy[T]) Set(v T) {
	if l.s == nil {
		l.s = &slot{}
	}
	l.s.set(v)
}

// Reset clears the memoized value; the next access resolves again.
func (l *Lazy[T]) Reset() {
	if l.s != nil {
		l.s.reset()
	}
}

// OptionalLazy defers resolution of T and tolerates absence: when T has no
// provider at access time the value reports as missing, nothing is
// memoized, and a provider registered later is picked up by the next
// access. The zero value is unbound and reports missing.
type OptionalLazy[T any] struct {
	s *slot
}

func (OptionalLazy[T]) deferredKey() reflect.Type { return Key[T]() }
func (OptionalLazy[T]) deferredOptional() bool    { return true }
func (o *OptionalLazy[T]) bindSlot(s *slot)       { o.s = s }

// Get returns the value and whether it was available. Get panics when a
// provider exists but fails to produce.
func (o *OptionalLazy[T]) Get() (T, bool) {
	var zero T
	if o.s == nil {
		return zero, false
	}
	v, err := o.s.get()
	if err != nil {
		if errors.Is(err, errAbsent) || errors.Is(err, errUnbound) {
			return zero, false
		}
		panic(err)
	}
	t, err := assertAs[T](v)
	if err != nil {
		panic(err)
	}
	return t, true
}

// Set stores v, skipping resolution.
func (o *OptionalLazy[T]) Set(v T) {
	if o.s == nil {
		o.s = &slot{}
	}
	o.s.set(v)
}

// Reset clears the memoized value.
func (o *OptionalLazy[T]) Reset() {
	if o.s != nil {
		o.s.reset()
	}
}

func assertAs[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, newConstruction(Key[T](), fmt.Sprintf("resolved %T is not assignable", v))
	}
	return t, nil
}
