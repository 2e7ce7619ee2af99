package di

import (
	"errors"
	"io"
	"reflect"
	"sort"
)

// DecorateFunc rewrites a resolved value before it is cached or returned.
// Decorators never see nil values.
type DecorateFunc func(any) any

type scopeFrame struct {
	records    map[reflect.Type][]*record
	decorators map[reflect.Type][]DecorateFunc
}

// Container maps types to ordered provider records. The newest record wins
// on resolution; older records remain reachable through ResolveAll. A
// Container is not safe for concurrent use.
type Container struct {
	base           map[reflect.Type][]*record
	baseDecorators map[reflect.Type][]DecorateFunc
	scopes         []*scopeFrame
	fields         DescriptorProvider
	middleware     []Middleware
	chain          ResolveFunc
	seq            uint64
}

// New creates an empty container. New honors WithMiddleware and
// WithDescriptors.
func New(opts ...Option) *Container {
	s := newSettings(opts)
	c := &Container{
		base:           make(map[reflect.Type][]*record),
		baseDecorators: make(map[reflect.Type][]DecorateFunc),
		fields:         TagDescriptors{},
		middleware:     s.middleware,
	}
	if s.descriptors != nil {
		c.fields = s.descriptors
	}
	c.chain = Chain(c.middleware...)(c.dispatch)
	return c
}

// records returns the active record map: the innermost scope frame, or the
// base map outside any scope.
func (c *Container) records() map[reflect.Type][]*record {
	if n := len(c.scopes); n > 0 {
		return c.scopes[n-1].records
	}
	return c.base
}

func (c *Container) decorators() map[reflect.Type][]DecorateFunc {
	if n := len(c.scopes); n > 0 {
		return c.scopes[n-1].decorators
	}
	return c.baseDecorators
}

func (c *Container) setRecords(m map[reflect.Type][]*record) {
	if n := len(c.scopes); n > 0 {
		c.scopes[n-1].records = m
		return
	}
	c.base = m
}

func (c *Container) nextSeq() uint64 {
	c.seq++
	return c.seq
}

// Register stores a provider for key. Registering a target equal to an
// existing one replaces that record and moves it to the newest position;
// otherwise the record is appended. Register honors WithCached and
// WithoutAutowire.
func (c *Container) Register(key reflect.Type, target any, opts ...Option) error {
	s := newSettings(opts)
	return c.RegisterRecord(key, Provider{
		Target:   target,
		Cached:   s.cached,
		Autowire: s.autowire,
	})
}

// RegisterType registers a struct type as its own provider: resolving key
// builds a fresh instance through field injection and yields a pointer to
// the struct.
func (c *Container) RegisterType(key reflect.Type, opts ...Option) error {
	return c.Register(key, key, opts...)
}

// RegisterRecord stores a fully described provider for key.
func (c *Container) RegisterRecord(key reflect.Type, p Provider) error {
	if key == nil {
		return newValidation(nil, "nil registration key")
	}
	if err := validateTarget(key, p.Target); err != nil {
		return err
	}
	recs := c.records()[key]
	kept := recs[:0:0]
	for _, r := range recs {
		if !targetsEqual(r.Target, p.Target) {
			kept = append(kept, r)
		}
	}
	kept = append(kept, &record{Provider: p, seq: c.nextSeq()})
	c.records()[key] = kept
	return nil
}

// Remove drops every record for key. Removing an unknown key fails with
// CodeUnknownRemoval.
func (c *Container) Remove(key reflect.Type) error {
	recs := c.records()
	if len(recs[key]) == 0 {
		return newUnknownRemoval(key, "type was never registered")
	}
	delete(recs, key)
	return nil
}

// RemoveTarget drops the record whose target equals target. The key
// disappears with its last record. Unknown keys and unknown targets fail
// with CodeUnknownRemoval.
func (c *Container) RemoveTarget(key reflect.Type, target any) error {
	recs := c.records()[key]
	if len(recs) == 0 {
		return newUnknownRemoval(key, "type was never registered")
	}
	for i, r := range recs {
		if targetsEqual(r.Target, target) {
			recs = append(recs[:i:i], recs[i+1:]...)
			if len(recs) == 0 {
				delete(c.records(), key)
			} else {
				c.records()[key] = recs
			}
			return nil
		}
	}
	return newUnknownRemoval(key, "target is not registered for this type")
}

// Contains reports whether key has at least one provider record.
func (c *Container) Contains(key reflect.Type) bool {
	return len(c.records()[key]) > 0
}

// Keys returns the registered types, sorted by their string form.
func (c *Container) Keys() []reflect.Type {
	recs := c.records()
	keys := make([]reflect.Type, 0, len(recs))
	for k := range recs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Records returns copies of the provider descriptions for key, oldest
// first. Cache state is not exposed.
func (c *Container) Records(key reflect.Type) []Provider {
	recs := c.records()[key]
	out := make([]Provider, len(recs))
	for i, r := range recs {
		out[i] = r.Provider
	}
	return out
}

// Clear drops every record in the active view. Decorators are kept.
func (c *Container) Clear() {
	c.setRecords(make(map[reflect.Type][]*record))
}

// Decorate appends a decorator for key in the active view. Decorators run
// before a value is cached, first registered outermost, and are skipped for
// nil values. Values produced by ResolveAll are decorated too.
func (c *Container) Decorate(key reflect.Type, d DecorateFunc) {
	decs := c.decorators()
	decs[key] = append(decs[key], d)
}

// EnterScope snapshots the records and decorators. Registrations, removals,
// cache fills, and decorators added inside the scope are discarded by
// ExitScope.
func (c *Container) EnterScope() {
	c.scopes = append(c.scopes, &scopeFrame{
		records:    copyRecords(c.records()),
		decorators: copyDecorators(c.decorators()),
	})
}

// ExitScope discards the innermost scope frame.
func (c *Container) ExitScope() error {
	if len(c.scopes) == 0 {
		return errors.New("di: no active scope to exit")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
	return nil
}

// Scoped runs fn inside a fresh scope and exits it on the way out.
func (c *Container) Scoped(fn func() error) error {
	c.EnterScope()
	defer func() {
		if err := c.ExitScope(); err != nil {
			panic(err) // fn exited scopes it did not enter
		}
	}()
	return fn()
}

// Clone returns an independent container with the same records, decorators,
// middleware, and descriptor provider. The clone starts outside any scope.
// Cache cells are copied: values cached so far stay visible, later fills do
// not cross between the two.
func (c *Container) Clone() *Container {
	cp := &Container{
		base:           copyRecords(c.records()),
		baseDecorators: copyDecorators(c.decorators()),
		fields:         c.fields,
		middleware:     c.middleware,
		seq:            c.seq,
	}
	cp.chain = Chain(cp.middleware...)(cp.dispatch)
	return cp
}

// Merge returns a new container holding the records of both. On keys
// present in each, the receiver's records win wholesale. Decorators are not
// merged; middleware and the descriptor provider come from the receiver.
func (c *Container) Merge(other *Container) *Container {
	m := &Container{
		base:           make(map[reflect.Type][]*record),
		baseDecorators: make(map[reflect.Type][]DecorateFunc),
		fields:         c.fields,
		middleware:     c.middleware,
	}
	if other != nil {
		for k, recs := range copyRecords(other.records()) {
			m.base[k] = recs
		}
	}
	for k, recs := range copyRecords(c.records()) {
		m.base[k] = recs
	}
	for _, recs := range m.base {
		for _, r := range recs {
			if r.seq > m.seq {
				m.seq = r.seq
			}
		}
	}
	m.chain = Chain(m.middleware...)(m.dispatch)
	return m
}

// Close closes cached values that implement io.Closer, newest first, and
// joins their errors. Records are kept; a later resolution returns the
// closed instance again.
func (c *Container) Close() error {
	var closers []*record
	for _, recs := range c.records() {
		for _, r := range recs {
			if r.Cached && r.filled {
				if _, ok := r.value.(io.Closer); ok {
					closers = append(closers, r)
				}
			}
		}
	}
	sort.Slice(closers, func(i, j int) bool { return closers[i].seq > closers[j].seq })
	var errs []error
	for _, r := range closers {
		if err := r.value.(io.Closer).Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func copyRecords(src map[reflect.Type][]*record) map[reflect.Type][]*record {
	dst := make(map[reflect.Type][]*record, len(src))
	for k, recs := range src {
		list := make([]*record, len(recs))
		for i, r := range recs {
			list[i] = r.clone()
		}
		dst[k] = list
	}
	return dst
}

func copyDecorators(src map[reflect.Type][]DecorateFunc) map[reflect.Type][]DecorateFunc {
	dst := make(map[reflect.Type][]DecorateFunc, len(src))
	for k, decs := range src {
		dst[k] = append(decs[:0:0], decs...)
	}
	return dst
}
