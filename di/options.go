package di

// Option configures container construction, registration, and struct
// building. Each function documents which options it honors; the rest are
// ignored.
type Option func(*settings)

type fieldOverride struct {
	name  string
	value any
}

type settings struct {
	cached      bool
	autowire    bool
	strategy    Strategy
	validate    bool
	fields      []fieldOverride
	descriptors DescriptorProvider
	middleware  []Middleware
}

func newSettings(opts []Option) *settings {
	s := &settings{
		autowire: true,
		validate: true,
		strategy: StrategyEager,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// WithCached stores the first produced value on the provider record and
// returns it on every later resolution of that record.
func WithCached() Option {
	return func(s *settings) { s.cached = true }
}

// WithoutAutowire disables parameter resolution for a constructor target.
// The constructor is invoked with no arguments and resolution arguments are
// not forwarded.
func WithoutAutowire() Option {
	return func(s *settings) { s.autowire = false }
}

// WithStrategy sets the default evaluation strategy for struct fields that
// carry no marker of their own.
func WithStrategy(st Strategy) Option {
	return func(s *settings) { s.strategy = st }
}

// WithoutValidation skips descriptor validation when building a struct.
func WithoutValidation() Option {
	return func(s *settings) { s.validate = false }
}

// WithField pins a struct field to the given value instead of resolving it.
// Later options win when the same field is named twice.
func WithField(name string, value any) Option {
	return func(s *settings) {
		s.fields = append(s.fields, fieldOverride{name: name, value: value})
	}
}

// WithDescriptors overrides how injectable fields are discovered. The
// default reads `inject` struct tags.
func WithDescriptors(p DescriptorProvider) Option {
	return func(s *settings) { s.descriptors = p }
}

// WithMiddleware wraps single-key resolution with the given middleware,
// first middleware outermost. Honored by New only.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *settings) { s.middleware = append(s.middleware, mw...) }
}
