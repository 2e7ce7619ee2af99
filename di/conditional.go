package di

import "reflect"

// Predicate decides whether a conditional case applies to the type that is
// consuming the dependency. consumer is nil when the value is resolved
// directly rather than injected into a constructor or struct.
type Predicate func(consumer reflect.Type) bool

// Case pairs a predicate with the value it selects.
type Case struct {
	When Predicate
	Give any
}

// Conditional is a provider target whose value depends on who is asking.
// Cases are checked in order and the first match wins; Default is used when
// none match. Registering a *Conditional, or passing one as a field value,
// defers the choice to injection time.
type Conditional struct {
	Default any
	Cases   []Case
}

// When returns a conditional with the given fallback and no cases.
func When(defaultValue any) *Conditional {
	return &Conditional{Default: defaultValue}
}

// ForConsumer adds a case matching exactly the given consuming type.
func (c *Conditional) ForConsumer(consumer reflect.Type, value any) *Conditional {
	return c.For(func(t reflect.Type) bool { return t == consumer }, value)
}

// For adds a case with an arbitrary predicate.
func (c *Conditional) For(pred Predicate, value any) *Conditional {
	c.Cases = append(c.Cases, Case{When: pred, Give: value})
	return c
}

// Evaluate picks the value for the given consumer.
func (c *Conditional) Evaluate(consumer reflect.Type) any {
	for _, cs := range c.Cases {
		if cs.When != nil && cs.When(consumer) {
			return cs.Give
		}
	}
	return c.Default
}
