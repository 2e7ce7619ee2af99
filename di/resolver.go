package di

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
)

// Resolve produces a value for key from its newest provider record.
func (c *Container) Resolve(key reflect.Type) (any, error) {
	return c.chain(Request{Key: key})
}

// ResolveFor resolves key on behalf of consumer. Conditional providers see
// consumer as the asking type.
func (c *Container) ResolveFor(key, consumer reflect.Type) (any, error) {
	return c.chain(Request{Key: key, Consumer: consumer})
}

// ResolveWith resolves key with caller-supplied arguments. Arguments are
// matched to constructor parameters, or to injected struct fields, by
// assignability and win over container resolution. An argument matching
// nothing fails the resolution.
func (c *Container) ResolveWith(key reflect.Type, args ...any) (any, error) {
	return c.chain(Request{Key: key, Args: args})
}

// ResolveOptional resolves key, or returns fallback when key has no
// provider. Failures other than a missing provider are still reported.
func (c *Container) ResolveOptional(key reflect.Type, fallback any) (any, error) {
	v, err := c.chain(Request{Key: key})
	if err != nil {
		var de *Error
		if errors.As(err, &de) && de.Code == CodeUnregistered && de.Key == key {
			return fallback, nil
		}
		return nil, err
	}
	return v, nil
}

// ResolveAll returns a lazy sequence over every record for key, newest
// first. Nothing is produced until the sequence is consumed, and an
// unregistered key yields an empty sequence. A production failure is
// yielded once and ends the sequence. Records are enumerated directly:
// middleware is not consulted, decorators still run.
func (c *Container) ResolveAll(key reflect.Type, args ...any) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		recs := c.records()[key]
		for i := len(recs) - 1; i >= 0; i-- {
			v, err := c.produce(recs[i], Request{Key: key, Args: args})
			if !yield(v, err) {
				return
			}
			if err != nil {
				return
			}
		}
	}
}

// dispatch is the innermost ResolveFunc, below any middleware.
func (c *Container) dispatch(req Request) (any, error) {
	recs := c.records()[req.Key]
	if len(recs) == 0 {
		return nil, newUnregistered(req.Key)
	}
	return c.produce(recs[len(recs)-1], req)
}

// produce turns one record into a value. The cache cell is checked before
// anything else, so cached records never touch their target, the caller's
// arguments, or the container again. Decorators run before the cell fills.
func (c *Container) produce(rec *record, req Request) (any, error) {
	if rec.Cached && rec.filled {
		return rec.value, nil
	}
	var v any
	var err error
	switch classify(rec.Target) {
	case kindConditional:
		v = rec.Target.(*Conditional).Evaluate(req.Consumer)
	case kindType:
		v, err = c.buildRegisteredType(rec.Target.(reflect.Type), req)
	case kindProvided:
		p := rec.Target.(*providedTarget)
		v, err = c.buildStruct(p.rt, p.s, req.Args)
	case kindFunc:
		v, err = c.invoke(rec, req)
	default:
		v = rec.Target
	}
	if err != nil {
		return nil, err
	}
	v = c.decorate(req.Key, v)
	if rec.Cached {
		rec.value = v
		rec.filled = true
	}
	return v, nil
}

func (c *Container) decorate(key reflect.Type, v any) any {
	if v == nil {
		return nil
	}
	decs := c.decorators()[key]
	for i := len(decs) - 1; i >= 0; i-- {
		v = decs[i](v)
	}
	return v
}

func (c *Container) buildRegisteredType(rt reflect.Type, req Request) (any, error) {
	if rt.Kind() != reflect.Struct {
		return nil, newConstruction(req.Key, "registered type "+rt.String()+" is not a struct")
	}
	return c.buildStruct(rt, newSettings(nil), req.Args)
}

// invoke calls a constructor, filling parameters from the request arguments
// first and the container second. Errors returned by the constructor itself
// propagate unchanged.
func (c *Container) invoke(rec *record, req Request) (any, error) {
	fv := reflect.ValueOf(rec.Target)
	ft := fv.Type()
	if !rec.Autowire {
		if ft.NumIn() > 0 && !(ft.IsVariadic() && ft.NumIn() == 1) {
			return nil, newConstruction(req.Key, fmt.Sprintf("constructor %s needs arguments but autowiring is disabled", ft))
		}
		return callConstructor(fv, nil)
	}
	numIn := ft.NumIn()
	fixed := numIn
	if ft.IsVariadic() {
		fixed = numIn - 1
	}
	used := make([]bool, len(req.Args))
	args := make([]reflect.Value, 0, numIn)
	for i := 0; i < fixed; i++ {
		pt := ft.In(i)
		if av, ok := takeArg(req.Args, used, pt); ok {
			args = append(args, av)
			continue
		}
		if c.Contains(pt) {
			sub, err := c.chain(Request{Key: pt, Consumer: req.Key})
			if err != nil {
				return nil, err
			}
			av, ok := coerce(sub, pt)
			if !ok {
				return nil, newConstruction(req.Key, fmt.Sprintf("resolved %T is not assignable to parameter %d (%s)", sub, i, pt))
			}
			args = append(args, av)
			continue
		}
		return nil, newConstruction(req.Key, fmt.Sprintf("cannot fill parameter %d (%s) of constructor %s", i, pt, ft))
	}
	if ft.IsVariadic() {
		elem := ft.In(numIn - 1).Elem()
		for j, a := range req.Args {
			if used[j] {
				continue
			}
			if av, ok := coerce(a, elem); ok {
				used[j] = true
				args = append(args, av)
			}
		}
	}
	for j, u := range used {
		if !u {
			return nil, newConstruction(req.Key, fmt.Sprintf("argument %d (%T) does not match any parameter of %s", j, req.Args[j], ft))
		}
	}
	return callConstructor(fv, args)
}

func callConstructor(fv reflect.Value, args []reflect.Value) (any, error) {
	out := fv.Call(args)
	if len(out) == 2 {
		if ev := out[1]; !ev.IsNil() {
			return nil, ev.Interface().(error)
		}
	}
	return out[0].Interface(), nil
}

// takeArg consumes the first unused argument assignable to pt.
func takeArg(pool []any, used []bool, pt reflect.Type) (reflect.Value, bool) {
	for i, a := range pool {
		if used[i] {
			continue
		}
		if av, ok := coerce(a, pt); ok {
			used[i] = true
			return av, true
		}
	}
	return reflect.Value{}, false
}

// coerce adapts v to type pt. A nil v matches any nilable parameter.
func coerce(v any, pt reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch pt.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(pt), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(pt) {
		return rv, true
	}
	return reflect.Value{}, false
}
