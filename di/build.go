package di

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// PostConstructor is run after every injected field of a built struct has
// been set. An error fails the build and propagates unchanged.
type PostConstructor interface {
	PostConstruct() error
}

// Build constructs a *T by injecting its fields from the container. Plain
// fields resolve at build time, Lazy and OptionalLazy fields are bound for
// later access, and `inject` tags or a custom DescriptorProvider refine the
// picture. Build honors WithStrategy, WithField, WithDescriptors, and
// WithoutValidation.
func Build[T any](c *Container, opts ...Option) (*T, error) {
	v, err := c.buildStruct(Key[T](), newSettings(opts), nil)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

// Populate injects the fields of an existing struct in place. Fields that
// are already non-zero are treated as pre-set and left alone; zero wrapper
// fields are bound to the container. Populate takes the same options as
// Build.
func Populate(c *Container, target any, opts ...Option) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return newValidation(reflect.TypeOf(target), "populate target must be a non-nil struct pointer")
	}
	return c.populateStruct(rv.Elem(), newSettings(opts), nil, true)
}

// Provide registers a constructor for *T that builds T through field
// injection on every resolution. Descriptor problems surface now, not at
// first resolution. Providing the same T again replaces the record.
// Provide honors WithCached plus the Build options.
func Provide[T any](c *Container, opts ...Option) error {
	s := newSettings(opts)
	rt := Key[T]()
	if err := c.precheckBuild(rt, s); err != nil {
		return err
	}
	return c.RegisterRecord(Key[*T](), Provider{
		Target:   &providedTarget{rt: rt, s: s},
		Cached:   s.cached,
		Autowire: true,
	})
}

// ProvideAs registers the built *T under the interface type I.
func ProvideAs[I, T any](c *Container, opts ...Option) error {
	it := Key[I]()
	if it.Kind() != reflect.Interface {
		return newValidation(it, "ProvideAs key must be an interface type")
	}
	rt := Key[T]()
	if !reflect.PointerTo(rt).Implements(it) {
		return newValidation(it, fmt.Sprintf("*%s does not implement %s", rt, it))
	}
	s := newSettings(opts)
	if err := c.precheckBuild(rt, s); err != nil {
		return err
	}
	return c.RegisterRecord(it, Provider{
		Target:   &providedTarget{rt: rt, as: it, s: s},
		Cached:   s.cached,
		Autowire: true,
	})
}

func (c *Container) precheckBuild(rt reflect.Type, s *settings) error {
	if rt.Kind() != reflect.Struct {
		return newValidation(rt, "build target must be a struct type")
	}
	descs, err := c.describe(rt, s)
	if err != nil {
		return err
	}
	if s.validate {
		return validateDescriptors(rt, descs)
	}
	return nil
}

func (c *Container) describe(rt reflect.Type, s *settings) ([]FieldDescriptor, error) {
	provider := c.fields
	if s.descriptors != nil {
		provider = s.descriptors
	}
	descs, err := provider.Describe(rt)
	if err != nil {
		var de *Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, &Error{Code: CodeValidation, Key: rt, Message: "describing injectable fields", Cause: err}
	}
	return descs, nil
}

func (c *Container) buildStruct(rt reflect.Type, s *settings, args []any) (any, error) {
	if rt.Kind() != reflect.Struct {
		return nil, newValidation(rt, "build target must be a struct type")
	}
	pv := reflect.New(rt)
	if err := c.populateStruct(pv.Elem(), s, args, false); err != nil {
		return nil, err
	}
	return pv.Interface(), nil
}

// populateStruct fills elem field by field, in descriptor order. With
// keepExisting set, non-zero fields are treated as pre-set.
func (c *Container) populateStruct(elem reflect.Value, s *settings, args []any, keepExisting bool) error {
	rt := elem.Type()
	descs, err := c.describe(rt, s)
	if err != nil {
		return err
	}
	if s.validate {
		if err := validateDescriptors(rt, descs); err != nil {
			return err
		}
	}
	overrides, err := namedOverrides(rt, s, descs)
	if err != nil {
		return err
	}
	used := make([]bool, len(args))
	var missing []string
	for _, d := range descs {
		sf, ok := rt.FieldByName(d.Name)
		if !ok || len(sf.Index) != 1 {
			return newValidation(rt, fmt.Sprintf("no direct field named %s", d.Name))
		}
		fv := elem.Field(sf.Index[0])
		wrapKey, wrapOpt := deferredInfo(sf.Type)

		marker := d.Marker
		if marker == MarkAuto {
			switch {
			case wrapKey != nil && wrapOpt:
				marker = MarkOptionalLazy
			case wrapKey != nil:
				marker = MarkLazy
			case s.strategy == StrategyLazy:
				marker = MarkLazy
			case s.strategy == StrategyOptionalLazy:
				marker = MarkOptionalLazy
			default:
				marker = MarkEager
			}
		}

		switch marker {
		case MarkExcluded, MarkShared:
			continue

		case MarkLazy, MarkOptionalLazy:
			if wrapKey == nil {
				if keepExisting && !fv.IsZero() {
					continue
				}
				// a strategy-deferred plain field: no resolution at build,
				// only explicit values reach it
				if v, ok := overrides[d.Name]; ok {
					if err := setField(rt, fv, d.Name, v); err != nil {
						return err
					}
				} else if av, ok := takeArg(args, used, sf.Type); ok {
					fv.Set(av)
				} else if d.HasDefault {
					if err := setField(rt, fv, d.Name, d.Default); err != nil {
						return err
					}
				} else if marker == MarkLazy {
					missing = append(missing, d.Name)
				}
				continue
			}
			if keepExisting && !fv.IsZero() {
				continue
			}
			if !bindLazy(fv, c.newSlot(wrapKey, rt, marker == MarkOptionalLazy)) {
				return newValidation(rt, fmt.Sprintf("field %s cannot be bound", d.Name))
			}

		case MarkEager:
			if keepExisting && !fv.IsZero() {
				continue
			}
			if wrapKey != nil {
				// eager-tagged wrapper: bind, then force the first access
				sl := c.newSlot(wrapKey, rt, wrapOpt)
				if !bindLazy(fv, sl) {
					return newValidation(rt, fmt.Sprintf("field %s cannot be bound", d.Name))
				}
				if _, err := sl.get(); err != nil && !errors.Is(err, errAbsent) {
					return err
				}
				continue
			}
			if v, ok := overrides[d.Name]; ok {
				if err := setField(rt, fv, d.Name, v); err != nil {
					return err
				}
				continue
			}
			if av, ok := takeArg(args, used, sf.Type); ok {
				fv.Set(av)
				continue
			}
			if c.Contains(d.Type) {
				v, err := c.chain(Request{Key: d.Type, Consumer: rt})
				if err != nil {
					return err
				}
				if err := setField(rt, fv, d.Name, v); err != nil {
					return err
				}
				continue
			}
			if d.HasDefault {
				if err := setField(rt, fv, d.Name, d.Default); err != nil {
					return err
				}
				continue
			}
			missing = append(missing, d.Name)
		}
	}
	for j, u := range used {
		if !u {
			return newConstruction(rt, fmt.Sprintf("argument %d (%T) does not match any injectable field", j, args[j]))
		}
	}
	if len(missing) > 0 {
		return newConstruction(rt, "missing required fields: "+strings.Join(missing, ", "))
	}
	if pc, ok := elem.Addr().Interface().(PostConstructor); ok {
		if err := pc.PostConstruct(); err != nil {
			return err
		}
	}
	return nil
}

// setField assigns v to a field, evaluating caller-supplied conditionals
// against the owning type first.
func setField(owner reflect.Type, fv reflect.Value, name string, v any) error {
	if cd, ok := v.(*Conditional); ok {
		v = cd.Evaluate(owner)
	}
	av, ok := coerce(v, fv.Type())
	if !ok {
		return newConstruction(owner, fmt.Sprintf("value %T is not assignable to field %s (%s)", v, name, fv.Type()))
	}
	fv.Set(av)
	return nil
}

func namedOverrides(rt reflect.Type, s *settings, descs []FieldDescriptor) (map[string]any, error) {
	if len(s.fields) == 0 {
		return nil, nil
	}
	byName := make(map[string]FieldDescriptor, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
	}
	out := make(map[string]any, len(s.fields))
	for _, o := range s.fields {
		d, ok := byName[o.name]
		if !ok {
			return nil, newConstruction(rt, fmt.Sprintf("no injectable field named %s", o.name))
		}
		if d.Marker == MarkExcluded || d.Marker == MarkShared {
			return nil, newConstruction(rt, fmt.Sprintf("field %s does not accept values", o.name))
		}
		if sf, ok := rt.FieldByName(o.name); ok {
			if dk, _ := deferredInfo(sf.Type); dk != nil {
				return nil, newConstruction(rt, fmt.Sprintf("field %s defers resolution; set it on the instance instead", o.name))
			}
		}
		out[o.name] = o.value
	}
	return out, nil
}
