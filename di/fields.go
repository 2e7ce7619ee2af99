package di

import (
	"fmt"
	"reflect"
)

// Marker states how a single field participates in injection.
type Marker uint8

const (
	// MarkAuto means no explicit marker; the wrapper type or the build
	// strategy decides.
	MarkAuto Marker = iota
	// MarkEager resolves the field while the struct is built.
	MarkEager
	// MarkLazy defers resolution to first access of a Lazy field.
	MarkLazy
	// MarkOptionalLazy defers resolution and tolerates a missing provider.
	MarkOptionalLazy
	// MarkExcluded keeps the field out of injection entirely.
	MarkExcluded
	// MarkShared declares a field owned by the type rather than its
	// instances; it is never injected.
	MarkShared
)

func (m Marker) String() string {
	switch m {
	case MarkAuto:
		return "auto"
	case MarkEager:
		return "eager"
	case MarkLazy:
		return "lazy"
	case MarkOptionalLazy:
		return "optional-lazy"
	case MarkExcluded:
		return "excluded"
	case MarkShared:
		return "shared"
	default:
		return fmt.Sprintf("marker(%d)", m)
	}
}

// Strategy is the default evaluation for fields without a marker of their
// own. Wrapper fields keep their intrinsic laziness under every strategy.
type Strategy uint8

const (
	// StrategyEager resolves unmarked plain fields at build time.
	StrategyEager Strategy = iota
	// StrategyLazy leaves unmarked plain fields to overrides and defaults;
	// building performs no resolution for them.
	StrategyLazy
	// StrategyOptionalLazy is StrategyLazy, and an unfilled plain field is
	// left at its zero value instead of failing the build.
	StrategyOptionalLazy
)

func (s Strategy) String() string {
	switch s {
	case StrategyEager:
		return "eager"
	case StrategyLazy:
		return "lazy"
	case StrategyOptionalLazy:
		return "optional-lazy"
	default:
		return fmt.Sprintf("strategy(%d)", s)
	}
}

// FieldDescriptor describes one injectable field of a struct type. Type is
// the dependency type: for Lazy and OptionalLazy fields it is the wrapped
// type, not the wrapper.
type FieldDescriptor struct {
	Name       string
	Type       reflect.Type
	Marker     Marker
	HasDefault bool
	Default    any
}

// DescriptorProvider discovers the injectable fields of a struct type, in
// injection order. Implementations may read tags, fixed tables, or any
// other source of truth.
type DescriptorProvider interface {
	Describe(rt reflect.Type) ([]FieldDescriptor, error)
}

// TagDescriptors is the default DescriptorProvider. Every exported direct
// field is injectable unless its `inject` tag opts out:
//
//	Repo  Repository                     // injected, marker from strategy
//	Cache di.Lazy[*Cache]                // injected lazily
//	Addr  string     `inject:"eager"`    // always resolved at build
//	Pool  *Pool      `inject:"-"`        // excluded
//	Stats *Counters  `inject:"shared"`   // type-owned, never injected
//
// Recognized tag values are "eager", "lazy", "optional", "shared", and "-".
type TagDescriptors struct{}

// Describe implements DescriptorProvider.
func (TagDescriptors) Describe(rt reflect.Type) ([]FieldDescriptor, error) {
	if rt.Kind() != reflect.Struct {
		return nil, newValidation(rt, "not a struct type")
	}
	descs := make([]FieldDescriptor, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		tag, hasTag := f.Tag.Lookup("inject")
		if !f.IsExported() {
			if hasTag && tag != "-" {
				return nil, newValidation(rt, fmt.Sprintf("inject tag on unexported field %s", f.Name))
			}
			continue
		}
		marker := MarkAuto
		switch tag {
		case "":
			// untagged, or inject:"" to state the default explicitly
		case "-":
			marker = MarkExcluded
		case "eager":
			marker = MarkEager
		case "lazy":
			marker = MarkLazy
		case "optional":
			marker = MarkOptionalLazy
		case "shared":
			marker = MarkShared
		default:
			return nil, newValidation(rt, fmt.Sprintf("unknown inject tag %q on field %s", tag, f.Name))
		}
		depType := f.Type
		if dk, opt := deferredInfo(f.Type); dk != nil {
			depType = dk
			if marker == MarkAuto {
				if opt {
					marker = MarkOptionalLazy
				} else {
					marker = MarkLazy
				}
			}
		}
		descs = append(descs, FieldDescriptor{Name: f.Name, Type: depType, Marker: marker})
	}
	return descs, nil
}

// validateDescriptors rejects descriptions that cannot be honored: unknown
// or duplicated fields, laziness markers on plain fields, and markers that
// contradict the wrapper kind they sit on.
func validateDescriptors(rt reflect.Type, descs []FieldDescriptor) error {
	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		if seen[d.Name] {
			return newValidation(rt, fmt.Sprintf("field %s described twice", d.Name))
		}
		seen[d.Name] = true
		sf, ok := rt.FieldByName(d.Name)
		if !ok || len(sf.Index) != 1 {
			return newValidation(rt, fmt.Sprintf("no direct field named %s", d.Name))
		}
		dk, opt := deferredInfo(sf.Type)
		switch d.Marker {
		case MarkLazy:
			if dk == nil {
				return newValidation(rt, fmt.Sprintf("field %s is marked lazy but is not a di.Lazy", d.Name))
			}
			if opt {
				return newValidation(rt, fmt.Sprintf("field %s is a di.OptionalLazy but marked lazy", d.Name))
			}
		case MarkOptionalLazy:
			if dk == nil {
				return newValidation(rt, fmt.Sprintf("field %s is marked optional but is not a di.OptionalLazy", d.Name))
			}
			if !opt {
				return newValidation(rt, fmt.Sprintf("field %s is a di.Lazy but marked optional", d.Name))
			}
		}
		if dk != nil && d.Type != nil && d.Type != dk {
			return newValidation(rt, fmt.Sprintf("field %s defers %s but is described as %s", d.Name, dk, d.Type))
		}
	}
	return nil
}
