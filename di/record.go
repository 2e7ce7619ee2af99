package di

import "reflect"

// Provider describes how the container produces a value for a requested
// type. Target is one of:
//
//   - a constructor func whose parameters are autowired and whose results
//     are a value, or a value and an error
//   - a reflect.Type naming a struct to build through field injection
//   - a *Conditional evaluated against the consuming type
//   - any other value, returned as registered (nil included)
//
// Two providers are the same registration when their targets are equal;
// Cached and Autowire never participate in identity.
type Provider struct {
	Target   any
	Cached   bool
	Autowire bool
}

// record is a Provider plus its cache cell. The cell belongs to the record,
// so scope copies get their own cell and in-scope fills never leak out.
type record struct {
	Provider
	seq    uint64
	filled bool
	value  any
}

func (r *record) clone() *record {
	cp := *r
	return &cp
}

type targetKind int

const (
	kindValue targetKind = iota
	kindFunc
	kindType
	kindConditional
	kindProvided
)

// providedTarget is the target stored by Provide and ProvideAs. It carries
// the build settings, and compares by built type so re-providing a type
// replaces its record instead of stacking a new one.
type providedTarget struct {
	rt reflect.Type
	as reflect.Type // interface key, nil when registered as *rt
	s  *settings
}

func classify(target any) targetKind {
	switch target.(type) {
	case nil:
		return kindValue
	case *Conditional:
		return kindConditional
	case *providedTarget:
		return kindProvided
	case reflect.Type:
		return kindType
	}
	if reflect.TypeOf(target).Kind() == reflect.Func {
		return kindFunc
	}
	return kindValue
}

// targetsEqual reports whether two targets identify the same registration.
// Funcs compare by code pointer, comparable values by ==, and everything
// else by deep equality.
func targetsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if pa, ok := a.(*providedTarget); ok {
		pb, ok := b.(*providedTarget)
		return ok && pa.rt == pb.rt && pa.as == pb.as
	}
	at, bt := reflect.TypeOf(a), reflect.TypeOf(b)
	if at != bt {
		return false
	}
	if at.Kind() == reflect.Func {
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	}
	if at.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// validateTarget rejects constructor funcs with an unusable result shape at
// registration time, before the record is stored.
func validateTarget(key reflect.Type, target any) error {
	if classify(target) != kindFunc {
		return nil
	}
	ft := reflect.TypeOf(target)
	switch ft.NumOut() {
	case 1:
		return nil
	case 2:
		if ft.Out(1) == errorType {
			return nil
		}
		return newValidation(key, "constructor's second result must be error, got "+ft.Out(1).String())
	case 0:
		return newValidation(key, "constructor returns no values")
	default:
		return newValidation(key, "constructor returns more than two values")
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
