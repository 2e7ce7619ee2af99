package di

import (
	"fmt"
	"reflect"
)

// Call invokes fn with parameters filled from args by assignability first
// and from the container second. Leftover args fail the call. When fn's
// last result is an error it is split off; the remaining results are
// returned in order.
func Call(c *Container, fn any, args ...any) ([]any, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, newValidation(reflect.TypeOf(fn), "call target must be a func")
	}
	ft := fv.Type()
	numIn := ft.NumIn()
	fixed := numIn
	if ft.IsVariadic() {
		fixed = numIn - 1
	}
	used := make([]bool, len(args))
	in := make([]reflect.Value, 0, numIn)
	for i := 0; i < fixed; i++ {
		pt := ft.In(i)
		if av, ok := takeArg(args, used, pt); ok {
			in = append(in, av)
			continue
		}
		if c.Contains(pt) {
			v, err := c.chain(Request{Key: pt})
			if err != nil {
				return nil, err
			}
			av, ok := coerce(v, pt)
			if !ok {
				return nil, newConstruction(pt, fmt.Sprintf("resolved %T is not assignable to parameter %d", v, i))
			}
			in = append(in, av)
			continue
		}
		return nil, newConstruction(pt, fmt.Sprintf("cannot fill parameter %d (%s) of %s", i, pt, ft))
	}
	if ft.IsVariadic() {
		elem := ft.In(numIn - 1).Elem()
		for j, a := range args {
			if used[j] {
				continue
			}
			if av, ok := coerce(a, elem); ok {
				used[j] = true
				in = append(in, av)
			}
		}
	}
	for j, u := range used {
		if !u {
			return nil, newConstruction(nil, fmt.Sprintf("argument %d (%T) does not match any parameter of %s", j, args[j], ft))
		}
	}
	out := fv.Call(in)
	results := make([]any, 0, len(out))
	var callErr error
	for i, ov := range out {
		if i == len(out)-1 && ft.Out(i) == errorType {
			if !ov.IsNil() {
				callErr = ov.Interface().(error)
			}
			continue
		}
		results = append(results, ov.Interface())
	}
	return results, callErr
}
