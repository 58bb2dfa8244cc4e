package predicate

import "reflect"

// Userdata is the stand-in for the host environment's opaque, user-defined
// value kind (spec's "userdata"): an object with identity but no exposed
// structure to the predicate layer beyond what it is.
type Userdata interface {
	IsUserdata()
}

// Table is the stand-in for the host environment's generic associative
// container ("table" in the spec's worked scenarios, e.g. S3/S5).
type Table map[any]any

// DefaultRegistry returns a Registry pre-populated with predicates for the
// primitive value kinds spec §3 calls "core-defined": number, string,
// boolean, table, userdata, function, object, and nil. Callers register
// additional "user" kinds on top of this during their own init phase.
func DefaultRegistry() *Registry {
	r := New()

	r.registerBuiltin("number", func(v any) bool {
		switch v.(type) {
		case int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		default:
			return false
		}
	})

	r.registerBuiltin("string", func(v any) bool {
		_, ok := v.(string)
		return ok
	})

	r.registerBuiltin("boolean", func(v any) bool {
		_, ok := v.(bool)
		return ok
	})

	r.registerBuiltin("table", func(v any) bool {
		if v == nil {
			return false
		}
		if _, ok := v.(Table); ok {
			return true
		}
		k := reflect.ValueOf(v).Kind()
		return k == reflect.Map || k == reflect.Slice || k == reflect.Array
	})

	r.registerBuiltin("userdata", func(v any) bool {
		_, ok := v.(Userdata)
		return ok
	})

	r.registerBuiltin("function", func(v any) bool {
		if v == nil {
			return false
		}
		return reflect.ValueOf(v).Kind() == reflect.Func
	})

	// object is the catch-all predicate (any non-nil value) that
	// fsa.Assemble injects as the default type of an unmapped "self"
	// (spec §4.1).
	r.registerBuiltin("object", func(v any) bool {
		return v != nil
	})

	r.registerBuiltin("nil", func(v any) bool {
		return v == nil
	})

	return r
}
