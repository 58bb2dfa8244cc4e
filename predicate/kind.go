package predicate

import "reflect"

// KindOf labels a value with the observed-kind word a CheckError reports
// (spec §4.5/§7: "the observed value kind"). It mirrors DefaultRegistry's
// builtin predicates but picks exactly one label per value, independent of
// whatever user predicates are also registered.
func KindOf(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "number"
	case string:
		return "string"
	}
	if _, ok := v.(Userdata); ok {
		return "userdata"
	}
	if _, ok := v.(Table); ok {
		return "table"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func:
		return "function"
	case reflect.Map, reflect.Slice, reflect.Array:
		return "table"
	default:
		return "userdata"
	}
}
