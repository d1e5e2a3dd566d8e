package common

import "reflect"

// UnknownStr is the String() value for enum members without a name.
const UnknownStr = "unknown"

// IsComparable reports whether v can be used as a map key without panicking.
func IsComparable(v any) bool {
	if v == nil {
		return true
	}

	return reflect.TypeOf(v).Comparable()
}

// IsNil reports whether v is nil or a nil pointer, map, slice, interface, func or chan.
func IsNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// IsZero reports whether v is nil or the zero value of its dynamic type.
func IsZero(v any) bool {
	if IsNil(v) {
		return true
	}

	return reflect.ValueOf(v).IsZero()
}
