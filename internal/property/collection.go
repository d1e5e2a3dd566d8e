package property

import "reflect"

// IsCollection reports whether v is a slice or array other than []byte.
func IsCollection(v any) bool {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return false
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

// Elements adapts v to a list of items.
// Collections yield their elements, nil yields nothing and any other value
// yields itself. Struct elements of slices are returned as pointers into the
// backing array so writes through them are visible to the caller.
// Nil elements are dropped.
func Elements(v any) []any {
	if v == nil {
		return nil
	}

	if !IsCollection(v) {
		if isNilValue(reflect.ValueOf(v)) {
			return nil
		}

		return []any{v}
	}

	rv := indirect(reflect.ValueOf(v))
	out := make([]any, 0, rv.Len())

	for i := range rv.Len() {
		elem := rv.Index(i)

		if elem.Kind() == reflect.Interface {
			if elem.IsNil() {
				continue
			}

			elem = elem.Elem()
		}

		if isNilValue(elem) {
			continue
		}

		if elem.Kind() == reflect.Struct && elem.CanAddr() {
			out = append(out, elem.Addr().Interface())
			continue
		}

		out = append(out, elem.Interface())
	}

	return out
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	case reflect.Invalid:
		return true
	default:
		return false
	}
}
