package property

import (
	"fmt"
	"reflect"
	"strings"

	"enricher/internal/errs"
)

// SplitPath splits a dotted property path into segments.
// An empty path yields no segments.
func SplitPath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	segments := strings.Split(path, ".")
	for i, s := range segments {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, errs.ErrProperty.WithMsg("invalid path %q: empty segment", path)
		}

		segments[i] = s
	}

	return segments, nil
}

// Read returns the value at path in obj.
// A nil intermediate value yields (nil, nil); an unknown struct field is an error.
// An empty path returns obj itself.
func Read(obj any, path string) (any, error) {
	v, err := lookup(obj, path)
	if err != nil || !v.IsValid() || !v.CanInterface() {
		return nil, err
	}

	return v.Interface(), nil
}

// ReadRef is Read, except that an addressable struct or array value is
// returned as a pointer so that writes through it reach obj.
func ReadRef(obj any, path string) (any, error) {
	v, err := lookup(obj, path)
	if err != nil || !v.IsValid() || !v.CanInterface() {
		return nil, err
	}

	if (v.Kind() == reflect.Struct || v.Kind() == reflect.Array) && v.CanAddr() {
		return v.Addr().Interface(), nil
	}

	return v.Interface(), nil
}

func lookup(obj any, path string) (reflect.Value, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return reflect.Value{}, err
	}

	v := reflect.ValueOf(obj)
	for _, seg := range segments {
		v = indirect(v)
		if !v.IsValid() {
			return reflect.Value{}, nil
		}

		v, err = child(v, seg)
		if err != nil {
			return reflect.Value{}, err
		}
	}

	return v, nil
}

// Has reports whether path resolves to a known property of obj.
func Has(obj any, path string) bool {
	_, err := Read(obj, path)

	return err == nil
}

func child(v reflect.Value, name string) (reflect.Value, error) {
	switch v.Kind() {
	case reflect.Struct:
		f, ok := Describe(v.Type()).Field(name)
		if !ok {
			return reflect.Value{}, errs.ErrProperty.WithMsg("%s has no property %q", v.Type(), name)
		}

		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			// nil embedded pointer on the way
			return reflect.Value{}, nil //nolint:nilerr
		}

		return fv, nil

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, errs.ErrProperty.WithMsg("%s: map key is not a string", v.Type())
		}

		return v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key())), nil

	default:
		return reflect.Value{}, errs.ErrProperty.WithMsg("cannot read %q from %s", name, v.Type())
	}
}

// Write stores value at path in obj.
// obj must be a pointer to a struct or a map with string keys; nil
// intermediate structs and maps are allocated on the way.
func Write(obj any, path string, value any) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}

	if len(segments) == 0 {
		return errs.ErrProperty.WithMsg("empty path")
	}

	root := reflect.ValueOf(obj)
	if !root.IsValid() {
		return errs.ErrProperty.WithMsg("cannot write %q into nil", path)
	}

	if root.Kind() == reflect.Map {
		return writeMap(root, segments, value)
	}

	if root.Kind() != reflect.Ptr || root.IsNil() {
		return errs.ErrProperty.WithMsg("cannot write %q into non-pointer %s", path, root.Type())
	}

	return write(root.Elem(), segments, value)
}

func write(v reflect.Value, segments []string, value any) error {
	v = allocIndirect(v)

	switch v.Kind() {
	case reflect.Map:
		return writeMap(v, segments, value)
	case reflect.Interface:
		if !v.IsNil() {
			inner := v.Elem()
			if inner.Kind() == reflect.Map || (inner.Kind() == reflect.Ptr && !inner.IsNil()) {
				return writeInto(inner, segments, value)
			}
		}

		if !v.CanSet() {
			return errs.ErrProperty.WithMsg("cannot write %q into %s", segments[0], v.Type())
		}

		nested := reflect.ValueOf(map[string]any{})
		if err := writeMap(nested, segments, value); err != nil {
			return err
		}

		v.Set(nested)

		return nil
	case reflect.Struct:
	default:
		return errs.ErrProperty.WithMsg("cannot write %q into %s", segments[0], v.Type())
	}

	f, ok := Describe(v.Type()).Field(segments[0])
	if !ok {
		return errs.ErrProperty.WithMsg("%s has no property %q", v.Type(), segments[0])
	}

	fv := fieldByIndexAlloc(v, f.Index)
	if !fv.CanSet() {
		return errs.ErrProperty.WithMsg("%s.%s is not settable", v.Type(), f.Name)
	}

	if len(segments) > 1 {
		return write(fv, segments[1:], value)
	}

	if err := Assign(fv, value); err != nil {
		return fmt.Errorf("%s.%s: %w", v.Type(), f.Name, err)
	}

	return nil
}

func writeMap(m reflect.Value, segments []string, value any) error {
	mt := m.Type()
	if mt.Key().Kind() != reflect.String {
		return errs.ErrProperty.WithMsg("%s: map key is not a string", mt)
	}

	if m.IsNil() {
		if !m.CanSet() {
			return errs.ErrProperty.WithMsg("cannot write %q into nil map", segments[0])
		}

		m.Set(reflect.MakeMap(mt))
	}

	key := reflect.ValueOf(segments[0]).Convert(mt.Key())

	if len(segments) > 1 {
		cur := m.MapIndex(key)

		if mt.Elem().Kind() == reflect.Interface {
			if cur.IsValid() && !cur.IsNil() {
				inner := cur.Elem()
				if inner.Kind() == reflect.Map || (inner.Kind() == reflect.Ptr && !inner.IsNil()) {
					return writeInto(inner, segments[1:], value)
				}
			}

			nested := reflect.ValueOf(map[string]any{})
			if err := writeMap(nested, segments[1:], value); err != nil {
				return err
			}

			m.SetMapIndex(key, nested)

			return nil
		}

		// map elements are not addressable: copy out, write, store back
		target := reflect.New(mt.Elem()).Elem()
		if cur.IsValid() {
			target.Set(cur)
		}

		if err := write(target, segments[1:], value); err != nil {
			return err
		}

		m.SetMapIndex(key, target)

		return nil
	}

	elem := reflect.New(mt.Elem()).Elem()
	if err := Assign(elem, value); err != nil {
		return fmt.Errorf("%s[%q]: %w", mt, segments[0], err)
	}

	m.SetMapIndex(key, elem)

	return nil
}

// writeInto writes through a pointer or map value held in an interface.
func writeInto(v reflect.Value, segments []string, value any) error {
	if v.Kind() == reflect.Map {
		return writeMap(v, segments, value)
	}

	if v.IsNil() {
		return errs.ErrProperty.WithMsg("cannot write %q into nil %s", segments[0], v.Type())
	}

	return write(v.Elem(), segments, value)
}

// allocIndirect dereferences pointers, allocating nil ones when settable.
func allocIndirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			if !v.CanSet() {
				return v
			}

			v.Set(reflect.New(v.Type().Elem()))
		}

		v = v.Elem()
	}

	return v
}

// fieldByIndexAlloc is FieldByIndex that allocates nil embedded pointers.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 {
			v = allocIndirect(v)
		}

		v = v.Field(x)
	}

	return v
}
