package property

import (
	"reflect"
	"strings"
	"sync"
)

// FieldInfo describes an accessible struct field.
type FieldInfo struct {
	Name     string       // Go field name
	JSONName string       // json tag name, or Name when untagged
	Type     reflect.Type // Field type
	Index    []int        // Index path for reflect.Value.FieldByIndex
}

// Descriptor lists the accessible fields of a struct type and indexes them
// for name lookup.
type Descriptor struct {
	Type   reflect.Type
	Fields []FieldInfo

	byName       map[string]int
	byJSONName   map[string]int
	byNormalized map[string]int
}

// descriptors caches Descriptor per reflect.Type.
var descriptors sync.Map

// Describe returns the cached Descriptor of a struct type.
// Pointer types are dereferenced; nil is returned for non-struct types.
func Describe(t reflect.Type) *Descriptor {
	t = Base(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	if d, ok := descriptors.Load(t); ok {
		return d.(*Descriptor)
	}

	d, _ := descriptors.LoadOrStore(t, newDescriptor(t))

	return d.(*Descriptor)
}

func newDescriptor(t reflect.Type) *Descriptor {
	d := &Descriptor{
		Type:         t,
		byName:       make(map[string]int),
		byJSONName:   make(map[string]int),
		byNormalized: make(map[string]int),
	}

	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		info := FieldInfo{
			Name:     f.Name,
			JSONName: jsonName(f),
			Type:     f.Type,
			Index:    f.Index,
		}

		idx := len(d.Fields)
		d.Fields = append(d.Fields, info)

		d.byName[info.Name] = idx
		if _, exists := d.byJSONName[info.JSONName]; !exists {
			d.byJSONName[info.JSONName] = idx
		}

		norm := NormalizeIdent(info.Name)
		if _, exists := d.byNormalized[norm]; !exists {
			d.byNormalized[norm] = idx
		}
	}

	return d
}

// Field looks a field up by Go name, json name or normalized identifier.
func (d *Descriptor) Field(name string) (FieldInfo, bool) {
	if d == nil || name == "" {
		return FieldInfo{}, false
	}

	if idx, ok := d.byName[name]; ok {
		return d.Fields[idx], true
	}

	if idx, ok := d.byJSONName[name]; ok {
		return d.Fields[idx], true
	}

	if idx, ok := d.byNormalized[NormalizeIdent(name)]; ok {
		return d.Fields[idx], true
	}

	return FieldInfo{}, false
}

// Names returns the Go names of all accessible fields in declaration order.
func (d *Descriptor) Names() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}

	return names
}

// jsonName returns the JSON tag name if present, otherwise the field name.
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}

	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}

	return f.Name
}

// Base strips all pointer levels from t.
func Base(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

// indirect follows pointers and interfaces until a non-pointer value or nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}
