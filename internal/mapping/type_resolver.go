package mapping

import (
	"reflect"
	"strings"
)

var keyTypes = map[string]reflect.Type{
	"string":  reflect.TypeFor[string](),
	"bool":    reflect.TypeFor[bool](),
	"int":     reflect.TypeFor[int](),
	"int8":    reflect.TypeFor[int8](),
	"int16":   reflect.TypeFor[int16](),
	"int32":   reflect.TypeFor[int32](),
	"int64":   reflect.TypeFor[int64](),
	"uint":    reflect.TypeFor[uint](),
	"uint8":   reflect.TypeFor[uint8](),
	"uint16":  reflect.TypeFor[uint16](),
	"uint32":  reflect.TypeFor[uint32](),
	"uint64":  reflect.TypeFor[uint64](),
	"float32": reflect.TypeFor[float32](),
	"float64": reflect.TypeFor[float64](),
}

// ResolveKeyType resolves a key type name. Built-in scalar names are always
// known; other names are looked up in types, the Go types registered with
// the provider.
//   - "" resolves to nil: keys keep the type of the key property
//   - "long" and "integer" are accepted aliases of int64 and int
func ResolveKeyType(name string, types map[string]reflect.Type) (reflect.Type, bool) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "":
		return nil, true
	case "long":
		return keyTypes["int64"], true
	case "integer":
		return keyTypes["int"], true
	default:
		if t, ok := keyTypes[n]; ok {
			return t, true
		}
	}

	t, ok := types[name]

	return t, ok
}
