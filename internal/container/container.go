// Package container defines data sources and the registry that holds them.
//
// A Container answers one batched lookup: given a list of keys it returns the
// objects it knows about, keyed by the same keys. Keys it has no data for are
// simply absent from the result. Containers are addressed by namespace; the
// empty namespace is reserved for the target objects themselves.
package container

import (
	"context"
	"reflect"

	"enricher/internal/errs"
	"enricher/internal/property"
)

// Container is a keyed batch data source.
type Container interface {
	Namespace() string
	Get(ctx context.Context, keys []any) (map[any]any, error)
}

// Lifecycle is implemented by containers holding resources.
// Init runs when the container is registered, Destroy when it is replaced or
// removed.
type Lifecycle interface {
	Init() error
	Destroy() error
}

// EmptyNamespace addresses the target objects themselves.
const EmptyNamespace = ""

type emptyContainer struct{}

// Empty returns the container for EmptyNamespace. It never returns data; the
// handlers map a target onto itself instead of querying it.
func Empty() Container {
	return emptyContainer{}
}

func (emptyContainer) Namespace() string { return EmptyNamespace }

func (emptyContainer) Get(context.Context, []any) (map[any]any, error) {
	return map[any]any{}, nil
}

// IsEmpty reports whether c is the empty container.
func IsEmpty(c Container) bool {
	return c == nil || c.Namespace() == EmptyNamespace
}

// Func is a Container backed by a lookup function.
type Func[K comparable, V any] struct {
	namespace string
	fn        func(ctx context.Context, keys []K) (map[K]V, error)
}

// FromFunc wraps fn as a Container. Keys not convertible to K are skipped;
// results are returned under the keys as requested.
func FromFunc[K comparable, V any](namespace string, fn func(ctx context.Context, keys []K) (map[K]V, error)) *Func[K, V] {
	return &Func[K, V]{namespace: namespace, fn: fn}
}

func (f *Func[K, V]) Namespace() string { return f.namespace }

func (f *Func[K, V]) Get(ctx context.Context, keys []any) (map[any]any, error) {
	typed := make([]K, 0, len(keys))
	requested := make(map[K]any, len(keys))

	for _, k := range keys {
		tk, ok := keyAs[K](k)
		if !ok {
			continue
		}

		if _, dup := requested[tk]; !dup {
			typed = append(typed, tk)
			requested[tk] = k
		}
	}

	result := make(map[any]any, len(typed))
	if len(typed) == 0 {
		return result, nil
	}

	values, err := f.fn(ctx, typed)
	if err != nil {
		return nil, err
	}

	for k, v := range values {
		if orig, ok := requested[k]; ok {
			result[orig] = v
		}
	}

	return result, nil
}

// Map is a Container serving a fixed map.
type Map[K comparable, V any] struct {
	namespace string
	data      map[K]V
}

// FromMap serves data under namespace. The map is not copied.
func FromMap[K comparable, V any](namespace string, data map[K]V) *Map[K, V] {
	return &Map[K, V]{namespace: namespace, data: data}
}

func (m *Map[K, V]) Namespace() string { return m.namespace }

func (m *Map[K, V]) Get(_ context.Context, keys []any) (map[any]any, error) {
	result := make(map[any]any, len(keys))

	for _, k := range keys {
		tk, ok := keyAs[K](k)
		if !ok {
			continue
		}

		if v, found := m.data[tk]; found {
			result[k] = v
		}
	}

	return result, nil
}

// Constant is a Container returning the same data for every lookup,
// regardless of the requested keys.
type Constant struct {
	namespace string
	data      map[any]any
}

// NewConstant serves data under namespace.
func NewConstant(namespace string, data map[any]any) *Constant {
	return &Constant{namespace: namespace, data: data}
}

// ConstantOf serves the exported fields of the struct v, keyed by field name.
func ConstantOf(namespace string, v any) (*Constant, error) {
	t := reflect.TypeOf(v)
	if t == nil || property.Base(t).Kind() != reflect.Struct {
		return nil, errs.ErrConfiguration.WithMsg("constant %q: %T is not a struct", namespace, v)
	}

	names := property.Describe(t).Names()

	data := make(map[any]any, len(names))
	for _, name := range names {
		value, err := property.Read(v, name)
		if err != nil {
			return nil, err
		}

		data[name] = value
	}

	return NewConstant(namespace, data), nil
}

func (c *Constant) Namespace() string { return c.namespace }

func (c *Constant) Get(context.Context, []any) (map[any]any, error) {
	out := make(map[any]any, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}

	return out, nil
}

// keyAs converts k to K when the dynamic types are compatible.
func keyAs[K comparable](k any) (K, bool) {
	var zero K

	if tk, ok := k.(K); ok {
		return tk, true
	}

	if k == nil {
		return zero, false
	}

	kt := reflect.TypeFor[K]()

	rv := reflect.ValueOf(k)
	if !rv.Type().ConvertibleTo(kt) || (rv.Kind() == reflect.String) != (kt.Kind() == reflect.String) {
		return zero, false
	}

	// numeric conversions must not lose information
	out := rv.Convert(kt)
	if !reflect.DeepEqual(out.Convert(rv.Type()).Interface(), k) {
		return zero, false
	}

	return out.Interface().(K), true
}
