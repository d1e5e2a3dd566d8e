package common

import (
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"

	"enricher/internal/errs"
)

// Named is implemented by pluggable components selected by name.
type Named interface {
	Name() string
}

// Registry holds named components. Registering a name twice replaces the
// earlier component. It is safe for concurrent use.
type Registry[T Named] struct {
	kind  string
	items cmap.ConcurrentMap[string, T]
}

// NewRegistry creates a registry; kind names the component type in errors.
func NewRegistry[T Named](kind string, items ...T) *Registry[T] {
	r := &Registry[T]{kind: kind, items: cmap.New[T]()}
	r.Register(items...)

	return r
}

// Register adds items.
func (r *Registry[T]) Register(items ...T) {
	for _, item := range items {
		r.items.Set(item.Name(), item)
	}
}

// Get returns the component registered as name.
func (r *Registry[T]) Get(name string) (T, error) {
	item, ok := r.items.Get(name)
	if !ok {
		var zero T
		return zero, errs.ErrConfiguration.WithMsg("unknown %s %q", r.kind, name).WithData("known", r.Names())
	}

	return item, nil
}

// GetOr returns the component registered as name, or the one registered as
// fallback when name is empty.
func (r *Registry[T]) GetOr(name, fallback string) (T, error) {
	if name == "" {
		name = fallback
	}

	return r.Get(name)
}

// Has reports whether name is registered.
func (r *Registry[T]) Has(name string) bool {
	return r.items.Has(name)
}

// Names returns all registered names, sorted.
func (r *Registry[T]) Names() []string {
	names := r.items.Keys()
	sort.Strings(names)

	return names
}
