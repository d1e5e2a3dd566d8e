package container

import (
	"errors"
	"fmt"
	"sort"

	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"

	"enricher/internal/common"
	"enricher/internal/errs"
	"enricher/internal/logs"
)

// Registry holds containers by namespace. It is safe for concurrent use.
// Registering a namespace twice replaces the previous container.
type Registry struct {
	containers cmap.ConcurrentMap[string, Container]
	logger     *zap.Logger
}

// NewRegistry creates a Registry holding only the empty container.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		containers: cmap.New[Container](),
		logger:     logs.OrDefault(logger).Named("containers"),
	}
	r.containers.Set(EmptyNamespace, Empty())

	return r
}

// Register adds c, replacing any container with the same namespace.
// c is initialized before it becomes visible; the replaced container is
// destroyed afterwards. Registering the registered instance again is a no-op.
func (r *Registry) Register(c Container) error {
	if c == nil {
		return errs.ErrConfiguration.WithMsg("nil container")
	}

	ns := c.Namespace()
	if ns == EmptyNamespace {
		return errs.ErrConfiguration.WithMsg("namespace %q is reserved", ns)
	}

	if cur, ok := r.containers.Get(ns); ok && same(cur, c) {
		return nil
	}

	if lc, ok := c.(Lifecycle); ok {
		if err := lc.Init(); err != nil {
			return errs.ErrConfiguration.WithMsg("init container %q", ns).WithCause(err)
		}
	}

	var (
		old     Container
		existed bool
	)

	r.containers.Upsert(ns, c, func(exist bool, valueInMap, newValue Container) Container {
		old, existed = valueInMap, exist
		return newValue
	})

	if existed && same(old, c) {
		return nil
	}

	if existed {
		r.logger.Info("container replaced", zap.String("namespace", ns))
		r.destroy(old)
	} else {
		r.logger.Debug("container registered", zap.String("namespace", ns))
	}

	return nil
}

// Replace swaps the container registered under ns for fn(current).
// Unlike Register, the current container is not destroyed: fn usually wraps it.
func (r *Registry) Replace(ns string, fn func(current Container) Container) error {
	current, ok := r.containers.Get(ns)
	if !ok {
		return errs.ErrContainerNotFound.WithMsg("container %q not found", ns)
	}

	next := fn(current)
	if next == nil || next.Namespace() != ns {
		return errs.ErrConfiguration.WithMsg("replacement for %q must keep the namespace", ns)
	}

	r.containers.Set(ns, next)

	return nil
}

// Get returns the container for ns.
func (r *Registry) Get(ns string) (Container, bool) {
	return r.containers.Get(ns)
}

// Lookup returns the container for ns or an ErrContainerNotFound error.
func (r *Registry) Lookup(ns string) (Container, error) {
	c, ok := r.containers.Get(ns)
	if !ok {
		return nil, errs.ErrContainerNotFound.WithMsg("container %q not found", ns)
	}

	return c, nil
}

// Has reports whether ns is registered.
func (r *Registry) Has(ns string) bool {
	return r.containers.Has(ns)
}

// Remove unregisters and destroys the container for ns.
func (r *Registry) Remove(ns string) bool {
	if ns == EmptyNamespace {
		return false
	}

	c, ok := r.containers.Pop(ns)
	if !ok {
		return false
	}

	r.destroy(c)

	return true
}

// Namespaces returns all registered namespaces, sorted.
func (r *Registry) Namespaces() []string {
	names := r.containers.Keys()
	sort.Strings(names)

	return names
}

// Close destroys every container and empties the registry.
func (r *Registry) Close() error {
	var errList []error

	for _, ns := range r.Namespaces() {
		c, ok := r.containers.Pop(ns)
		if !ok {
			continue
		}

		if lc, ok := c.(Lifecycle); ok {
			if err := lc.Destroy(); err != nil {
				errList = append(errList, fmt.Errorf("destroy container %q: %w", ns, err))
			}
		}
	}

	r.containers.Set(EmptyNamespace, Empty())

	return errors.Join(errList...)
}

func (r *Registry) destroy(c Container) {
	lc, ok := c.(Lifecycle)
	if !ok {
		return
	}

	if err := lc.Destroy(); err != nil {
		r.logger.Warn("destroy container failed", zap.String("namespace", c.Namespace()), zap.Error(err))
	}
}

func same(a, b Container) bool {
	return common.IsComparable(a) && common.IsComparable(b) && a == b
}
