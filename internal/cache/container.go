package cache

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"enricher/internal/common"
	"enricher/internal/container"
	"enricher/internal/logs"
)

// Container serves lookups from a cache, fetching only missing keys from the
// decorated container. Keys without data and nil values are not cached.
type Container struct {
	delegate container.Container
	def      Definition
	manager  Manager
	group    singleflight.Group
	logger   *zap.Logger
}

// New decorates delegate. An empty def.Name defaults to the namespace.
func New(delegate container.Container, def Definition, manager Manager, logger *zap.Logger) *Container {
	if def.Name == "" {
		def.Name = delegate.Namespace()
	}

	return &Container{
		delegate: delegate,
		def:      def,
		manager:  manager,
		logger:   logs.OrDefault(logger).Named("cache").With(zap.String("cache", def.Name)),
	}
}

// Decorate replaces the container registered under namespace with a cached
// version of itself.
func Decorate(registry *container.Registry, namespace string, def Definition, manager Manager, logger *zap.Logger) error {
	return registry.Replace(namespace, func(current container.Container) container.Container {
		return New(current, def, manager, logger)
	})
}

func (c *Container) Namespace() string { return c.delegate.Namespace() }

// Unwrap returns the decorated container.
func (c *Container) Unwrap() container.Container { return c.delegate }

func (c *Container) Get(ctx context.Context, keys []any) (map[any]any, error) {
	keys = common.UniqueComparable(keys)

	cache := c.manager.Cache(c.def)

	hits, misses := cache.GetAll(keys)
	if len(misses) == 0 {
		return hits, nil
	}

	c.logger.Debug("cache miss",
		zap.Int("hits", len(hits)),
		zap.Int("misses", len(misses)),
		logs.Dump("keys", misses),
	)

	v, err, _ := c.group.Do(flightKey(misses), func() (any, error) {
		fetched, err := c.delegate.Get(ctx, misses)
		if err != nil {
			return nil, err
		}

		found := make(map[any]any, len(fetched))
		for k, value := range fetched {
			if !common.IsNil(value) {
				found[k] = value
			}
		}

		cache.PutAll(found)

		return fetched, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", c.def.Name, err)
	}

	for k, value := range v.(map[any]any) {
		hits[k] = value
	}

	return hits, nil
}

// flightKey identifies a set of keys, dynamic types included, so that int(1)
// and int64(1) never share a fetch.
func flightKey(keys []any) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%T:%#v,", k, k)
	}

	return b.String()
}

// Init initializes the decorated container.
func (c *Container) Init() error {
	if lc, ok := c.delegate.(container.Lifecycle); ok {
		return lc.Init()
	}

	return nil
}

// Destroy destroys the decorated container and drops its cache.
func (c *Container) Destroy() error {
	c.manager.Remove(c.def.Name)

	if lc, ok := c.delegate.(container.Lifecycle); ok {
		return lc.Destroy()
	}

	return nil
}
