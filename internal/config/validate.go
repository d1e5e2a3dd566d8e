package config

import (
	"enricher/internal/errs"
	"enricher/internal/executor"
)

// Validate checks cfg and fills in defaults for unset values.
func (c *Config) Validate() error {
	var problems errorList

	if _, err := executor.ParseMode(c.Executor.Mode); err != nil {
		problems.add("executor.mode: %w", err)
	}

	if c.Executor.BatchSize < 0 {
		problems.add("executor.batch_size must not be negative, got %d", c.Executor.BatchSize)
	}

	if c.Executor.MaxDepth < 0 {
		problems.add("executor.max_depth must not be negative, got %d", c.Executor.MaxDepth)
	}

	if c.Executor.Parallelism < 1 {
		c.Executor.Parallelism = executor.DefaultParallelism
	}

	if c.Cache.DefaultTTL < 0 {
		problems.add("cache.default_ttl must not be negative, got %s", c.Cache.DefaultTTL)
	}

	namespaces := map[string]string{}
	declare := func(kind, ns string) {
		if ns == "" {
			problems.add("%s container without namespace", kind)
			return
		}

		if prev, ok := namespaces[ns]; ok {
			problems.add("namespace %q declared by %s and %s containers", ns, prev, kind)
			return
		}

		namespaces[ns] = kind
	}

	for _, s := range c.Containers.Static {
		declare("static", s.Namespace)

		if s.File == "" {
			problems.add("static container %q: file is required", s.Namespace)
		}
	}

	for _, t := range c.Containers.MySQL.Tables {
		declare("mysql", t.Namespace)
	}

	if len(c.Containers.MySQL.Tables) > 0 && c.Containers.MySQL.DSN == "" && c.Containers.MySQL.Host == "" {
		problems.add("containers.mysql: dsn or host is required")
	}

	for _, coll := range c.Containers.Mongo.Collections {
		declare("mongo", coll.Namespace)
	}

	if len(c.Containers.Mongo.Collections) > 0 && (c.Containers.Mongo.URI == "" || c.Containers.Mongo.Database == "") {
		problems.add("containers.mongo: uri and database are required")
	}

	cached := map[string]struct{}{}

	for i := range c.Cache.Namespaces {
		n := &c.Cache.Namespaces[i]
		if n.Namespace == "" {
			problems.add("cache.namespaces[%d]: namespace is required", i)
			continue
		}

		if _, dup := cached[n.Namespace]; dup {
			problems.add("cache.namespaces: %q cached twice", n.Namespace)
		}

		cached[n.Namespace] = struct{}{}

		if n.Name == "" {
			n.Name = n.Namespace
		}

		if n.TTL == 0 {
			n.TTL = c.Cache.DefaultTTL
		}
	}

	if err := problems.err(); err != nil {
		return errs.ErrConfiguration.WithMsg("invalid configuration").WithCause(err)
	}

	return nil
}
