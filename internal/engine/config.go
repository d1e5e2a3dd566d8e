package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"enricher/internal/cache"
	"enricher/internal/config"
	"enricher/internal/container"
	"enricher/internal/datasource"
	"enricher/internal/errs"
	"enricher/internal/executor"
	"enricher/internal/mapping"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// FromConfig returns a Builder holding what cfg declares. Database
// connections are opened here and released by Engine.Close; failures are
// reported by Build.
func FromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Builder {
	b := NewBuilder().WithLogger(logger)

	mode, err := executor.ParseMode(cfg.Executor.Mode)
	if err != nil {
		b.fail(err)
	}

	b.WithExecutor(mode, executor.Config{
		BatchSize:     cfg.Executor.BatchSize,
		MaxDepth:      cfg.Executor.MaxDepth,
		Parallelism:   cfg.Executor.Parallelism,
		SlowThreshold: cfg.Executor.SlowThreshold,
	})

	for _, sc := range cfg.Containers.Static {
		c, err := LoadStatic(sc)
		if err != nil {
			b.fail(err)
			continue
		}

		b.WithContainer(c)
	}

	b.mysql(cfg.Containers.MySQL, logger)
	b.mongo(ctx, cfg.Containers.Mongo, logger)

	b.WithCacheManager(cache.NewMemoryManager(cache.WithDefaultTTL(cfg.Cache.DefaultTTL)))
	for _, cn := range cfg.Cache.Namespaces {
		b.WithCache(cn.Namespace, cn.Definition)
	}

	if cfg.Operations != "" {
		f, err := mapping.LoadFile(cfg.Operations)
		if err != nil {
			b.fail(err)
		} else {
			b.WithDefinitions(f)
		}
	}

	return b
}

// Filter returns the operation filter selecting groups, or every operation
// when groups is empty.
func Filter(groups []string) operation.Filter {
	if len(groups) == 0 {
		return operation.All()
	}

	return operation.InGroups(groups...)
}

// LoadStatic reads the JSON object of sc.File and serves its members keyed
// by name, converted to sc.KeyType.
func LoadStatic(sc config.StaticContainer) (container.Container, error) {
	keyType, ok := mapping.ResolveKeyType(sc.KeyType, nil)
	if !ok {
		return nil, errs.ErrConfiguration.WithMsg("static container %q: unknown key type %q", sc.Namespace, sc.KeyType)
	}

	raw, err := os.ReadFile(sc.File)
	if err != nil {
		return nil, errs.ErrConfiguration.WithMsg("static container %q", sc.Namespace).WithCause(err)
	}

	var members map[string]any
	if err = json.Unmarshal(raw, &members); err != nil {
		return nil, errs.ErrConfiguration.WithMsg("static container %q: parse %s", sc.Namespace, sc.File).WithCause(err)
	}

	data := make(map[any]any, len(members))

	for name, v := range members {
		var key any = name

		if keyType != nil {
			if key, err = property.Convert(name, keyType); err != nil {
				return nil, errs.ErrConfiguration.WithMsg("static container %q: key %q", sc.Namespace, name).WithCause(err)
			}
		}

		data[key] = v
	}

	return container.FromMap(sc.Namespace, data), nil
}

func (b *Builder) mysql(cfg config.MySQLContainers, logger *zap.Logger) {
	if len(cfg.Tables) == 0 {
		return
	}

	db, err := datasource.OpenMySQL(cfg.MySQLConfig, logger)
	if err != nil {
		b.fail(err)
		return
	}

	b.onClose(func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}

		return sqlDB.Close()
	})

	for _, def := range cfg.Tables {
		t, err := datasource.NewTable(db, def, logger)
		if err != nil {
			b.fail(err)
			continue
		}

		b.WithContainer(t)
	}
}

func (b *Builder) mongo(ctx context.Context, cfg config.MongoContainers, logger *zap.Logger) {
	if len(cfg.Collections) == 0 {
		return
	}

	client, err := datasource.OpenMongo(ctx, cfg.MongoConfig, logger)
	if err != nil {
		b.fail(err)
		return
	}

	b.onClose(func(ctx context.Context) error {
		if err := client.Disconnect(ctx); err != nil {
			return fmt.Errorf("disconnect mongodb: %w", err)
		}

		return nil
	})

	db := client.Database(cfg.Database)

	for _, def := range cfg.Collections {
		c, err := datasource.NewCollection(db, def, logger)
		if err != nil {
			b.fail(err)
			continue
		}

		b.WithContainer(c)
	}
}
