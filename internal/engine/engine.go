// Package engine assembles the registries, containers, caches, executor and
// definition provider into one Engine.
//
// An Engine owns every named component it dispatches to; nothing is looked up
// in package-level state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"enricher/internal/cache"
	"enricher/internal/container"
	"enricher/internal/diagnostic"
	"enricher/internal/errs"
	"enricher/internal/executor"
	"enricher/internal/logs"
	"enricher/internal/mapping"
	"enricher/internal/operation"
)

// Engine enriches targets described by a definition file.
type Engine struct {
	logger     *zap.Logger
	registries mapping.Registries
	containers *container.Registry
	caches     cache.Manager
	executor   *executor.Executor
	provider   operation.Provider
	closers    []func(context.Context) error
}

// Enrich enriches targets with the graph of typeName.
func (e *Engine) Enrich(ctx context.Context, typeName string, targets []any, filter operation.Filter) (*diagnostic.Diagnostics, error) {
	ops, err := e.Operations(typeName)
	if err != nil {
		return nil, err
	}

	return e.executor.Execute(ctx, targets, ops, filter)
}

// Execute enriches targets with ops.
func (e *Engine) Execute(ctx context.Context, targets []any, ops *operation.BeanOperations, filter operation.Filter) (*diagnostic.Diagnostics, error) {
	return e.executor.Execute(ctx, targets, ops, filter)
}

// Operations returns the graph of typeName.
func (e *Engine) Operations(typeName string) (*operation.BeanOperations, error) {
	if e.provider == nil {
		return nil, errs.ErrConfiguration.WithMsg("no operation definitions")
	}

	ops, err := e.provider.Operations(typeName)
	if err != nil {
		return nil, err
	}

	if ops == nil {
		return nil, errs.ErrConfiguration.WithMsg("no operations for type %q", typeName)
	}

	return ops, nil
}

// Containers returns the container registry.
func (e *Engine) Containers() *container.Registry { return e.containers }

// Caches returns the cache manager.
func (e *Engine) Caches() cache.Manager { return e.caches }

// Registries returns the named component registries.
func (e *Engine) Registries() mapping.Registries { return e.registries }

// Executor returns the executor.
func (e *Engine) Executor() *executor.Executor { return e.executor }

// Close destroys every container, then releases the connections opened for
// them.
func (e *Engine) Close(ctx context.Context) error {
	var all []error

	if err := e.containers.Close(); err != nil {
		all = append(all, err)
	}

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil {
			all = append(all, err)
		}
	}

	e.caches.ClearAll()
	e.logger.Debug("engine closed")

	return errors.Join(all...)
}

// Builder configures an Engine.
type Builder struct {
	logger      *zap.Logger
	mode        executor.Mode
	cfg         executor.Config
	registries  mapping.Registries
	containers  []container.Container
	cached      []cachedNamespace
	manager     cache.Manager
	definitions *mapping.File
	provider    operation.Provider
	types       []mapping.Option
	typeMap     map[string]reflect.Type
	closers     []func(context.Context) error
	errs        []error
}

type cachedNamespace struct {
	namespace string
	def       cache.Definition
}

// NewBuilder returns a Builder holding the built-in handlers, strategies and
// key resolvers.
func NewBuilder() *Builder {
	return &Builder{
		cfg:     executor.DefaultConfig(),
		typeMap: make(map[string]reflect.Type),
	}
}

// WithLogger sets the logger of the engine and its components. Built-in
// handlers log through the logger set before the first registration.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// reg returns the registries, creating the built-in ones on first use.
func (b *Builder) reg() mapping.Registries {
	if b.registries.Handlers == nil {
		b.registries = mapping.DefaultRegistries(b.logger)
	}

	return b.registries
}

// WithExecutor sets the dispatch mode and executor settings.
func (b *Builder) WithExecutor(mode executor.Mode, cfg executor.Config) *Builder {
	b.mode = mode
	b.cfg = cfg

	return b
}

// WithContainer registers c.
func (b *Builder) WithContainer(c container.Container) *Builder {
	b.containers = append(b.containers, c)
	return b
}

// WithCache caches the container of namespace.
func (b *Builder) WithCache(namespace string, def cache.Definition) *Builder {
	b.cached = append(b.cached, cachedNamespace{namespace: namespace, def: def})
	return b
}

// WithCacheManager replaces the in-memory cache manager.
func (b *Builder) WithCacheManager(m cache.Manager) *Builder {
	b.manager = m
	return b
}

// WithDefinitions sets the definition file graphs are built from.
func (b *Builder) WithDefinitions(f *mapping.File) *Builder {
	b.definitions = f
	return b
}

// WithProvider sets the graph provider, taking precedence over definitions.
func (b *Builder) WithProvider(p operation.Provider) *Builder {
	b.provider = p
	return b
}

// WithType binds a definition type name to a Go type.
func (b *Builder) WithType(name string, t reflect.Type) *Builder {
	b.types = append(b.types, mapping.WithType(name, t))
	b.typeMap[name] = t

	return b
}

// WithHandler registers an assemble handler, replacing a built-in of the same name.
func (b *Builder) WithHandler(h operation.AssembleHandler) *Builder {
	b.reg().Handlers.Register(h)
	return b
}

// WithDisassembler registers a disassemble handler.
func (b *Builder) WithDisassembler(h operation.DisassembleHandler) *Builder {
	b.reg().Disassemblers.Register(h)
	return b
}

// WithStrategy registers a mapping strategy.
func (b *Builder) WithStrategy(s operation.MappingStrategy) *Builder {
	b.reg().Strategies.Register(s)
	return b
}

// WithKeyResolver registers a key resolver provider.
func (b *Builder) WithKeyResolver(r operation.KeyResolverProvider) *Builder {
	b.reg().KeyResolvers.Register(r)
	return b
}

// onClose registers a release function run by Engine.Close.
func (b *Builder) onClose(fn func(context.Context) error) {
	b.closers = append(b.closers, fn)
}

func (b *Builder) fail(err error) {
	b.errs = append(b.errs, err)
}

// Build validates the configuration and creates the Engine. Containers are
// initialized here. On error, connections opened by the builder are released.
func (b *Builder) Build() (*Engine, error) {
	logger := logs.OrDefault(b.logger)

	e, err := b.build(logger)
	if err != nil {
		for i := len(b.closers) - 1; i >= 0; i-- {
			if cerr := b.closers[i](context.Background()); cerr != nil {
				logger.Warn("release after failed build", zap.Error(cerr))
			}
		}

		return nil, err
	}

	return e, nil
}

func (b *Builder) build(logger *zap.Logger) (*Engine, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	e := &Engine{
		logger:     logger.Named("engine"),
		registries: b.reg(),
		containers: container.NewRegistry(logger),
		caches:     b.manager,
		provider:   b.provider,
		closers:    b.closers,
	}

	if e.caches == nil {
		e.caches = cache.NewMemoryManager()
	}

	for _, c := range b.containers {
		if err := e.containers.Register(c); err != nil {
			_ = e.containers.Close()
			return nil, err
		}
	}

	for _, cn := range b.cached {
		if err := cache.Decorate(e.containers, cn.namespace, cn.def, e.caches, logger); err != nil {
			_ = e.containers.Close()
			return nil, fmt.Errorf("cache %s: %w", cn.namespace, err)
		}
	}

	if e.provider == nil && b.definitions != nil {
		diags := mapping.Validate(b.definitions, e.registries, b.typeMap)
		for _, w := range diags.Warnings {
			e.logger.Warn("definition warning", zap.String("code", w.Code), zap.String("bean", w.Bean), zap.String("message", w.Message))
		}

		if err := diags.Error(); err != nil {
			_ = e.containers.Close()
			return nil, errs.ErrConfiguration.WithMsg("invalid operation definitions").WithCause(err)
		}

		opts := append(slices.Clone(b.types), mapping.WithLogger(logger))
		e.provider = mapping.NewProvider(b.definitions, e.registries, opts...)
	}

	e.executor = executor.New(b.mode, e.containers, b.cfg, logger)

	e.logger.Info("engine built",
		zap.Stringer("mode", b.mode),
		zap.Strings("namespaces", e.containers.Namespaces()),
	)

	return e, nil
}
