package mapping

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"enricher/internal/errs"
	"enricher/internal/logs"
	"enricher/internal/match"
	"enricher/internal/operation"
	"enricher/internal/property"
)

// Provider builds operation graphs from a definition file. Graphs are built
// on first request and cached; a graph is built together with every graph
// its nested types need, so mutually recursive types share one build.
type Provider struct {
	file   *File
	reg    Registries
	types  map[string]reflect.Type
	names  map[reflect.Type]string
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*operation.BeanOperations
}

// Option configures a Provider.
type Option func(*Provider)

// WithType binds a type name of the definition file to a Go type. Nested
// objects of that Go type resolve to the named graph at run time.
func WithType(name string, t reflect.Type) Option {
	return func(p *Provider) {
		t = property.Base(t)
		p.types[name] = t
		p.names[t] = name
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a Provider over f.
func NewProvider(f *File, reg Registries, opts ...Option) *Provider {
	p := &Provider{
		file:  f,
		reg:   reg,
		types: make(map[string]reflect.Type),
		names: make(map[reflect.Type]string),
		cache: make(map[string]*operation.BeanOperations),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = logs.OrDefault(p.logger).Named("provider")

	return p
}

// Types returns the Go types bound with WithType.
func (p *Provider) Types() map[string]reflect.Type {
	return p.types
}

// NameOf returns the type name bound to t, or "".
func (p *Provider) NameOf(t reflect.Type) string {
	return p.names[property.Base(t)]
}

// Operations returns the published graph of the named type. The empty name
// yields a nil graph.
func (p *Provider) Operations(name string) (*operation.BeanOperations, error) {
	if name == "" {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ops, ok := p.cache[name]; ok {
		return ops, nil
	}

	pending := make(map[string]*operation.BeanOperations)

	ops, err := p.build(name, pending)
	if err != nil {
		return nil, err
	}

	for n, b := range pending {
		p.cache[n] = b.Publish()
	}

	p.logger.Debug("operations built", zap.String("bean", name), zap.Int("types", len(pending)))

	return ops, nil
}

func (p *Provider) build(name string, pending map[string]*operation.BeanOperations) (*operation.BeanOperations, error) {
	if ops, ok := p.cache[name]; ok {
		return ops, nil
	}

	if ops, ok := pending[name]; ok {
		return ops, nil
	}

	def := p.file.Type(name)
	if def == nil {
		known := p.file.TypeNames()

		return nil, errs.ErrConfiguration.WithMsg("unknown type %q%s", name, match.Hint(name, known)).WithData("known", known)
	}

	ops := operation.NewBeanOperations(name, p.types[name])
	pending[name] = ops

	for i := range def.Assemble {
		op, err := p.assemble(&def.Assemble[i])
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}

		if err = ops.AddAssemble(op); err != nil {
			return nil, err
		}
	}

	for i := range def.Disassemble {
		op, err := p.disassemble(&def.Disassemble[i], pending)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", name, err)
		}

		if err = ops.AddDisassemble(op); err != nil {
			return nil, err
		}
	}

	return ops, nil
}

func (p *Provider) assemble(rule *AssembleRule) (*operation.AssembleOperation, error) {
	h, err := p.reg.Handlers.Get(rule.Handler)
	if err != nil {
		return nil, err
	}

	s, err := p.reg.Strategies.Get(rule.Strategy)
	if err != nil {
		return nil, err
	}

	resolver, err := p.reg.KeyResolvers.Get(rule.KeyResolver)
	if err != nil {
		return nil, err
	}

	keyType, ok := ResolveKeyType(rule.KeyType, p.types)
	if !ok {
		return nil, errs.ErrConfiguration.WithMsg("unknown key type %q", rule.KeyType)
	}

	mappings, err := operation.ParseMappings(rule.Props...)
	if err != nil {
		return nil, err
	}

	cond, err := BuildCondition(rule.Condition)
	if err != nil {
		return nil, err
	}

	return operation.NewAssembleOperation(operation.AssembleDef{
		ID:             rule.ID,
		Key:            rule.Key,
		KeyType:        keyType,
		KeyDescription: rule.KeyDescription,
		Namespace:      rule.Namespace,
		Mappings:       mappings,
		Handler:        h,
		Strategy:       s,
		KeyResolver:    resolver,
		Sort:           rule.Sort,
		Groups:         rule.Groups,
		Condition:      cond,
	})
}

func (p *Provider) disassemble(rule *DisassembleRule, pending map[string]*operation.BeanOperations) (*operation.DisassembleOperation, error) {
	h, err := p.reg.Disassemblers.Get(rule.Handler)
	if err != nil {
		return nil, err
	}

	var nested operation.NestedResolver

	switch {
	case rule.Type != "":
		ops, err := p.build(rule.Type, pending)
		if err != nil {
			return nil, err
		}

		nested = operation.Fixed(ops)
	case rule.TypeProperty != "":
		nested = p.byProperty(rule.TypeProperty)
	default:
		nested = operation.ByType(p, p.NameOf)
	}

	return operation.NewDisassembleOperation(operation.DisassembleDef{
		ID:         rule.ID,
		Key:        rule.Key,
		SourceType: p.types[rule.Type],
		Handler:    h,
		Nested:     nested,
		Sort:       rule.Sort,
		Groups:     rule.Groups,
	})
}

// byProperty resolves the graph of a nested object from its typeProperty.
func (p *Provider) byProperty(typeProperty string) operation.NestedResolver {
	return operation.DynamicFunc(func(nested any) (*operation.BeanOperations, error) {
		v, err := property.Read(nested, typeProperty)
		if err != nil {
			return nil, err
		}

		name, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("type property %q: %w", typeProperty, err)
		}

		return p.Operations(name)
	})
}
