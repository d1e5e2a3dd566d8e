package operation

import (
	"fmt"
	"reflect"
	"slices"

	"enricher/internal/container"
	"enricher/internal/errs"
)

// AssembleDef describes an assemble operation to construct.
type AssembleDef struct {
	ID             string
	Key            string
	KeyType        reflect.Type
	KeyDescription string
	Namespace      string
	Mappings       []PropertyMapping
	Handler        AssembleHandler
	Strategy       MappingStrategy
	KeyResolver    KeyResolverProvider
	Sort           int
	Groups         []string
	Condition      Condition
}

// AssembleOperation fetches data by key and merges it into targets.
type AssembleOperation struct {
	id             string
	key            string
	keyType        reflect.Type
	keyDescription string
	namespace      string
	mappings       []PropertyMapping
	handler        AssembleHandler
	strategy       MappingStrategy
	resolver       KeyResolver
	resolverName   string
	sort           int
	groups         []string
	condition      Condition
	index          int
}

// NewAssembleOperation validates def and resolves its key resolver.
func NewAssembleOperation(def AssembleDef) (*AssembleOperation, error) {
	switch {
	case def.Handler == nil:
		return nil, errs.ErrConfiguration.WithMsg("assemble %q: no handler", def.Key)
	case def.Strategy == nil:
		return nil, errs.ErrConfiguration.WithMsg("assemble %q: no mapping strategy", def.Key)
	case def.KeyResolver == nil:
		return nil, errs.ErrConfiguration.WithMsg("assemble %q: no key resolver", def.Key)
	}

	resolver, err := def.KeyResolver.Build(KeySpec{
		Key:         def.Key,
		KeyType:     def.KeyType,
		Description: def.KeyDescription,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble %q: %w", def.Key, err)
	}

	id := def.ID
	if id == "" {
		id = def.Key + "@" + def.Namespace
	}

	return &AssembleOperation{
		id:             id,
		key:            def.Key,
		keyType:        def.KeyType,
		keyDescription: def.KeyDescription,
		namespace:      def.Namespace,
		mappings:       slices.Clone(def.Mappings),
		handler:        def.Handler,
		strategy:       def.Strategy,
		resolver:       resolver,
		resolverName:   def.KeyResolver.Name(),
		sort:           def.Sort,
		groups:         slices.Clone(def.Groups),
		condition:      def.Condition,
	}, nil
}

func (o *AssembleOperation) ID() string                         { return o.id }
func (o *AssembleOperation) Key() string                        { return o.key }
func (o *AssembleOperation) KeyType() reflect.Type              { return o.keyType }
func (o *AssembleOperation) KeyDescription() string             { return o.keyDescription }
func (o *AssembleOperation) Namespace() string                  { return o.namespace }
func (o *AssembleOperation) Mappings() []PropertyMapping        { return o.mappings }
func (o *AssembleOperation) Handler() AssembleHandler           { return o.handler }
func (o *AssembleOperation) Strategy() MappingStrategy          { return o.strategy }
func (o *AssembleOperation) KeyResolver() KeyResolver           { return o.resolver }
func (o *AssembleOperation) KeyResolverName() string            { return o.resolverName }
func (o *AssembleOperation) Sort() int                          { return o.sort }
func (o *AssembleOperation) Groups() []string                   { return o.groups }
func (o *AssembleOperation) Condition() Condition               { return o.condition }
func (o *AssembleOperation) Index() int                         { return o.index }
func (o *AssembleOperation) SelfMapping() bool                  { return o.namespace == container.EmptyNamespace }
func (o *AssembleOperation) String() string                     { return o.id }
func (o *AssembleOperation) InGroup(group string) bool          { return slices.Contains(o.groups, group) }
func (o *AssembleOperation) ResolveKey(target any) (any, error) { return o.resolver.Resolve(target) }
