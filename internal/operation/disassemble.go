package operation

import (
	"reflect"
	"slices"

	"enricher/internal/errs"
)

// NestedResolver yields the graph of a nested object.
// A nil graph with nil error means the object has no graph and is skipped.
type NestedResolver interface {
	Resolve(nested any) (*BeanOperations, error)
	// Dynamic reports whether the graph depends on the nested object.
	Dynamic() bool
}

type fixedResolver struct {
	ops *BeanOperations
}

// Fixed always yields ops.
func Fixed(ops *BeanOperations) NestedResolver {
	return fixedResolver{ops: ops}
}

func (f fixedResolver) Resolve(any) (*BeanOperations, error) { return f.ops, nil }
func (f fixedResolver) Dynamic() bool                        { return false }

// DynamicFunc resolves the graph from each nested object.
type DynamicFunc func(nested any) (*BeanOperations, error)

func (f DynamicFunc) Resolve(nested any) (*BeanOperations, error) { return f(nested) }
func (f DynamicFunc) Dynamic() bool                               { return true }

// ByType resolves the graph of a nested object through provider, using the
// object's concrete type name.
func ByType(provider Provider, nameOf func(t reflect.Type) string) NestedResolver {
	return DynamicFunc(func(nested any) (*BeanOperations, error) {
		t := reflect.TypeOf(nested)
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}

		if t == nil {
			return nil, nil
		}

		return provider.Operations(nameOf(t))
	})
}

// DisassembleDef describes a disassemble operation to construct.
type DisassembleDef struct {
	ID         string
	Key        string
	SourceType reflect.Type
	Handler    DisassembleHandler
	Nested     NestedResolver
	Sort       int
	Groups     []string
}

// DisassembleOperation descends into nested objects held by a target property.
type DisassembleOperation struct {
	id         string
	key        string
	sourceType reflect.Type
	handler    DisassembleHandler
	nested     NestedResolver
	sort       int
	groups     []string
	index      int
}

// NewDisassembleOperation validates def.
func NewDisassembleOperation(def DisassembleDef) (*DisassembleOperation, error) {
	switch {
	case def.Key == "":
		return nil, errs.ErrConfiguration.WithMsg("disassemble: empty key")
	case def.Handler == nil:
		return nil, errs.ErrConfiguration.WithMsg("disassemble %q: no handler", def.Key)
	case def.Nested == nil:
		return nil, errs.ErrConfiguration.WithMsg("disassemble %q: no nested resolver", def.Key)
	}

	id := def.ID
	if id == "" {
		id = "disassemble:" + def.Key
	}

	return &DisassembleOperation{
		id:         id,
		key:        def.Key,
		sourceType: def.SourceType,
		handler:    def.Handler,
		nested:     def.Nested,
		sort:       def.Sort,
		groups:     slices.Clone(def.Groups),
	}, nil
}

func (o *DisassembleOperation) ID() string                  { return o.id }
func (o *DisassembleOperation) Key() string                 { return o.key }
func (o *DisassembleOperation) SourceType() reflect.Type    { return o.sourceType }
func (o *DisassembleOperation) Handler() DisassembleHandler { return o.handler }
func (o *DisassembleOperation) Nested() NestedResolver      { return o.nested }
func (o *DisassembleOperation) Sort() int                   { return o.sort }
func (o *DisassembleOperation) Groups() []string            { return o.groups }
func (o *DisassembleOperation) Index() int                  { return o.index }
func (o *DisassembleOperation) String() string              { return o.id }

// Extract returns the nested objects of target.
func (o *DisassembleOperation) Extract(target any) ([]any, error) {
	return o.handler.Extract(target, o)
}
